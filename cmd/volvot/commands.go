package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dgnsrekt/volvot/internal/chat"
	"github.com/dgnsrekt/volvot/internal/controller"
	"github.com/dgnsrekt/volvot/internal/render"
	"github.com/dgnsrekt/volvot/internal/textfmt"
	"github.com/spf13/cobra"
)

// oneShotService builds a service for a single command run. Nothing is
// journaled.
func oneShotService() (*controller.Service, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	setupConsoleLogger(cfg.LogLevel)
	return newService(cfg, nil)
}

var quoteAmount float64

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Fetch the market once and print the token stats",
	Long: `Fetch the pair once and print the stats panel. With --amount, also
print the VOLVOT received for that much WETH. An unreachable endpoint falls
back to the built-in snapshot.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := oneShotService()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		view, err := svc.RefreshMarket(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if view.Snapshot.Fallback {
			fmt.Fprintln(out, "(market endpoint unreachable, showing fallback figures)")
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, r := range view.Regions {
			fmt.Fprintf(tw, "%s\t%s\n", r.ID, r.Text)
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		if quoteAmount > 0 {
			q, err := svc.Quote(ctx, quoteAmount)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\n%s WETH → %s VOLVOT (%s)\n", textfmt.Fixed(q.FromAmount, 4), q.ToText, q.RateText)
		}
		return nil
	},
}

var (
	catalogFilter string
	catalogSearch string
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the verified projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := oneShotService()
		if err != nil {
			return err
		}
		entries, err := svc.Catalog(context.Background(), catalogFilter, catalogSearch)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tSYMBOL\tCATEGORY\tPRICE\tMCAP\tAUDIT\tBADGES")
		for _, e := range entries {
			badges := make([]string, len(e.Badges))
			for i, b := range e.Badges {
				badges[i] = string(b)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t$%s\t%s\t%d\t%s\n",
				e.ID, e.Symbol, e.Category, e.Price, textfmt.Compact(e.MarketCap), e.AuditScore, strings.Join(badges, ","))
		}
		return tw.Flush()
	},
}

var chatSection string

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Ask the site guide a question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := oneShotService()
		if err != nil {
			return err
		}
		ctx := context.Background()
		if _, ok := chat.ParseSection(chatSection); !ok {
			return fmt.Errorf("unknown section %q (want one of %s)", chatSection, sectionNames())
		}
		svc.PollMarket(ctx)
		reply, err := svc.SendChat(ctx, strings.Join(args, " "), chatSection, 0, nil)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", reply.Reply.Topic, render.PlainText(reply.Reply.Content))
		return nil
	},
}

func sectionNames() string {
	names := make([]string, len(chat.Sections))
	for i, s := range chat.Sections {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

func init() {
	quoteCmd.Flags().Float64Var(&quoteAmount, "amount", 0, "WETH amount to quote")

	catalogCmd.Flags().StringVar(&catalogFilter, "filter", "all", "Category: all, defi or infrastructure")
	catalogCmd.Flags().StringVar(&catalogSearch, "search", "", "Substring of name or symbol")

	chatCmd.Flags().StringVar(&chatSection, "section", string(chat.SectionHero), "Page section used as context")
}
