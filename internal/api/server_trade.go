package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/dgnsrekt/volvot/internal/controller"
	"github.com/dgnsrekt/volvot/internal/staking"
	"github.com/dgnsrekt/volvot/internal/state"
	"github.com/dgnsrekt/volvot/internal/swap"
)

func registerTradeHandlers(api huma.API, svc Service) {
	// --- Swap endpoints ---

	type quoteInput struct {
		Amount float64 `query:"amount" doc:"WETH amount to swap"`
	}
	type quoteOutput struct {
		Body controller.SwapQuote
	}
	huma.Register(api, huma.Operation{OperationID: "swap-quote", Method: http.MethodGet, Path: "/api/v1/swap/quote", Summary: "Preview WETH to VOLVOT output", Tags: []string{"Swap"}},
		func(ctx context.Context, input *quoteInput) (*quoteOutput, error) {
			q, err := svc.Quote(ctx, input.Amount)
			if err != nil {
				return nil, mapErr(err)
			}
			return &quoteOutput{Body: q}, nil
		})

	type receiptOutput struct {
		Body swap.Receipt
	}
	huma.Register(api, huma.Operation{OperationID: "execute-swap", Method: http.MethodPost, Path: "/api/v1/swap", Summary: "Execute a simulated swap", Tags: []string{"Swap"}},
		func(ctx context.Context, input *amountInput) (*receiptOutput, error) {
			rcpt, err := svc.Swap(ctx, input.Body.Amount)
			if err != nil {
				return nil, mapErr(err)
			}
			return &receiptOutput{Body: rcpt}, nil
		})

	// --- Staking endpoints ---

	type txOutput struct {
		Body state.Transaction
	}
	huma.Register(api, huma.Operation{OperationID: "stake", Method: http.MethodPost, Path: "/api/v1/staking/stake", Summary: "Stake VOLVOT", Tags: []string{"Staking"}},
		func(ctx context.Context, input *amountInput) (*txOutput, error) {
			tx, err := svc.Stake(ctx, input.Body.Amount)
			if err != nil {
				return nil, mapErr(err)
			}
			return &txOutput{Body: tx}, nil
		})

	type unstakeOutput struct {
		Body struct {
			Status      string             `json:"status"`
			Transaction *state.Transaction `json:"transaction,omitempty"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "unstake", Method: http.MethodPost, Path: "/api/v1/staking/unstake", Summary: "Unstake everything plus rewards", Tags: []string{"Staking"}},
		func(ctx context.Context, input *struct{}) (*unstakeOutput, error) {
			tx, err := svc.Unstake(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &unstakeOutput{}
			if tx.ID == "" {
				out.Body.Status = "nothing staked"
				return out, nil
			}
			out.Body.Status = "unstaked"
			out.Body.Transaction = &tx
			return out, nil
		})

	type positionOutput struct {
		Body staking.Position
	}
	huma.Register(api, huma.Operation{OperationID: "staking-position", Method: http.MethodGet, Path: "/api/v1/staking", Summary: "Current staking position", Tags: []string{"Staking"}},
		func(ctx context.Context, input *struct{}) (*positionOutput, error) {
			pos, err := svc.StakingPosition(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			return &positionOutput{Body: pos}, nil
		})

	type estimateInput struct {
		Amount float64 `query:"amount" doc:"VOLVOT amount to stake"`
	}
	type estimateOutput struct {
		Body controller.StakeEstimate
	}
	huma.Register(api, huma.Operation{OperationID: "staking-estimate", Method: http.MethodGet, Path: "/api/v1/staking/estimate", Summary: "Estimated daily staking earnings", Tags: []string{"Staking"}},
		func(ctx context.Context, input *estimateInput) (*estimateOutput, error) {
			est, err := svc.EstimateStake(ctx, input.Amount)
			if err != nil {
				return nil, mapErr(err)
			}
			return &estimateOutput{Body: est}, nil
		})

	// --- Portfolio endpoints ---

	type portfolioOutput struct {
		Body controller.PortfolioView
	}
	huma.Register(api, huma.Operation{OperationID: "get-portfolio", Method: http.MethodGet, Path: "/api/v1/portfolio", Summary: "Portfolio valuation", Tags: []string{"Portfolio"}},
		func(ctx context.Context, input *struct{}) (*portfolioOutput, error) {
			view, err := svc.Portfolio(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			return &portfolioOutput{Body: view}, nil
		})

	type transactionsOutput struct {
		Body struct {
			Transactions []state.Transaction `json:"transactions"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-transactions", Method: http.MethodGet, Path: "/api/v1/transactions", Summary: "Transaction history, newest first", Tags: []string{"Portfolio"}},
		func(ctx context.Context, input *struct{}) (*transactionsOutput, error) {
			txs, err := svc.Transactions(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &transactionsOutput{}
			out.Body.Transactions = txs
			return out, nil
		})
}
