package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/dgnsrekt/volvot/internal/catalog"
)

type catalogQuery struct {
	Filter string `query:"filter" default:"all" enum:"all,defi,infrastructure" doc:"Category filter"`
	Search string `query:"search" doc:"Case-insensitive substring of name or symbol"`
}

func registerCatalogHandlers(api huma.API, svc Service) {
	type listOutput struct {
		Body struct {
			Entries []catalog.Entry `json:"entries"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-catalog", Method: http.MethodGet, Path: "/api/v1/catalog", Summary: "List verified projects", Tags: []string{"Catalog"}},
		func(ctx context.Context, input *catalogQuery) (*listOutput, error) {
			entries, err := svc.Catalog(ctx, input.Filter, input.Search)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &listOutput{}
			out.Body.Entries = entries
			return out, nil
		})

	type markupOutput struct {
		Body struct {
			HTML string `json:"html"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "catalog-markup", Method: http.MethodGet, Path: "/api/v1/catalog/markup", Summary: "Project card markup", Tags: []string{"Catalog"}},
		func(ctx context.Context, input *catalogQuery) (*markupOutput, error) {
			html, err := svc.CatalogMarkup(ctx, input.Filter, input.Search)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &markupOutput{}
			out.Body.HTML = html
			return out, nil
		})

	type tradeInput struct {
		ID string `path:"id"`
	}
	type tradeOutput struct {
		Body catalog.TradeAction
	}
	huma.Register(api, huma.Operation{OperationID: "trade-project", Method: http.MethodPost, Path: "/api/v1/catalog/{id}/trade", Summary: "Trade action for a project card", Tags: []string{"Catalog"}},
		func(ctx context.Context, input *tradeInput) (*tradeOutput, error) {
			action, err := svc.TradeProject(ctx, input.ID)
			if err != nil {
				return nil, mapErr(err)
			}
			return &tradeOutput{Body: action}, nil
		})
}
