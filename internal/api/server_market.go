package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/dgnsrekt/volvot/internal/controller"
	"github.com/dgnsrekt/volvot/internal/wallet"
)

func registerMarketHandlers(api huma.API, svc Service) {
	// --- Market endpoints ---

	type marketOutput struct {
		Body controller.MarketView
	}
	huma.Register(api, huma.Operation{OperationID: "get-market", Method: http.MethodGet, Path: "/api/v1/market", Summary: "Current market snapshot with display text", Tags: []string{"Market"}},
		func(ctx context.Context, input *struct{}) (*marketOutput, error) {
			view, err := svc.Market(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			return &marketOutput{Body: view}, nil
		})

	huma.Register(api, huma.Operation{OperationID: "refresh-market", Method: http.MethodPost, Path: "/api/v1/market/refresh", Summary: "Poll the pair endpoint now", Tags: []string{"Market"}},
		func(ctx context.Context, input *struct{}) (*marketOutput, error) {
			view, err := svc.RefreshMarket(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			return &marketOutput{Body: view}, nil
		})

	// --- Wallet endpoints ---

	type walletOutput struct {
		Body wallet.Status
	}
	huma.Register(api, huma.Operation{OperationID: "get-wallet", Method: http.MethodGet, Path: "/api/v1/wallet", Summary: "Wallet connection and balances", Tags: []string{"Wallet"}},
		func(ctx context.Context, input *struct{}) (*walletOutput, error) {
			st, err := svc.Wallet(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			return &walletOutput{Body: st}, nil
		})

	huma.Register(api, huma.Operation{OperationID: "connect-wallet", Method: http.MethodPost, Path: "/api/v1/wallet/connect", Summary: "Connect the browser wallet or the demo wallet", Tags: []string{"Wallet"}},
		func(ctx context.Context, input *struct{}) (*walletOutput, error) {
			st, err := svc.ConnectWallet(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			return &walletOutput{Body: st}, nil
		})

	huma.Register(api, huma.Operation{OperationID: "disconnect-wallet", Method: http.MethodPost, Path: "/api/v1/wallet/disconnect", Summary: "Disconnect and reset balances", Tags: []string{"Wallet"}},
		func(ctx context.Context, input *struct{}) (*walletOutput, error) {
			st, err := svc.DisconnectWallet(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			return &walletOutput{Body: st}, nil
		})
}
