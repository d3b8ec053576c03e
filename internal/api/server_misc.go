package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/dgnsrekt/volvot/internal/feed"
	"github.com/dgnsrekt/volvot/internal/notify"
	"github.com/dgnsrekt/volvot/internal/render"
	"github.com/dgnsrekt/volvot/internal/signup"
)

func registerMiscHandlers(api huma.API, svc Service) {
	huma.Register(api, huma.Operation{OperationID: "health", Method: http.MethodGet, Path: "/health", Summary: "Health check", Tags: []string{"Health"}},
		func(ctx context.Context, input *struct{}) (*statusOutput, error) {
			return newStatus("ok"), nil
		})

	// --- Notice endpoints ---

	type noticeOutput struct {
		Body struct {
			Notice *notify.Notice `json:"notice"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "active-notice", Method: http.MethodGet, Path: "/api/v1/notices", Summary: "Currently shown notice, if any", Tags: []string{"Notices"}},
		func(ctx context.Context, input *struct{}) (*noticeOutput, error) {
			n, ok, err := svc.ActiveNotice(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &noticeOutput{}
			if ok {
				out.Body.Notice = &n
			}
			return out, nil
		})

	type dismissInput struct {
		ID string `path:"id"`
	}
	huma.Register(api, huma.Operation{OperationID: "dismiss-notice", Method: http.MethodDelete, Path: "/api/v1/notices/{id}", Summary: "Dismiss the shown notice", Tags: []string{"Notices"}},
		func(ctx context.Context, input *dismissInput) (*statusOutput, error) {
			if err := svc.DismissNotice(ctx, input.ID); err != nil {
				return nil, mapErr(err)
			}
			return newStatus("dismissed"), nil
		})

	// --- Display regions ---

	type regionsOutput struct {
		Body struct {
			Regions []render.Region `json:"regions"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-regions", Method: http.MethodGet, Path: "/api/v1/regions", Summary: "Every display region", Tags: []string{"Regions"}},
		func(ctx context.Context, input *struct{}) (*regionsOutput, error) {
			regions, err := svc.Regions(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &regionsOutput{}
			out.Body.Regions = regions
			return out, nil
		})

	// --- Live feeds ---

	type feedsOutput struct {
		Body feed.Snapshot
	}
	huma.Register(api, huma.Operation{OperationID: "get-feeds", Method: http.MethodGet, Path: "/api/v1/feeds", Summary: "Live trade signals and social posts", Tags: []string{"Feeds"}},
		func(ctx context.Context, input *struct{}) (*feedsOutput, error) {
			snap, err := svc.Feeds(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			return &feedsOutput{Body: snap}, nil
		})

	type createPostInput struct {
		Body struct {
			Content string `json:"content" doc:"Post text"`
		}
	}
	type postOutput struct {
		Body feed.Post
	}
	huma.Register(api, huma.Operation{OperationID: "create-post", Method: http.MethodPost, Path: "/api/v1/feeds/posts", Summary: "Share a post", Tags: []string{"Feeds"}},
		func(ctx context.Context, input *createPostInput) (*postOutput, error) {
			post, err := svc.CreatePost(ctx, input.Body.Content)
			if err != nil {
				return nil, mapErr(err)
			}
			return &postOutput{Body: post}, nil
		})

	type likeInput struct {
		ID string `path:"id"`
	}
	huma.Register(api, huma.Operation{OperationID: "like-post", Method: http.MethodPost, Path: "/api/v1/feeds/posts/{id}/like", Summary: "Like a post", Tags: []string{"Feeds"}},
		func(ctx context.Context, input *likeInput) (*postOutput, error) {
			post, err := svc.LikePost(ctx, input.ID)
			if err != nil {
				return nil, mapErr(err)
			}
			return &postOutput{Body: post}, nil
		})

	// --- Early access ---

	type signupInput struct {
		Body struct {
			Email string `json:"email" doc:"Contact address"`
		}
	}
	type signupOutput struct {
		Body signup.Result
	}
	huma.Register(api, huma.Operation{OperationID: "signup", Method: http.MethodPost, Path: "/api/v1/signup", Summary: "Join the early access list", Tags: []string{"Signup"}},
		func(ctx context.Context, input *signupInput) (*signupOutput, error) {
			res, err := svc.Signup(ctx, input.Body.Email)
			if err != nil {
				return nil, mapErr(err)
			}
			return &signupOutput{Body: res}, nil
		})
}
