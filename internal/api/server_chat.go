package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/dgnsrekt/volvot/internal/chat"
	"github.com/dgnsrekt/volvot/internal/controller"
)

func registerChatHandlers(api huma.API, svc Service) {
	type sendInput struct {
		Body struct {
			Message string             `json:"message" required:"true" doc:"User message"`
			Section string             `json:"section,omitempty" doc:"Page section the user is reading. Omit to locate it from scroll_y and layout."`
			ScrollY float64            `json:"scroll_y,omitempty" doc:"Vertical scroll offset in pixels"`
			Layout  map[string]float64 `json:"layout,omitempty" doc:"Top offset of each section anchor"`
		}
	}
	type sendOutput struct {
		Body controller.ChatReply
	}
	huma.Register(api, huma.Operation{OperationID: "send-chat", Method: http.MethodPost, Path: "/api/v1/chat/messages", Summary: "Ask the site guide", Tags: []string{"Chat"}},
		func(ctx context.Context, input *sendInput) (*sendOutput, error) {
			layout := make(chat.Layout, len(input.Body.Layout))
			for name, top := range input.Body.Layout {
				if sec, ok := chat.ParseSection(name); ok {
					layout[sec] = top
				}
			}
			reply, err := svc.SendChat(ctx, input.Body.Message, input.Body.Section, input.Body.ScrollY, layout)
			if err != nil {
				return nil, mapErr(err)
			}
			return &sendOutput{Body: reply}, nil
		})

	type transcriptOutput struct {
		Body struct {
			Messages []chat.Message `json:"messages"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "chat-transcript", Method: http.MethodGet, Path: "/api/v1/chat/transcript", Summary: "Conversation so far", Tags: []string{"Chat"}},
		func(ctx context.Context, input *struct{}) (*transcriptOutput, error) {
			msgs, err := svc.ChatTranscript(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &transcriptOutput{}
			out.Body.Messages = msgs
			return out, nil
		})

	type contextInput struct {
		Section string `query:"section" default:"hero" doc:"Page section"`
	}
	type contextOutput struct {
		Body chat.Card
	}
	huma.Register(api, huma.Operation{OperationID: "chat-context", Method: http.MethodGet, Path: "/api/v1/chat/context", Summary: "Context help card for a section", Tags: []string{"Chat"}},
		func(ctx context.Context, input *contextInput) (*contextOutput, error) {
			card, err := svc.ChatContext(ctx, input.Section)
			if err != nil {
				return nil, mapErr(err)
			}
			return &contextOutput{Body: card}, nil
		})

	type tutorialInput struct {
		Name string `path:"name" doc:"tour, trading or staking"`
	}
	type tutorialOutput struct {
		Body chat.Message
	}
	huma.Register(api, huma.Operation{OperationID: "chat-tutorial", Method: http.MethodPost, Path: "/api/v1/chat/tutorials/{name}", Summary: "Post a scripted tutorial", Tags: []string{"Chat"}},
		func(ctx context.Context, input *tutorialInput) (*tutorialOutput, error) {
			msg, err := svc.ChatTutorial(ctx, input.Name)
			if err != nil {
				return nil, mapErr(err)
			}
			return &tutorialOutput{Body: msg}, nil
		})
}
