package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/theialabs/theia-relay/feishu"
	"github.com/theialabs/theia-relay/internal/biz/domain"
	"github.com/theialabs/theia-relay/internal/biz/usecase"
	"github.com/theialabs/theia-relay/internal/conf"
	"github.com/theialabs/theia-relay/internal/data"
	"github.com/theialabs/theia-relay/mcpserver"
)

// relay-mcp exposes the relay over MCP stdio so an agent can check
// status, pull digests and send messages against the shared database.
func main() {
	_ = godotenv.Load()

	cfg := conf.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	feishuClient := feishu.NewClient(cfg.Feishu.AppID, cfg.Feishu.AppSecret)

	repos, err := data.NewRepositories(
		feishuClient,
		cfg.Relay.DBPath,
		cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model,
	)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer repos.Close()

	statusUC := usecase.NewStatusUsecase(repos.Status)
	digestUC := usecase.NewDigestUsecase(repos.RelayLog, cfg.Primary.UserID, cfg.Relay.DigestDefaultHours)
	composerUC := usecase.NewComposerUsecase(nil, composerConfig(cfg.Prompts))

	callbacks := &mcpserver.Callbacks{
		GetStatus: func(ctx context.Context) (mcpserver.StatusInfo, error) {
			directive := statusUC.Directive(ctx)
			return statusInfo(directive), nil
		},
		SetStatus: func(ctx context.Context, status string) (mcpserver.StatusInfo, error) {
			parsed, ok := domain.ParseUserStatus(status)
			if !ok {
				return mcpserver.StatusInfo{}, fmt.Errorf("invalid status %q", status)
			}
			if err := statusUC.SetStatus(ctx, parsed); err != nil {
				return mcpserver.StatusInfo{}, err
			}
			return statusInfo(statusUC.Directive(ctx)), nil
		},
		GetDigest: func(ctx context.Context, hours int) (string, error) {
			return digestUC.Build(ctx, hours)
		},
		SendMessage: func(ctx context.Context, conversationID, content string) error {
			outbound := composerUC.WrapOutbound(content, time.Now())
			return repos.Message.SendText(ctx, conversationID, outbound)
		},
	}

	srv := mcpserver.NewServer(callbacks)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("MCP server error: %v", err)
	}
}

// composerConfig maps loaded prompt configuration onto the composer
func composerConfig(p *conf.PromptsConfig) usecase.ComposerConfig {
	if p == nil {
		return usecase.DefaultComposerConfig
	}
	return usecase.ComposerConfig{
		SystemTemplate:       p.Responder.SystemTemplate,
		FallbackMessage:      p.Responder.FallbackMessage,
		Signature:            p.Responder.Signature,
		UrgentTemplate:       p.Notify.UrgentTemplate,
		ForwardTemplate:      p.Notify.ForwardTemplate,
		AutoRespondTemplate:  p.Notify.AutoRespondTemplate,
		DraftStagedTemplate:  p.Notify.DraftStagedTemplate,
		DraftPreviewTemplate: p.Notify.DraftPreviewTemplate,
		HeaderGlyph:          p.Outbound.HeaderGlyph,
		ReferencePrefix:      p.Outbound.ReferencePrefix,
		MaxBodyLines:         p.Outbound.MaxBodyLines,
	}
}

func statusInfo(directive domain.RelayDirective) mcpserver.StatusInfo {
	return mcpserver.StatusInfo{
		Status:        string(directive.Status),
		StatusMessage: domain.StatusMessage(directive.Status),
		SendPolicy:    string(directive.SendPolicy),
		Context:       directive.Context,
	}
}
