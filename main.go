package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/theialabs/theia-relay/feishu"
	"github.com/theialabs/theia-relay/internal/api"
	"github.com/theialabs/theia-relay/internal/biz/usecase"
	"github.com/theialabs/theia-relay/internal/conf"
	"github.com/theialabs/theia-relay/internal/data"
	"github.com/theialabs/theia-relay/internal/server"
	"github.com/theialabs/theia-relay/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

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

	if repos.Generator == nil {
		log.Println("OPENAI_API_KEY not set, auto-responses use the fallback message")
	}

	composerUC := usecase.NewComposerUsecase(repos.Generator, composerConfig(cfg.Prompts))
	statusUC := usecase.NewStatusUsecase(repos.Status)
	draftUC := usecase.NewDraftUsecase(repos.Draft, repos.Message, composerUC, cfg.Relay.DraftExpiry())
	digestUC := usecase.NewDigestUsecase(repos.RelayLog, cfg.Primary.UserID, cfg.Relay.DigestDefaultHours)

	ctx := context.Background()
	if err := statusUC.EnsureUser(ctx); err != nil {
		log.Fatalf("Failed to initialize user: %v", err)
	}

	relaySvc := service.NewRelayService(
		statusUC, draftUC, digestUC, composerUC,
		repos.Preference, repos.RelayLog, repos.Message,
		cfg.Primary.UserID, cfg.Primary.ChatID,
	)

	srv := server.NewFeishuServer(feishuClient, relaySvc, cfg.Primary.UserID)

	var apiSrv *api.Server
	if cfg.API.Port > 0 {
		apiSrv = api.NewServer(statusUC, digestUC, repos.RelayLog, repos.Preference, cfg.API.Port)
		go func() {
			if err := apiSrv.Start(); err != nil {
				fmt.Printf("[API] Server stopped: %v\n", err)
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nShutting down...")
		if apiSrv != nil {
			_ = apiSrv.Stop()
		}
		srv.Stop()
		os.Exit(0)
	}()

	fmt.Println("Starting Theia relay...")
	if err := srv.Start(); err != nil {
		log.Fatalf("Relay error: %v", err)
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
