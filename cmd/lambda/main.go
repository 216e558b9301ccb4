// Package main is the entry point for the DeepL component Lambda function.
package main

import (
	"context"
	"encoding/json"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/pricofy/deepl-component/internal/component"
	"github.com/pricofy/deepl-component/internal/config"
	"github.com/pricofy/deepl-component/internal/domain"
	"github.com/pricofy/deepl-component/internal/handler"
	"github.com/pricofy/deepl-component/internal/logger"
	"github.com/pricofy/deepl-component/internal/translator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer zl.Sync()
	sugar := zl.Sugar().With("environment", cfg.Environment)

	comp := component.New(
		translator.NewFactory(cfg.TranslatorOptions()...),
		component.WithLogger(sugar.Named("component")),
	)

	// A key in the environment binds the translator at cold start; hosts
	// can still rebind through an initialize event.
	if cfg.APIKey != "" {
		if err := comp.Initialize(context.Background(), domain.InitConfig{APIKey: cfg.APIKey}); err != nil {
			sugar.Fatalw("failed to initialize component", "error", err)
		}
	}

	h := handler.New(comp, sugar.Named("handler"))
	warmer := newWarmer(cfg.FunctionName, sugar.Named("warmup"))

	finalize := func() {
		if err := comp.Finalize(context.Background(), nil); err != nil {
			sugar.Errorw("finalize failed", "error", err)
		}
		sugar.Info("shutting down")
		_ = zl.Sync()
	}

	lambda.StartWithOptions(
		func(ctx context.Context, event json.RawMessage) (interface{}, error) {
			return handleRequest(ctx, event, h, warmer, sugar)
		},
		lambda.WithEnableSIGTERM(finalize),
	)
}

func handleRequest(ctx context.Context, event json.RawMessage, h *handler.Handler, w *warmer, sugar *zap.SugaredLogger) (interface{}, error) {
	// Warmup detection (MUST be first - before any other processing)
	if warmup, ok := IsWarmupEvent(event); ok {
		return w.Handle(ctx, warmup)
	}

	var req handler.Request
	if err := json.Unmarshal(event, &req); err != nil {
		sugar.Warnw("undecodable event", "error", err)
		return nil, err
	}

	return h.Handle(ctx, req)
}
