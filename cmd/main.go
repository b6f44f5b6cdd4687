package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"nesa-fulfillment/internal/app"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// ---- Configuration (read only here) ----
	cfg, err := app.ConfigFromEnv()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	h, err := app.Build(ctx, cfg, logger)
	if err != nil {
		slog.Error("failed to build webhook", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}
