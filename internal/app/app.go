package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"nesa-fulfillment/handler"
	"nesa-fulfillment/internal/integrations/paramstore"
	"nesa-fulfillment/internal/integrations/places"
	"nesa-fulfillment/internal/repository"
	"nesa-fulfillment/internal/usecase"
)

// Config is everything the webhook reads from its environment.
type Config struct {
	ParamPrefix  string
	TurnLogTable string
	QueryTimeout time.Duration
}

// ConfigFromEnv reads PARAM_PREFIX (required), TURN_LOG_TABLE and
// PLACES_TIMEOUT_SECONDS.
func ConfigFromEnv() (Config, error) {
	prefix := strings.TrimSpace(os.Getenv("PARAM_PREFIX"))
	if prefix == "" {
		return Config{}, errors.New("app: required environment variable PARAM_PREFIX is not set")
	}
	return Config{
		ParamPrefix:  prefix,
		TurnLogTable: strings.TrimSpace(os.Getenv("TURN_LOG_TABLE")),
		QueryTimeout: time.Duration(envInt("PLACES_TIMEOUT_SECONDS", 10)) * time.Second,
	}, nil
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// Build wires the AWS clients, the places client and the fulfillment
// service behind a Lambda-shaped handler.
func Build(ctx context.Context, cfg Config, logger *slog.Logger) (*handler.Handler, error) {
	if logger == nil {
		logger = slog.Default()
	}

	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("app: load AWS config: %w", err)
	}

	ssmClient, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
	if err != nil {
		return nil, fmt.Errorf("app: create SSM client: %w", err)
	}

	placesClient, err := places.NewClient(ssmClient, cfg.ParamPrefix, places.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("app: create places client: %w", err)
	}

	var turns usecase.TurnRecorder
	if cfg.TurnLogTable != "" {
		turnLog, err := repository.New(awsdynamodb.NewFromConfig(awsCfg), cfg.TurnLogTable)
		if err != nil {
			return nil, fmt.Errorf("app: create turn log: %w", err)
		}
		turns = turnLog
	} else {
		logger.Info("turn log disabled", "reason", "TURN_LOG_TABLE not set")
	}

	svc, err := usecase.NewFulfillmentService(placesClient, turns, logger, cfg.QueryTimeout)
	if err != nil {
		return nil, fmt.Errorf("app: create fulfillment service: %w", err)
	}

	h, err := handler.NewHandler(svc)
	if err != nil {
		return nil, fmt.Errorf("app: create handler: %w", err)
	}
	return h, nil
}
