// Command local serves the fulfillment webhook over plain HTTP so an agent
// under development can point at it through a tunnel.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gofiber/fiber/v2"

	"nesa-fulfillment/handler"
	"nesa-fulfillment/internal/app"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := app.ConfigFromEnv()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	addr := os.Getenv("LOCAL_ADDR")
	if addr == "" {
		addr = ":3000"
	}

	h, err := app.Build(ctx, cfg, logger)
	if err != nil {
		slog.Error("failed to build webhook", "err", err)
		os.Exit(1)
	}

	srv := newServer(h)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		if err := srv.Shutdown(); err != nil {
			slog.Error("shutdown failed", "err", err)
		}
	}()

	slog.Info("listening", "addr", addr)
	if err := srv.Listen(addr); err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func newServer(h *handler.Handler) *fiber.App {
	srv := fiber.New(fiber.Config{DisableStartupMessage: true})

	srv.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	srv.Post("/fulfillment", func(c *fiber.Ctx) error {
		resp, err := h.Handle(c.UserContext(), toProxyRequest(c))
		if err != nil {
			return err
		}
		for k, v := range resp.Headers {
			c.Set(k, v)
		}
		return c.Status(resp.StatusCode).SendString(resp.Body)
	})

	return srv
}

// toProxyRequest copies what the handler reads from an API Gateway event.
func toProxyRequest(c *fiber.Ctx) events.APIGatewayProxyRequest {
	headers := make(map[string]string)
	for k, v := range c.GetReqHeaders() {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}
	return events.APIGatewayProxyRequest{
		HTTPMethod: c.Method(),
		Path:       c.Path(),
		Headers:    headers,
		Body:       string(c.Body()),
	}
}
