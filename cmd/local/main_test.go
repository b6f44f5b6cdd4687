package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"nesa-fulfillment/handler"
	"nesa-fulfillment/internal/domain"
)

type echoFulfiller struct {
	intent string
}

func (e *echoFulfiller) Fulfill(_ context.Context, turn domain.Turn) (domain.Reply, error) {
	e.intent = turn.Intent
	r := domain.NewReply(nil)
	r.Ask("hello from " + turn.Intent)
	return *r, nil
}

func TestServer_ForwardsToHandler(t *testing.T) {
	f := &echoFulfiller{}
	h, err := handler.NewHandler(f)
	require.NoError(t, err)
	srv := newServer(h)

	req := httptest.NewRequest(http.MethodPost, "/fulfillment",
		strings.NewReader(`{"session":"s","queryResult":{"intent":{"displayName":"response_location"}}}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Correlation-Id", "corr-local")

	resp, err := srv.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "corr-local", resp.Header.Get("X-Correlation-Id"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "hello from response_location")
	require.Equal(t, "response_location", f.intent)
}

func TestServer_BadRequest(t *testing.T) {
	h, err := handler.NewHandler(&echoFulfiller{})
	require.NoError(t, err)
	srv := newServer(h)

	resp, err := srv.Test(httptest.NewRequest(http.MethodPost, "/fulfillment", strings.NewReader(`nope`)))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
