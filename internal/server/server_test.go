package server

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/firetrack/backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_RunStopsOnCancel(t *testing.T) {
	cfg := &config.Config{HttpServer: config.HttpServer{Port: "0", Timeout: time.Second, IdleTimeout: time.Second}}
	srv := NewServer(cfg, http.NotFoundHandler())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_RunListenError(t *testing.T) {
	cfg := &config.Config{HttpServer: config.HttpServer{Port: "not-a-port"}}
	srv := NewServer(cfg, http.NotFoundHandler())

	assert.Error(t, srv.Run(context.Background()))
}
