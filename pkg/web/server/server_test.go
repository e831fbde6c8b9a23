package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewRequiresHandler(t *testing.T) {
	_, err := New(DefaultConfig(), nil, nil)
	assert.Error(t, err)
}

func TestRunServesAndShutsDown(t *testing.T) {
	config := DefaultConfig()
	config.Address = "127.0.0.1:0"
	config.ShutdownTimeout = 5 * time.Second

	srv, err := New(config, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	}), zaptest.NewLogger(t))
	require.NoError(t, err)

	var hookCalls []string
	srv.RegisterHook(func(ctx context.Context) error {
		hookCalls = append(hookCalls, "db")
		return nil
	})
	srv.RegisterHook(func(ctx context.Context) error {
		hookCalls = append(hookCalls, "cache")
		return errors.New("flush failed")
	})

	require.NoError(t, srv.Listen())
	assert.NotEqual(t, "127.0.0.1:0", srv.Addr())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	resp, err := http.Get("http://" + srv.Addr() + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	cancel()
	select {
	case err := <-done:
		assert.EqualError(t, err, "flush failed")
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.Equal(t, []string{"db", "cache"}, hookCalls)
}

func TestRunListenError(t *testing.T) {
	config := DefaultConfig()
	config.Address = "127.0.0.1:-1"
	srv, err := New(config, http.NotFoundHandler(), nil)
	require.NoError(t, err)
	assert.Error(t, srv.Run(context.Background()))
}
