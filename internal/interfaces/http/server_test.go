package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/StayLedger/internal/config"
)

func TestNewServer(t *testing.T) {
	mux := http.NewServeMux()
	s := NewServer(config.ServerConfig{Port: 8080, ReadTimeout: 5 * time.Second}, mux, nil)

	assert.Equal(t, ":8080", s.Addr())
	assert.Equal(t, 30*time.Second, s.shutdownTimeout)
	assert.Equal(t, 5*time.Second, s.srv.ReadTimeout)
	assert.NotNil(t, s.Handler())
}

func TestServer_StartStop(t *testing.T) {
	s := NewServer(config.ServerConfig{Port: 0, ShutdownTimeout: time.Second}, http.NewServeMux(), nil)

	done := make(chan error, 1)
	go func() { done <- s.Start() }()
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, s.Stop(context.Background()))
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

//Personal.AI order the ending
