package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/InQaaaaGit/smart_filter.git/internal/config"
	"github.com/phayes/freeport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, addr string) *HTTPServer {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := NewHTTPServer(&http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: time.Second}, &config.Config{}, zap.NewNop())
	srv.shutdownTimeout = time.Second
	return srv
}

func TestHTTPServerGracefulShutdown(t *testing.T) {
	port, err := freeport.GetFreePort()
	require.NoError(t, err)
	addr := fmt.Sprintf("127.0.0.1:%d", port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := newTestServer(t, addr)
	done := make(chan error, 1)
	go func() {
		done <- srv.Start(ctx)
	}()

	client := &http.Client{Timeout: time.Second}
	require.Eventually(t, func() bool {
		resp, err := client.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestHTTPServerAddressInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	srv := newTestServer(t, ln.Addr().String())
	err = srv.Start(context.Background())
	assert.Error(t, err)
}

func TestHTTPServerHTTPSMissingCertificate(t *testing.T) {
	port, err := freeport.GetFreePort()
	require.NoError(t, err)

	cfg := &config.Config{
		EnableHTTPS: "true",
		TLSCertFile: t.TempDir() + "/absent.crt",
		TLSKeyFile:  t.TempDir() + "/absent.key",
	}
	srv := NewHTTPServer(&http.Server{Addr: fmt.Sprintf("127.0.0.1:%d", port), ReadHeaderTimeout: time.Second}, cfg, zap.NewNop())

	assert.Error(t, srv.Start(context.Background()))
}

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		wantErr bool
	}{
		{name: "info", level: "info"},
		{name: "debug", level: "debug"},
		{name: "invalid", level: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, cleanup, err := InitLogger(tt.level)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger)
			assert.True(t, logger.Core().Enabled(zap.InfoLevel))
			cleanup()
		})
	}
}
