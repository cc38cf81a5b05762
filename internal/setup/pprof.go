package setup

import (
	"fmt"
	"net"
	"net/http"
	_ "net/http/pprof" // Register pprof handlers on the default mux
	"time"

	"go.uber.org/zap"
)

// pprofServer wraps an HTTP server for pprof debugging endpoints.
type pprofServer struct {
	srv      *http.Server
	listener net.Listener
}

// startPprofServer starts an HTTP server for pprof debugging on the specified port.
// The server binds to localhost only so profiles are never exposed externally.
func startPprofServer(port int, logger *zap.Logger) (*pprofServer, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
	if err != nil {
		return nil, fmt.Errorf("failed to create pprof listener: %w", err)
	}

	srv := &http.Server{
		Handler:           http.DefaultServeMux,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Starting pprof server",
			zap.String("address", listener.Addr().String()))

		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("Pprof server error", zap.Error(err))
		}
	}()

	return &pprofServer{srv: srv, listener: listener}, nil
}
