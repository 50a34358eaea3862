package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const shutdownTimeout = 5 * time.Second

type httpServer struct {
	srv *http.Server
}

func NewHTTPServer(addr string, h http.Handler) (*httpServer, error) {
	if addr == "" {
		return nil, errors.New("http address cannot be empty")
	}
	return &httpServer{srv: &http.Server{Addr: addr, Handler: h}}, nil
}

func (s *httpServer) Name() string {
	return "http server " + s.srv.Addr
}

func (s *httpServer) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
