package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const defaultShutdownTimeout = 5 * time.Second

// Run serves handler on addr until ctx is canceled, then shuts down gracefully.
// It returns an error only when the listener fails.
func Run(ctx context.Context, logger zerolog.Logger, addr string, handler http.Handler, shutdownTimeout time.Duration) error {
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("http server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			logger.Error().Err(err).Str("addr", addr).Msg("http server failed")
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Str("addr", addr).Msg("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Str("addr", addr).Msg("http server shutdown failed")
		return err
	}
	logger.Info().Msg("http server stopped")
	return nil
}
