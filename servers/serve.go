package servers

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/reusee/quizrun/logs"
)

// Serve listens until ctx is done, then shuts down gracefully.
type Serve func(ctx context.Context) error

func (Module) Serve(
	addr ListenAddr,
	handler Handler,
	logger logs.Logger,
) Serve {
	return func(ctx context.Context) error {
		ln, err := net.Listen("tcp", string(addr))
		if err != nil {
			return err
		}
		return serve(ctx, ln, handler, logger)
	}
}

func serve(ctx context.Context, ln net.Listener, handler http.Handler, logger logs.Logger) error {
	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return context.WithoutCancel(ctx)
		},
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving", "addr", ln.Addr().String())
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
