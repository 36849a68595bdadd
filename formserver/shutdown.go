package formserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andreyvit/formkit/logging"
)

// InterceptShutdownSignals calls shutdown on the first interrupt. A second
// interrupt gets the default behavior and kills the process.
func InterceptShutdownSignals(ctx context.Context, shutdown func()) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		<-c
		signal.Reset()
		logging.From(ctx).Info("shutting down, interrupt again to force quit")
		shutdown()
	}()
}

// GracefulShutdown tries to do a graceful shutdown, but abandons the attempt
// and falls back to forceful shutdown after a timeout.
func GracefulShutdown(ctx context.Context, gracePeriod time.Duration, graceful func(ctx context.Context) error, forceful func()) error {
	defer forceful()

	ctx, cancel := context.WithTimeout(ctx, gracePeriod)
	defer cancel()

	err := graceful(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		logging.From(ctx).Warn("graceful shutdown timed out")
		return nil
	}
	return err
}

// ListenAndServe serves handler on addr until ctx is done, then waits up to
// gracePeriod for requests in flight.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, gracePeriod time.Duration) error {
	base := context.WithoutCancel(ctx)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return base },
	}
	failed := make(chan error, 1)
	go func() {
		logging.From(ctx).Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			failed <- err
		}
		close(failed)
	}()

	select {
	case err := <-failed:
		return err
	case <-ctx.Done():
	}
	return GracefulShutdown(base, gracePeriod, srv.Shutdown, func() { srv.Close() })
}
