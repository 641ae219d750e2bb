package kit

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type ServerTimeouts struct {
	Read       time.Duration `koanf:"read" validate:"gt=0"`
	Write      time.Duration `koanf:"write" validate:"gt=0"`
	Idle       time.Duration `koanf:"idle" validate:"gt=0"`
	ReadHeader time.Duration `koanf:"readheader" validate:"gt=0"`
	Shutdown   time.Duration `koanf:"shutdown" validate:"gt=0"`
}

// RunHTTPServer serves h until ctx is cancelled, then drains in-flight
// requests for at most t.Shutdown.
func RunHTTPServer(ctx context.Context, addr string, h http.Handler, t ServerTimeouts, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadTimeout:       t.Read,
		WriteTimeout:      t.Write,
		IdleTimeout:       t.Idle,
		ReadHeaderTimeout: t.ReadHeader,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server starting", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal", zap.Error(context.Cause(ctx)))
	case err := <-errCh:
		return err
	}

	sctx, cancel := context.WithTimeout(context.Background(), t.Shutdown)
	defer cancel()

	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
