// Package adapters fits concrete listeners to shutdown.Server.
package adapters

import (
	"context"
	"net"
	"net/http"
	"time"
)

// HTTP serves Srv on Lis, or on Srv.Addr when Lis is nil.
type HTTP struct {
	Srv     *http.Server
	Lis     net.Listener
	NameStr string
}

// NewHTTP builds an adapter with header and idle timeouts set.
func NewHTTP(name, addr string, h http.Handler) *HTTP {
	return &HTTP{
		NameStr: name,
		Srv: &http.Server{
			Addr:              addr,
			Handler:           h,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

func (h *HTTP) Name() string {
	if h.NameStr == "" {
		return "http"
	}
	return h.NameStr
}

// Serve returns when the server stops or ctx is done. Request contexts
// derive from ctx, so in-flight submissions see cancellation.
func (h *HTTP) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	h.Srv.BaseContext = func(net.Listener) context.Context { return ctx }

	go func() {
		if h.Lis != nil {
			errCh <- h.Srv.Serve(h.Lis)
			return
		}
		errCh <- h.Srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (h *HTTP) GracefulStopWithTimeout(ctx context.Context) error {
	return h.Srv.Shutdown(ctx)
}

func (h *HTTP) ForceStop() {
	_ = h.Srv.Close()
}
