// Package shutdown runs the service's listeners in one errgroup and stops
// them together: gracefully within ShutdownTimeout, forcibly after it.
package shutdown

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vortex-fintech/contactform/logger"
)

type Server interface {
	Serve(ctx context.Context) error
	GracefulStopWithTimeout(ctx context.Context) error
	ForceStop()
	Name() string
}

// Metrics receives stop outcomes; metrics.Collector implements it.
type Metrics interface {
	IncStopTotal(result string)
	ObserveGracefulDuration(d time.Duration)
	IncServeError(name string)
	IncServerStopResult(name, result string)
}

type Config struct {
	ShutdownTimeout time.Duration
	HandleSignals   bool
	IsNormalError   func(error) bool
	Logger          logger.LoggerInterface
	Metrics         Metrics
	// OnStopped runs once after every server has stopped, e.g. to close
	// the Redis client and flush the logger.
	OnStopped []func()
}

type Manager struct {
	cfg     Config
	mu      sync.Mutex
	servers []Server
	stopped bool
}

func New(cfg Config) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}
	if cfg.IsNormalError == nil {
		cfg.IsNormalError = DefaultIsNormalErr
	}
	return &Manager{cfg: cfg}
}

func (m *Manager) Add(s Server) {
	m.mu.Lock()
	m.servers = append(m.servers, s)
	m.mu.Unlock()
}

// Run serves until ctx is done (or SIGINT/SIGTERM with HandleSignals) or a
// server fails, then stops all servers. Normal close errors are not returned.
func (m *Manager) Run(ctx context.Context) error {
	if m.cfg.HandleSignals {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()
	}

	log := m.cfg.Logger
	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range m.snapshot() {
		g.Go(func() error {
			name := safeName(srv)
			log.Infow("serve start", "name", name)
			err := srv.Serve(gctx)
			if err != nil && !m.cfg.IsNormalError(err) && gctx.Err() == nil {
				log.Errorw("serve error", "name", name, "err", err)
				if m.cfg.Metrics != nil {
					m.cfg.Metrics.IncServeError(name)
				}
				return err
			}
			log.Infow("serve stop", "name", name, "err", errString(err))
			return nil
		})
	}

	waitCh := make(chan error, 1)
	go func() { waitCh <- g.Wait() }()

	var (
		groupDone bool
		groupErr  error
	)
	select {
	case <-ctx.Done():
		log.Infow("context done; starting graceful stop")
	case err := <-waitCh:
		groupDone, groupErr = true, err
		if err != nil {
			log.Warnw("server failed; stopping the rest", "err", err)
		}
	}

	m.Stop()

	if !groupDone {
		select {
		case groupErr = <-waitCh:
		case <-time.After(m.cfg.ShutdownTimeout + 2*time.Second):
			return fmt.Errorf("shutdown: servers still running %s after stop", m.cfg.ShutdownTimeout+2*time.Second)
		}
	}
	if groupErr != nil && !m.cfg.IsNormalError(groupErr) {
		return groupErr
	}
	return nil
}

// Stop is idempotent. Servers stop concurrently; any server that fails or
// misses the deadline is force-stopped.
func (m *Manager) Stop() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	servers := append([]Server(nil), m.servers...)
	m.mu.Unlock()

	started := time.Now()
	var forcedAny atomic.Bool

	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.ShutdownTimeout)
	defer cancel()

	var wg sync.WaitGroup
	for _, srv := range servers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := safeName(srv)
			result := "success"
			err := srv.GracefulStopWithTimeout(ctx)
			if err == nil {
				err = ctx.Err()
			}
			if err != nil {
				m.cfg.Logger.Warnw("graceful stop failed; forcing", "name", name, "err", err)
				srv.ForceStop()
				forcedAny.Store(true)
				result = "force"
			} else {
				m.cfg.Logger.Infow("graceful stop done", "name", name)
			}
			if m.cfg.Metrics != nil {
				m.cfg.Metrics.IncServerStopResult(name, result)
			}
		}()
	}
	wg.Wait()

	if m.cfg.Metrics != nil {
		m.cfg.Metrics.ObserveGracefulDuration(time.Since(started))
		result := "success"
		if forcedAny.Load() {
			result = "force"
		}
		m.cfg.Metrics.IncStopTotal(result)
	}

	for _, fn := range m.cfg.OnStopped {
		fn()
	}
}

func (m *Manager) snapshot() []Server {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Server(nil), m.servers...)
}

func DefaultIsNormalErr(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, http.ErrServerClosed) {
		return true
	}
	return strings.Contains(err.Error(), "use of closed network connection")
}

func errString(err error) string {
	if err == nil {
		return "<nil>"
	}
	return err.Error()
}

func safeName(s Server) string {
	if s == nil {
		return "server"
	}
	if n := s.Name(); n != "" {
		return n
	}
	return "server"
}
