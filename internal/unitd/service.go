// Package unitd hosts a service charm as a standalone unit daemon: it
// restores durable state, binds lifecycle events, delivers them one at
// a time, and exposes admin/HTTP surfaces for operators.
package unitd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/charmctl/internal/charm"
	"github.com/danmuck/charmctl/internal/charms/procservice"
	"github.com/danmuck/charmctl/internal/config"
	"github.com/danmuck/charmctl/internal/dispatch"
	"github.com/danmuck/charmctl/internal/observability"
	"github.com/danmuck/charmctl/internal/statestore"
)

var ErrNotBootstrapped = errors.New("unitd: service not bootstrapped")

// Service runs one charm unit as a standalone process.
type Service struct {
	cfg config.UnitConfig

	charm      *charm.ServiceCharm
	dispatcher *dispatch.Dispatcher
	sink       *StatusRecorder
	charms     *Registry

	deliveryMu sync.Mutex
	deliveries []dispatch.Delivery

	adminClientCount atomic.Int64
	startedAt        time.Time
}

// NewService builds an unstarted unit daemon from config.
func NewService(cfg config.UnitConfig) *Service {
	return &Service{
		cfg:    cfg,
		charms: NewRegistry(),
	}
}

// Run bootstraps the unit and blocks until process signal shutdown.
func (s *Service) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := s.Bootstrap(); err != nil {
		return err
	}
	return s.serve(ctx)
}

// Bootstrap restores durable state, builds the charm, binds events,
// and delivers the install/start lifecycle sequence.
func (s *Service) Bootstrap() error {
	if err := config.ValidateUnitConfig(s.cfg); err != nil {
		return err
	}

	store, err := statestore.OpenFile(s.cfg.StatePath)
	if err != nil {
		return err
	}
	return s.bootstrapWithStore(store)
}

// BootstrapEphemeral bootstraps against an in-memory store; state does
// not survive restarts. Used by tests and dry runs.
func (s *Service) BootstrapEphemeral() error {
	if err := config.ValidateUnitConfig(s.cfg); err != nil {
		return err
	}
	return s.bootstrapWithStore(statestore.NewMemStore())
}

func (s *Service) bootstrapWithStore(store statestore.Store) error {
	s.startedAt = time.Now()
	s.sink = NewStatusRecorder(s.cfg.Unit)

	hooks := procservice.New(procservice.Config{
		Service: s.cfg.Unit,
		Install: s.cfg.Commands.Install,
		Enable:  s.cfg.Commands.Enable,
		Disable: s.cfg.Commands.Disable,
		Start:   s.cfg.Commands.Start,
		Stop:    s.cfg.Commands.Stop,
		Sync:    s.cfg.Commands.Sync,
	}, nil)

	s.charm = charm.New(s.cfg.Unit, hooks, store, s.sink)
	for _, key := range s.cfg.RequiredSyncs {
		s.charm.InitSync(key, false, nil)
	}
	s.charm.SetRequiredSyncs(s.cfg.RequiredSyncs)
	if err := s.charms.Register(s.charm); err != nil {
		return err
	}

	s.dispatcher = dispatch.New(s.intercept)
	if err := dispatch.BindServiceEvents(s.dispatcher, s.charm); err != nil {
		return err
	}

	if _, err := s.dispatcher.Dispatch(dispatch.Event{Name: dispatch.EventInstall}); err != nil {
		return err
	}
	if _, err := s.dispatcher.Dispatch(dispatch.Event{Name: dispatch.EventStart}); err != nil {
		return err
	}

	log.Info().
		Str("unit", s.cfg.Unit).
		Str("state", string(s.charm.State())).
		Str("status", string(s.sink.Current().Kind)).
		Msg("unitd bootstrap ready")
	return nil
}

// Dispatch delivers one event to the hosted charm.
func (s *Service) Dispatch(ev dispatch.Event) (charm.Outcome, error) {
	if s.dispatcher == nil {
		return "", ErrNotBootstrapped
	}
	return s.dispatcher.Dispatch(ev)
}

// Charm returns the hosted charm.
func (s *Service) Charm() *charm.ServiceCharm { return s.charm }

// Status returns the latest projected status.
func (s *Service) Status() charm.Status {
	if s.sink == nil {
		return charm.Status{}
	}
	return s.sink.Current()
}

// Units returns the hosted unit names.
func (s *Service) Units() []string { return s.charms.Units() }

// EventNames returns the registered event names.
func (s *Service) EventNames() []string {
	if s.dispatcher == nil {
		return nil
	}
	return s.dispatcher.Events()
}

// AdminClientCount returns attached admin control clients.
func (s *Service) AdminClientCount() int64 {
	return s.adminClientCount.Load()
}

// RecentDeliveries returns up to limit most recent deliveries.
func (s *Service) RecentDeliveries(limit int) []dispatch.Delivery {
	s.deliveryMu.Lock()
	defer s.deliveryMu.Unlock()
	if limit <= 0 {
		limit = 20
	}
	if len(s.deliveries) <= limit {
		out := make([]dispatch.Delivery, len(s.deliveries))
		copy(out, s.deliveries)
		return out
	}
	out := make([]dispatch.Delivery, limit)
	copy(out, s.deliveries[len(s.deliveries)-limit:])
	return out
}

// intercept wraps every registered handler with delivery accounting
// and metrics. This is the one diagnostics seam around dispatch.
func (s *Service) intercept(name string, next dispatch.Handler) dispatch.Handler {
	return func(ev dispatch.Event) charm.Outcome {
		start := time.Now()
		outcome := next(ev)
		elapsed := time.Since(start)

		observability.RecordDispatch(s.cfg.Unit, name, string(outcome), elapsed)

		s.deliveryMu.Lock()
		s.deliveries = append(s.deliveries, dispatch.Delivery{
			EventID:   ev.ID,
			Event:     name,
			Outcome:   string(outcome),
			Elapsed:   elapsed.String(),
			Delivered: time.Now(),
		})
		if len(s.deliveries) > 512 {
			s.deliveries = s.deliveries[len(s.deliveries)-512:]
		}
		s.deliveryMu.Unlock()
		return outcome
	}
}

// serve runs the heartbeat loop plus the HTTP and admin surfaces until
// the context is canceled.
func (s *Service) serve(ctx context.Context) error {
	ticker := time.NewTicker(time.Duration(s.cfg.HeartbeatSeconds) * time.Second)
	defer ticker.Stop()

	httpErr := make(chan error, 1)
	adminErr := make(chan error, 1)

	srv := &http.Server{Addr: s.cfg.HTTPAddr, Handler: s.router()}
	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpErr <- err
			return
		}
		httpErr <- nil
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if strings.TrimSpace(s.cfg.AdminAddr) != "" {
		go func() {
			adminErr <- s.serveAdminControl(ctx, s.cfg.AdminAddr)
		}()
	}

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("unit", s.cfg.Unit).Msg("unitd shutdown")
			return nil
		case err := <-httpErr:
			if err != nil {
				return err
			}
		case err := <-adminErr:
			if err != nil {
				return err
			}
		case <-ticker.C:
			if _, err := s.Dispatch(dispatch.Event{Name: dispatch.EventUpdateStatus}); err != nil {
				log.Warn().Err(err).Msg("heartbeat update-status failed")
			}
			status := s.Status()
			log.Info().
				Str("unit", s.cfg.Unit).
				Str("state", string(s.charm.State())).
				Str("status", string(status.Kind)).
				Bool("stale", s.charm.Stale()).
				Int64("admin_clients", s.AdminClientCount()).
				Msg("unitd heartbeat")
		}
	}
}
