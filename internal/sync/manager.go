package sync

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"ponselpos/backend/internal/domain"
	"ponselpos/backend/internal/remote"
)

// Manager drives the engine in the background: a periodic connectivity
// probe, a full sweep on every offline-to-online transition, and a kick
// channel that a completed business transaction can poke without waiting
// for the interval.
type Manager struct {
	engine   *Engine
	replica  remote.Replica
	interval time.Duration
	logger   *log.Logger

	mu     sync.Mutex
	online bool

	kick   chan struct{}
	stop   chan struct{}
	wg     sync.WaitGroup
	active sync.Mutex
}

func NewManager(engine *Engine, replica remote.Replica, interval time.Duration, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Manager{
		engine:   engine,
		replica:  replica,
		interval: interval,
		logger:   logger,
		kick:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
	}
}

// Online reports the result of the last connectivity probe.
func (m *Manager) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Kick requests a sweep soon. It never blocks; a sweep request already
// queued absorbs the kick.
func (m *Manager) Kick() {
	select {
	case m.kick <- struct{}{}:
	default:
	}
}

// SyncNow runs a sweep immediately on the caller's goroutine. Sweeps are
// serialized; a concurrent background sweep finishes first.
func (m *Manager) SyncNow(ctx context.Context) (*domain.SyncReport, error) {
	m.active.Lock()
	defer m.active.Unlock()
	rep, err := m.engine.SyncAll(ctx)
	m.setOnline(err == nil || !isUnavailable(err))
	return rep, err
}

// PendingCounts proxies the engine's outbox depth report.
func (m *Manager) PendingCounts(ctx context.Context) (*domain.PendingCounts, error) {
	return m.engine.PendingCounts(ctx)
}

// Start launches the background loop. Stop shuts it down and waits.
func (m *Manager) Start(ctx context.Context) {
	m.wg.Add(1)
	go m.loop(ctx)
}

func (m *Manager) Stop() {
	close(m.stop)
	m.wg.Wait()
}

func (m *Manager) loop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.probe(ctx)
	for {
		select {
		case <-m.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.probe(ctx)
		case <-m.kick:
			m.probe(ctx)
		}
	}
}

// probe pings the replica; an offline-to-online flip or an explicit kick
// while online triggers a sweep.
func (m *Manager) probe(ctx context.Context) {
	wasOnline := m.Online()
	err := m.replica.Ping(ctx)
	nowOnline := err == nil
	m.setOnline(nowOnline)

	if !nowOnline {
		if wasOnline {
			m.logger.Printf("[sync] replica unreachable, going offline: %v", err)
		}
		return
	}
	if !wasOnline {
		m.logger.Printf("[sync] replica reachable, running full sweep")
	}

	m.active.Lock()
	defer m.active.Unlock()
	if _, err := m.engine.SyncAll(ctx); err != nil {
		m.logger.Printf("[sync] sweep aborted: %v", err)
		m.setOnline(!isUnavailable(err))
	}
}

func (m *Manager) setOnline(v bool) {
	m.mu.Lock()
	m.online = v
	m.mu.Unlock()
}

func isUnavailable(err error) bool {
	return errors.Is(err, remote.ErrUnavailable)
}
