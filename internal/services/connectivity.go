package services

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"butchery-pos-api/internal/remote"
)

// Pinger is the reachability probe the monitor uses to seed and refresh its
// state, typically the remote store client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ConnectivityMonitor is the single source of truth for "are we online". It
// holds an explicit boolean rather than deriving state per call: a failed
// remote write is ground truth and flips the state immediately, so consumers
// never act on a stale optimistic flag.
type ConnectivityMonitor struct {
	mu        sync.Mutex
	online    bool
	listeners []func(online bool)
	pinger    Pinger
	logger    *logrus.Logger
}

// NewConnectivityMonitor creates a monitor seeded with the given state
func NewConnectivityMonitor(initiallyOnline bool, pinger Pinger, logger *logrus.Logger) *ConnectivityMonitor {
	return &ConnectivityMonitor{
		online: initiallyOnline,
		pinger: pinger,
		logger: logger,
	}
}

// IsOnline returns the last known connectivity state
func (m *ConnectivityMonitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Subscribe registers a listener fired on every state transition. The state
// is fully flipped before the listener runs, so a re-entrant IsOnline check
// from inside the listener sees the new state.
func (m *ConnectivityMonitor) Subscribe(listener func(online bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, listener)
}

// ReportSuccess records a successful remote operation
func (m *ConnectivityMonitor) ReportSuccess() {
	m.setState(true)
}

// ReportFailure records a failed remote operation. Only connectivity
// failures flip the state; a semantic rejection proves the store is
// reachable.
func (m *ConnectivityMonitor) ReportFailure(err error) {
	if remote.IsConnectivity(err) {
		m.setState(false)
	} else if err != nil {
		m.setState(true)
	}
}

// Probe performs an active reachability check and feeds the result back into
// the state.
func (m *ConnectivityMonitor) Probe(ctx context.Context) bool {
	if m.pinger == nil {
		return m.IsOnline()
	}

	if err := m.pinger.Ping(ctx); err != nil {
		m.ReportFailure(err)
	} else {
		m.ReportSuccess()
	}
	return m.IsOnline()
}

// StartProbing runs periodic probes until the context is cancelled. This is
// the headless stand-in for a platform connectivity signal.
func (m *ConnectivityMonitor) StartProbing(ctx context.Context, interval time.Duration) {
	if m.pinger == nil || interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Probe(ctx)
			}
		}
	}()
}

// setState flips the state and notifies listeners on transition. Listeners
// run outside the lock, after the flip is applied.
func (m *ConnectivityMonitor) setState(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	listeners := make([]func(bool), len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	m.logger.WithField("online", online).Info("Connectivity state changed")

	for _, listener := range listeners {
		listener(online)
	}
}
