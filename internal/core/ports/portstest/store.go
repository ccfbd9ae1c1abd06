// Package portstest provides an in-memory implementation of the ports for use in tests.
//
// A transaction holds the store mutex from Begin until Commit or Rollback and works on a
// copy of the data, so transactions are serializable and rollback discards their writes.
// Repository calls made outside a transaction run against the committed state.
package portstest

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"courierhub/internal/core/domain/model/courier"
	"courierhub/internal/core/domain/model/credittask"
	"courierhub/internal/core/domain/model/kernel"
	"courierhub/internal/core/domain/model/order"
	"courierhub/internal/core/domain/model/wallet"
	"courierhub/internal/core/domain/model/withdrawal"
	"courierhub/internal/core/domain/model/zone"
	"courierhub/internal/core/ports"
)

type courierSnapshot struct {
	id        kernel.UUID
	name      string
	vehicle   courier.Vehicle
	location  *kernel.Location
	available bool
	updatedAt *time.Time
}

type state struct {
	orders      map[kernel.UUID]order.Snapshot
	history     []order.HistoryEntry
	couriers    map[kernel.UUID]courierSnapshot
	zones       map[kernel.UUID]zone.Zone
	wallets     map[kernel.UUID]wallet.Snapshot
	credits     map[kernel.UUID]wallet.CreditEntry
	withdrawals map[kernel.UUID]withdrawal.Snapshot
	tasks       map[kernel.UUID]credittask.Task
}

func newState() *state {
	return &state{
		orders:      map[kernel.UUID]order.Snapshot{},
		couriers:    map[kernel.UUID]courierSnapshot{},
		zones:       map[kernel.UUID]zone.Zone{},
		wallets:     map[kernel.UUID]wallet.Snapshot{},
		credits:     map[kernel.UUID]wallet.CreditEntry{},
		withdrawals: map[kernel.UUID]withdrawal.Snapshot{},
		tasks:       map[kernel.UUID]credittask.Task{},
	}
}

func (s *state) clone() *state {
	return &state{
		orders:      maps.Clone(s.orders),
		history:     slices.Clone(s.history),
		couriers:    maps.Clone(s.couriers),
		zones:       maps.Clone(s.zones),
		wallets:     maps.Clone(s.wallets),
		credits:     maps.Clone(s.credits),
		withdrawals: maps.Clone(s.withdrawals),
		tasks:       maps.Clone(s.tasks),
	}
}

// Store is the shared in-memory database.
type Store struct {
	txMu sync.Mutex

	mu        sync.Mutex
	committed *state
	events    []kernel.DomainEvent
	failures  map[string][]error
	publisher ports.EventPublisher
}

func NewStore() *Store {
	return &Store{committed: newState(), failures: map[string][]error{}}
}

// WithPublisher forwards committed events to p in addition to recording them.
func (s *Store) WithPublisher(p ports.EventPublisher) *Store {
	s.publisher = p
	return s
}

// Factory returns a UnitOfWorkFactory over the store.
func (s *Store) Factory() ports.UnitOfWorkFactory {
	return factory{store: s}
}

// FailNext makes the next calls of op (for example "wallets.GetForUpdate") return errs in turn.
func (s *Store) FailNext(op string, errs ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = append(s.failures[op], errs...)
}

// Events returns every event published after a successful commit.
func (s *Store) Events() []kernel.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.events)
}

// EventNames returns the names of the published events in order.
func (s *Store) EventNames() []string {
	names := make([]string, 0)
	for _, e := range s.Events() {
		names = append(names, e.Name)
	}
	return names
}

// History returns all committed history entries.
func (s *Store) History() []order.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.committed.history)
}

// Wallet returns the committed wallet of courierID.
func (s *Store) Wallet(courierID kernel.UUID) (wallet.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.committed.wallets[courierID]
	return w, ok
}

// Credits returns the number of committed credit entries.
func (s *Store) Credits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.committed.credits)
}

// Tasks returns copies of all committed credit tasks.
func (s *Store) Tasks() []credittask.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Collect(maps.Values(s.committed.tasks))
}

func (s *Store) takeFailure(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	queue := s.failures[op]
	if len(queue) == 0 {
		return nil
	}
	s.failures[op] = queue[1:]
	return queue[0]
}

func (s *Store) publish(ctx context.Context, events []kernel.DomainEvent) {
	if len(events) == 0 {
		return
	}
	s.mu.Lock()
	s.events = append(s.events, events...)
	s.mu.Unlock()
	if s.publisher != nil {
		s.publisher.Publish(ctx, events...)
	}
}
