package kernel

import "time"

// DomainEvent is a fact raised by an aggregate and published after commit.
type DomainEvent struct {
	ID          UUID
	Name        string
	AggregateID UUID
	OccurredAt  time.Time
	Payload     map[string]any
}

func NewDomainEvent(name string, aggregateID UUID, at time.Time, payload map[string]any) DomainEvent {
	return DomainEvent{
		ID:          NewUUID(),
		Name:        name,
		AggregateID: aggregateID,
		OccurredAt:  at.UTC(),
		Payload:     payload,
	}
}

// EventRecorder is embedded by aggregates that raise domain events.
type EventRecorder struct {
	events []DomainEvent
}

func (r *EventRecorder) Raise(event DomainEvent) {
	r.events = append(r.events, event)
}

func (r *EventRecorder) DomainEvents() []DomainEvent {
	return r.events
}

func (r *EventRecorder) ClearDomainEvents() {
	r.events = nil
}
