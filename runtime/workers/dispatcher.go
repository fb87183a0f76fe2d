package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"roomhub/contract"
	"roomhub/domain"
	"roomhub/domain/event"
	"roomhub/errors"

	"github.com/google/uuid"
)

// Dispatcher owns the single process-wide FIFO of events and the one drain
// loop that delivers them.
//
// Per-room ordering falls out of the structure: one queue, one consumer.
// Events for different rooms are not ordered relative to each other.
//
// The drain loop is deliberately NOT supervised or restarted: it is the
// sole path to delivering any event, so its death would silently stall
// every room. A fault escaping Run must be treated as fatal by the caller.
type Dispatcher struct {
	log      *slog.Logger
	registry contract.IRegistry
	queue    chan event.Event
}

func NewDispatcher(log *slog.Logger, registry contract.IRegistry, queueSize int) *Dispatcher {
	return &Dispatcher{
		log:      log,
		registry: registry,
		queue:    make(chan event.Event, queueSize),
	}
}

// Enqueue appends one event to the FIFO. The sender's room and display name
// are resolved from the registry here, never taken from the producer, so
// events cannot carry a spoofed identity. EnqueuedAt is stamped here as
// well: ordering and timestamps belong to the queue, not to producers.
//
// Blocks only on normal channel backpressure; fails only when the sender is
// unknown or the hub is shutting down.
func (d *Dispatcher) Enqueue(ctx context.Context, sender domain.Handle, kind domain.Kind, payload any) error {
	conn, ok := d.registry.Get(sender)
	if !ok {
		return fmt.Errorf("%w: handle %d", errors.ErrUnknownSender, sender)
	}
	return d.EnqueueFrom(ctx, conn, kind, payload)
}

// EnqueueFrom appends one event on behalf of an already-resolved connection.
// The socket layer uses it for lifecycle events: the leave event is enqueued
// after the connection has been removed from the registry, so there is no
// table entry left to resolve against.
func (d *Dispatcher) EnqueueFrom(ctx context.Context, conn domain.Connection, kind domain.Kind, payload any) error {
	evt := event.Event{
		ID:           uuid.New(),
		Kind:         kind,
		Room:         conn.Room,
		SenderHandle: conn.Handle,
		SenderName:   conn.Name,
		Payload:      payload,
		EnqueuedAt:   time.Now(),
	}

	select {
	case d.queue <- evt:
		return nil
	case <-ctx.Done():
		return errors.ErrShuttingDown
	}
}

// Run pops events forever and fans each one out to every connection
// currently registered in the event's room. It returns nil on context
// cancellation; any other return is an internal fault and fatal to the
// process by contract.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			d.log.Debug("Context done, stopping dispatcher drain loop")
			return nil
		case evt := <-d.queue:
			if err := d.fanout(ctx, evt); err != nil {
				return err
			}
		}
	}
}

// fanout delivers one event to the room's current members. A failure on one
// sink is skipped, never retried, and never aborts the remaining deliveries:
// a broken socket is detected and evicted independently by the web layer.
func (d *Dispatcher) fanout(ctx context.Context, evt event.Event) error {
	frame, err := event.Encode(evt)
	if err != nil {
		return fmt.Errorf("encoding event %s: %w", evt.ID, err)
	}

	for _, member := range d.registry.ListByRoom(evt.Room) {
		if err := member.Sink.Consume(ctx, frame); err != nil {
			d.log.Debug("Skipping undeliverable connection",
				"handle", member.Conn.Handle,
				"room", evt.Room,
				"error", err)
		}
	}
	return nil
}
