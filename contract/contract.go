package contract

import (
	"context"
	"reflect"
	"time"

	"roomhub/domain"
)

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging during worker initialization or lifecycle
// events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink is one connection's outbound channel as seen by the drain loop.
// Consume must never block the caller beyond ctx.
type EventSink interface {
	Consume(ctx context.Context, frame []byte) error
}

// Member pairs a live connection with its delivery sink.
type Member struct {
	Conn domain.Connection
	Sink EventSink
}

type IRegistry interface {
	Register(room domain.RoomID, name string, sink EventSink) domain.Connection
	Remove(handle domain.Handle)
	Get(handle domain.Handle) (domain.Connection, bool)
	Lookup(handle domain.Handle, createdAt time.Time) (domain.Connection, bool)
	ListByRoom(room domain.RoomID) []Member
}

type IDispatcher interface {
	Enqueue(ctx context.Context, sender domain.Handle, kind domain.Kind, payload any) error
	EnqueueFrom(ctx context.Context, conn domain.Connection, kind domain.Kind, payload any) error
}
