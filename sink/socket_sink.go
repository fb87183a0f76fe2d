package sink

import (
	"context"
	"fmt"
	"sync"
)

// ErrBufferFull reports a connection whose write pump is not keeping up.
var ErrBufferFull = fmt.Errorf("connection buffer full")

// ErrClosed reports a sink whose connection is already gone.
var ErrClosed = fmt.Errorf("sink closed")

// SocketSink is one connection's outbound buffer.
//
// Consume is called by the drain loop during fan-out and must never block
// it: a full buffer or a closed sink is reported as an error and the frame
// is dropped for this recipient only. The socket's write pump drains Frames.
type SocketSink struct {
	frames chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

func NewSocketSink(bufferSize int) *SocketSink {
	return &SocketSink{
		frames: make(chan []byte, bufferSize),
		done:   make(chan struct{}),
	}
}

// Consume hands one serialized event to the connection.
func (s *SocketSink) Consume(ctx context.Context, frame []byte) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}

	select {
	case s.frames <- frame:
		return nil
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrBufferFull
	}
}

// Frames exposes the outbound buffer to the write pump.
func (s *SocketSink) Frames() <-chan []byte {
	return s.frames
}

// Done is closed when the sink is retired.
func (s *SocketSink) Done() <-chan struct{} {
	return s.done
}

// Close retires the sink. Safe to call more than once; frames already
// buffered are abandoned with the connection.
func (s *SocketSink) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}
