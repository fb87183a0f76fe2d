package runtime

import (
	"context"
	"sync"
	"testing"
	"time"

	"roomhub/domain"

	"github.com/stretchr/testify/require"
)

type Sink struct{}

func (s Sink) Consume(_ context.Context, _ []byte) error {
	return nil
}

func TestRegistry_Register_One_Room_One_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	// Given no connection exists
	req.Zero(registry.Count())

	// When a participant registers into a room
	conn := registry.Register("lobby", "Alice", Sink{})

	// Then the connection is live with a fresh handle
	req.NotZero(conn.Handle)
	req.Equal(domain.RoomID("lobby"), conn.Room)
	req.Equal("Alice", conn.Name)
	req.False(conn.CreatedAt.IsZero())

	req.Equal(1, registry.Count())
	req.Len(registry.ListByRoom("lobby"), 1)
}

func TestRegistry_Register_Handles_Are_Unique(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	seen := make(map[domain.Handle]struct{})
	for i := 0; i < 100; i++ {
		conn := registry.Register("lobby", "user", Sink{})
		_, dup := seen[conn.Handle]
		req.False(dup)
		seen[conn.Handle] = struct{}{}
	}
}

func TestRegistry_Register_Concurrent_Handles_Are_Unique(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	const n = 200
	handles := make(chan domain.Handle, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			handles <- registry.Register("lobby", "user", Sink{}).Handle
		}()
	}
	wg.Wait()
	close(handles)

	seen := make(map[domain.Handle]struct{})
	for h := range handles {
		_, dup := seen[h]
		req.False(dup)
		seen[h] = struct{}{}
	}
	req.Len(seen, n)
}

func TestRegistry_Remove_Then_Lookup_Fails(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	// Given a registered connection
	conn := registry.Register("lobby", "Alice", Sink{})
	_, ok := registry.Lookup(conn.Handle, conn.CreatedAt)
	req.True(ok)

	// When it is removed
	registry.Remove(conn.Handle)

	// Then lookup reports not-found for any creation time
	_, ok = registry.Lookup(conn.Handle, conn.CreatedAt)
	req.False(ok)
	_, ok = registry.Get(conn.Handle)
	req.False(ok)

	// And the room entry is pruned entirely
	req.Zero(registry.Count())
	req.Nil(registry.ListByRoom("lobby"))
	req.Empty(registry.Rooms())
}

func TestRegistry_Lookup_Requires_Exact_CreatedAt(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	conn := registry.Register("lobby", "Alice", Sink{})

	// A stale timestamp must not resolve, even for a live handle
	_, ok := registry.Lookup(conn.Handle, conn.CreatedAt.Add(time.Nanosecond))
	req.False(ok)

	got, ok := registry.Lookup(conn.Handle, conn.CreatedAt)
	req.True(ok)
	req.Equal(conn, got)
}

func TestRegistry_Remove_Is_Safe_When_Absent(t *testing.T) {
	registry := NewRegistry()
	registry.Remove(domain.Handle(42))
	require.Zero(t, registry.Count())
}

func TestRegistry_ListByRoom_Does_Not_Cross_Rooms(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	alice := registry.Register("lobby", "Alice", Sink{})
	bob := registry.Register("lobby", "Bob", Sink{})
	registry.Register("stage", "Carol", Sink{})

	members := registry.ListByRoom("lobby")
	req.Len(members, 2)
	for _, m := range members {
		req.Contains([]domain.Handle{alice.Handle, bob.Handle}, m.Conn.Handle)
	}

	req.Len(registry.ListByRoom("stage"), 1)
	req.Nil(registry.ListByRoom("empty"))

	req.Equal(map[domain.RoomID]int{"lobby": 2, "stage": 1}, registry.Rooms())
}

func TestRegistry_Remove_One_Room_Multiple_Connections(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	alice := registry.Register("lobby", "Alice", Sink{})
	bob := registry.Register("lobby", "Bob", Sink{})

	// When one participant leaves
	registry.Remove(alice.Handle)

	// Then only the other one is left in the room
	req.Equal(1, registry.Count())
	members := registry.ListByRoom("lobby")
	req.Len(members, 1)
	req.Equal(bob.Handle, members[0].Conn.Handle)
}
