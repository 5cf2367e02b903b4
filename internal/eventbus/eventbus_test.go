package eventbus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type ping struct{ N int }
type pong struct{ S string }

func TestPublishDispatchesByType(t *testing.T) {
	b := New()
	var pings []int
	var pongs []string
	SubscribeTo(b, func(_ context.Context, e ping) { pings = append(pings, e.N) })
	SubscribeTo(b, func(_ context.Context, e pong) { pongs = append(pongs, e.S) })

	PublishTo(b, context.Background(), ping{N: 1})
	PublishTo(b, context.Background(), pong{S: "a"})
	PublishTo(b, context.Background(), ping{N: 2})

	require.Equal(t, []int{1, 2}, pings)
	require.Equal(t, []string{"a"}, pongs)
}

func TestUnsubscribeRemovesOnlyThatHandler(t *testing.T) {
	b := New()
	var got []string
	// Both handlers share the same closure body; removal must not confuse them.
	mk := func(tag string) Handler[ping] {
		return func(context.Context, ping) { got = append(got, tag) }
	}
	unsubA := SubscribeTo(b, mk("a"))
	SubscribeTo(b, mk("b"))

	unsubA()
	unsubA()
	PublishTo(b, context.Background(), ping{})
	require.Equal(t, []string{"b"}, got)
}

func TestGlobalBus(t *testing.T) {
	t.Cleanup(func() { Use(nil) })

	Use(nil)
	called := false
	unsub := Subscribe(func(context.Context, ping) { called = true })
	Publish(context.Background(), ping{})
	require.False(t, called, "no bus in use")
	unsub()

	Use(New())
	Subscribe(func(context.Context, ping) { called = true })
	Publish(context.Background(), ping{})
	require.True(t, called)
}

func TestPublishDuringUnsubscribe(t *testing.T) {
	b := New()
	var unsub func()
	count := 0
	unsub = SubscribeTo(b, func(context.Context, ping) {
		count++
		unsub()
	})
	SubscribeTo(b, func(context.Context, ping) { count++ })

	PublishTo(b, context.Background(), ping{})
	PublishTo(b, context.Background(), ping{})
	require.Equal(t, 3, count)
}
