package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vovakirdan/terminal-chat/internal/auth"
	"github.com/vovakirdan/terminal-chat/internal/store"
	"github.com/vovakirdan/terminal-chat/internal/store/sqlite"
)

type testEnv struct {
	hub   *Hub
	store *sqlite.SQLiteStore
	seq   int
}

func newTestEnv(t *testing.T, opts Options, wrap func(store.MessageLog) store.MessageLog) *testEnv {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	var history store.MessageLog = st
	if wrap != nil {
		history = wrap(st)
	}

	hub := NewHub(auth.NewService(st, nil), history, opts, nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	return &testEnv{hub: hub, store: st}
}

// connect registers a new client and consumes its welcome notice.
func (e *testEnv) connect(t *testing.T) *Client {
	t.Helper()
	e.seq++
	c := NewClient(string(rune('a'+e.seq)), 256)
	e.hub.RegisterClient(c)
	mustEvent(t, c.Events, EventSystem)
	return c
}

func (e *testEnv) submit(t *testing.T, cmd *Command) {
	t.Helper()
	if err := e.hub.Submit(context.Background(), cmd); err != nil {
		t.Fatalf("submit %v: %v", cmd.Kind, err)
	}
}

// flush pings through the hub and returns every event c received before the pong.
// Because the hub applies commands in order, all earlier effects are visible.
func (e *testEnv) flush(t *testing.T, c *Client) []*Event {
	t.Helper()
	e.submit(t, &Command{Client: c, Kind: CommandPing})

	var out []*Event
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-c.Events:
			if ev.Kind == EventPong {
				return out
			}
			out = append(out, ev)
		case <-deadline:
			t.Fatalf("no pong for client %s", c.ID)
			return nil
		}
	}
}

// login authenticates c and returns the events produced, auto-join included.
func (e *testEnv) login(t *testing.T, c *Client, username, password string) []*Event {
	t.Helper()
	e.submit(t, &Command{Client: c, Kind: CommandLogin, Username: username, Password: password})
	return e.flush(t, c)
}

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

func ofKind(events []*Event, kind EventKind) []*Event {
	var out []*Event
	for _, ev := range events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

func onlyOne(t *testing.T, events []*Event, kind EventKind) *Event {
	t.Helper()
	matched := ofKind(events, kind)
	if len(matched) != 1 {
		t.Fatalf("expected exactly one event of kind %v, got %d (%+v)", kind, len(matched), events)
	}
	return matched[0]
}

var errDiskFull = errors.New("disk full")

// failingLog rejects appends and optionally reads.
type failingLog struct {
	store.MessageLog
	failReads bool
}

func (f *failingLog) AppendMessage(context.Context, *store.ChatMessage) error {
	return errDiskFull
}

func (f *failingLog) TailMessages(ctx context.Context, community string, n int) ([]*store.ChatMessage, error) {
	if f.failReads {
		return nil, errDiskFull
	}
	return f.MessageLog.TailMessages(ctx, community, n)
}
