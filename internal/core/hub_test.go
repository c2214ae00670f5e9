package core

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/terminal-chat/internal/store"
)

func TestLoginAutoJoinsDefaultCommunity(t *testing.T) {
	env := newTestEnv(t, Options{}, nil)
	alice := env.connect(t)

	events := env.login(t, alice, "alice", "pw1234")

	ok := onlyOne(t, events, EventLoginSuccess)
	if ok.Username != "alice" || ok.DisplayName != "alice" || ok.Token == "" {
		t.Fatalf("unexpected login_success: %+v", ok)
	}
	joined := onlyOne(t, events, EventCommunityJoined)
	if joined.Community != "global" || len(joined.Members) != 1 || joined.Members[0].Username != "alice" {
		t.Fatalf("unexpected community_joined: %+v", joined)
	}
	self := onlyOne(t, events, EventUserJoined)
	if self.Username != "alice" || self.Community != "global" {
		t.Fatalf("unexpected user_joined: %+v", self)
	}

	env.submit(t, &Command{Client: alice, Kind: CommandGetUsers})
	list := onlyOne(t, env.flush(t, alice), EventUsersList)
	if len(list.Names) != 1 || list.Names[0] != "alice" {
		t.Fatalf("unexpected users_list: %+v", list.Names)
	}
}

func TestLoginTwiceKeepsSingleProfile(t *testing.T) {
	env := newTestEnv(t, Options{}, nil)

	first := onlyOne(t, env.login(t, env.connect(t), "alice", "pw1234"), EventLoginSuccess)
	second := onlyOne(t, env.login(t, env.connect(t), "alice", "pw1234"), EventLoginSuccess)

	if first.Username != second.Username || first.DisplayName != second.DisplayName {
		t.Fatalf("identity changed between logins: %+v vs %+v", first, second)
	}
	if first.Token == second.Token {
		t.Fatal("each login must issue a fresh token")
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	env := newTestEnv(t, Options{}, nil)
	env.login(t, env.connect(t), "alice", "pw1234")

	intruder := env.connect(t)
	events := env.login(t, intruder, "alice", "wrong")

	ev := onlyOne(t, events, EventError)
	if ev.Error.Code != ErrCodeInvalidCredentials || ev.Error.Message != "Invalid credentials" {
		t.Fatalf("unexpected error: %+v", ev.Error)
	}
	if len(ofKind(events, EventCommunityJoined)) != 0 {
		t.Fatal("failed login must not join a community")
	}

	// Still unauthenticated: chat is ignored.
	env.submit(t, &Command{Client: intruder, Kind: CommandChatMessage, Content: "hi"})
	if got := env.flush(t, intruder); len(got) != 0 {
		t.Fatalf("expected silence, got %+v", got)
	}
}

func TestLoginRequiresCredentials(t *testing.T) {
	env := newTestEnv(t, Options{}, nil)
	ev := onlyOne(t, env.login(t, env.connect(t), "alice", ""), EventError)
	if ev.Error.Message != "Username and password required" {
		t.Fatalf("unexpected error: %+v", ev.Error)
	}
}

func TestChatBroadcastIncludesSender(t *testing.T) {
	env := newTestEnv(t, Options{}, nil)
	alice := env.connect(t)
	bob := env.connect(t)
	env.login(t, alice, "alice", "pw1234")
	env.login(t, bob, "bob", "pw5678")
	env.flush(t, alice)

	env.submit(t, &Command{Client: alice, Kind: CommandChatMessage, Content: "hello"})

	for _, c := range []*Client{alice, bob} {
		msg := onlyOne(t, env.flush(t, c), EventChatMessage)
		if msg.Message.Content != "hello" || msg.Message.Username != "alice" || msg.Message.Community != "global" {
			t.Fatalf("unexpected chat_message for %s: %+v", c.ID, msg.Message)
		}
		if msg.Message.IsCommand {
			t.Fatal("plain text flagged as command")
		}
	}

	tail, err := env.store.TailMessages(context.Background(), "global", 1)
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if len(tail) != 1 || tail[0].Content != "hello" {
		t.Fatalf("message not persisted: %+v", tail)
	}
}

func TestJoinCommunityNormalizesAndAnnounces(t *testing.T) {
	env := newTestEnv(t, Options{}, nil)
	alice := env.connect(t)
	bob := env.connect(t)
	env.login(t, alice, "alice", "pw1234")
	env.login(t, bob, "bob", "pw5678")
	env.flush(t, alice)

	env.submit(t, &Command{Client: alice, Kind: CommandJoinCommunity, Community: "DEV"})

	joined := onlyOne(t, env.flush(t, alice), EventCommunityJoined)
	if joined.Community != "dev" {
		t.Fatalf("community = %q, want dev", joined.Community)
	}

	bobEvents := env.flush(t, bob)
	left := onlyOne(t, bobEvents, EventUserLeft)
	if left.Username != "alice" || left.Community != "global" {
		t.Fatalf("unexpected user_left: %+v", left)
	}
	if n := len(ofKind(bobEvents, EventUserJoined)); n != 0 {
		t.Fatalf("bob is not in dev and must not see its joins, got %d", n)
	}

	stats, err := env.hub.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	counts := map[string]int{}
	for _, c := range stats.Communities {
		counts[c.Name] = c.UserCount
	}
	if counts["global"] != 1 || counts["dev"] != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
}

func TestJoinIsExclusive(t *testing.T) {
	env := newTestEnv(t, Options{}, nil)
	alice := env.connect(t)
	env.login(t, alice, "alice", "pw1234")

	for _, room := range []string{"dev", "ops", "dev", "global", "ops"} {
		env.submit(t, &Command{Client: alice, Kind: CommandJoinCommunity, Community: room})
	}
	env.flush(t, alice)

	stats, err := env.hub.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	total := 0
	for _, c := range stats.Communities {
		total += c.UserCount
		if c.Name == "ops" && c.UserCount != 1 {
			t.Fatalf("alice should be in ops, stats=%+v", stats.Communities)
		}
	}
	if total != 1 {
		t.Fatalf("alice counted %d times across communities", total)
	}
	if stats.TotalUsers != 1 {
		t.Fatalf("total users = %d, want 1", stats.TotalUsers)
	}
}

func TestJoinCommunityValidatesName(t *testing.T) {
	env := newTestEnv(t, Options{}, nil)
	alice := env.connect(t)
	env.login(t, alice, "alice", "pw1234")

	for _, name := range []string{"x", " ", strings.Repeat("a", 21)} {
		env.submit(t, &Command{Client: alice, Kind: CommandJoinCommunity, Community: name})
		ev := onlyOne(t, env.flush(t, alice), EventError)
		if ev.Error.Code != ErrCodeBadRequest {
			t.Fatalf("name %q: unexpected error %+v", name, ev.Error)
		}
	}
}

func TestDisconnectAnnouncesOnce(t *testing.T) {
	env := newTestEnv(t, Options{}, nil)
	alice := env.connect(t)
	bob := env.connect(t)
	env.login(t, alice, "alice", "pw1234")
	env.login(t, bob, "bob", "pw5678")
	env.submit(t, &Command{Client: alice, Kind: CommandJoinCommunity, Community: "dev"})
	env.submit(t, &Command{Client: bob, Kind: CommandJoinCommunity, Community: "dev"})
	env.flush(t, alice)
	env.flush(t, bob)

	env.hub.UnregisterClient(alice)

	left := onlyOne(t, env.flush(t, bob), EventUserLeft)
	if left.Username != "alice" || left.Community != "dev" {
		t.Fatalf("unexpected user_left: %+v", left)
	}

	stats, err := env.hub.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalUsers != 1 || stats.Connections != 1 {
		t.Fatalf("unexpected stats after disconnect: %+v", stats)
	}
}

func TestGhostSuppressesOnlyPresence(t *testing.T) {
	env := newTestEnv(t, Options{}, nil)
	alice := env.connect(t)
	bob := env.connect(t)
	env.login(t, bob, "bob", "pw5678")
	env.login(t, alice, "alice", "pw1234")
	env.flush(t, bob)

	env.submit(t, &Command{Client: alice, Kind: CommandToggleGhost})
	ack := onlyOne(t, env.flush(t, alice), EventGhostToggled)
	if !ack.IsGhost {
		t.Fatal("expected ghost on")
	}
	if got := env.flush(t, bob); len(got) != 0 {
		t.Fatalf("toggle must not broadcast, bob got %+v", got)
	}

	env.submit(t, &Command{Client: bob, Kind: CommandJoinCommunity, Community: "dev"})
	env.flush(t, bob)
	env.submit(t, &Command{Client: alice, Kind: CommandJoinCommunity, Community: "dev"})
	env.submit(t, &Command{Client: alice, Kind: CommandChatMessage, Content: "boo"})
	env.flush(t, alice)

	bobEvents := env.flush(t, bob)
	if n := len(ofKind(bobEvents, EventUserJoined)); n != 0 {
		t.Fatalf("ghost join announced %d times", n)
	}
	msg := onlyOne(t, bobEvents, EventChatMessage)
	if msg.Message.Content != "boo" {
		t.Fatalf("ghost chat not delivered: %+v", msg.Message)
	}

	env.submit(t, &Command{Client: bob, Kind: CommandGetUsers})
	list := onlyOne(t, env.flush(t, bob), EventUsersList)
	if len(list.Names) != 2 {
		t.Fatalf("ghost must still be a member, got %v", list.Names)
	}

	env.hub.UnregisterClient(alice)
	if n := len(ofKind(env.flush(t, bob), EventUserLeft)); n != 0 {
		t.Fatalf("ghost disconnect announced %d times", n)
	}
}

func TestRestoreSession(t *testing.T) {
	env := newTestEnv(t, Options{}, nil)
	first := env.connect(t)
	token := onlyOne(t, env.login(t, first, "alice", "pw1234"), EventLoginSuccess).Token
	env.hub.UnregisterClient(first)

	second := env.connect(t)
	env.submit(t, &Command{Client: second, Kind: CommandRestoreSession, Token: token})
	events := env.flush(t, second)

	restored := onlyOne(t, events, EventSessionRestored)
	if restored.Username != "alice" || restored.DisplayName != "alice" {
		t.Fatalf("unexpected session_restored: %+v", restored)
	}
	if joined := onlyOne(t, events, EventCommunityJoined); joined.Community != "global" {
		t.Fatalf("expected auto-join of global, got %q", joined.Community)
	}

	unknown := env.connect(t)
	env.submit(t, &Command{Client: unknown, Kind: CommandRestoreSession, Token: "nope"})
	ev := onlyOne(t, env.flush(t, unknown), EventError)
	if ev.Error.Code != ErrCodeSessionNotFound {
		t.Fatalf("unexpected error: %+v", ev.Error)
	}
}

func TestChangeDisplayName(t *testing.T) {
	env := newTestEnv(t, Options{}, nil)
	alice := env.connect(t)
	token := onlyOne(t, env.login(t, alice, "alice", "pw1234"), EventLoginSuccess).Token

	env.submit(t, &Command{Client: alice, Kind: CommandChangeDisplayName, DisplayName: "   "})
	if ev := onlyOne(t, env.flush(t, alice), EventError); ev.Error.Message != "Display name cannot be empty" {
		t.Fatalf("unexpected error: %+v", ev.Error)
	}

	env.submit(t, &Command{Client: alice, Kind: CommandChangeDisplayName, DisplayName: " Ally "})
	changed := onlyOne(t, env.flush(t, alice), EventDisplayNameChanged)
	if changed.DisplayName != "Ally" {
		t.Fatalf("display name = %q", changed.DisplayName)
	}

	sess, err := env.store.GetSession(context.Background(), token)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if sess.DisplayName != "Ally" {
		t.Fatalf("session display name = %q", sess.DisplayName)
	}

	env.submit(t, &Command{Client: alice, Kind: CommandGetUsers})
	if list := onlyOne(t, env.flush(t, alice), EventUsersList); list.Names[0] != "Ally" {
		t.Fatalf("users_list = %v", list.Names)
	}
}

func TestSlashCommands(t *testing.T) {
	env := newTestEnv(t, Options{}, nil)
	alice := env.connect(t)
	bob := env.connect(t)
	env.login(t, alice, "alice", "pw1234")
	env.login(t, bob, "bob", "pw5678")
	env.flush(t, alice)

	env.submit(t, &Command{Client: alice, Kind: CommandChatMessage, Content: "/whoami"})
	events := env.flush(t, alice)
	if len(events) != 2 || events[0].Kind != EventChatMessage || events[1].Kind != EventCommandResponse {
		t.Fatalf("expected broadcast then reply, got %+v", events)
	}
	if !events[0].Message.IsCommand {
		t.Fatal("slash content must be flagged as command")
	}
	want := "Username: alice\nDisplay Name: alice\nCommunity: global\nGhost Mode: OFF"
	if events[1].Content != want {
		t.Fatalf("whoami = %q", events[1].Content)
	}

	bobEvents := env.flush(t, bob)
	onlyOne(t, bobEvents, EventChatMessage)
	if n := len(ofKind(bobEvents, EventCommandResponse)); n != 0 {
		t.Fatal("command replies go to the sender only")
	}

	env.submit(t, &Command{Client: alice, Kind: CommandChatMessage, Content: "/nick Big Al"})
	if ev := onlyOne(t, env.flush(t, alice), EventDisplayNameChanged); ev.DisplayName != "Big Al" {
		t.Fatalf("nick = %q", ev.DisplayName)
	}

	env.submit(t, &Command{Client: alice, Kind: CommandChatMessage, Content: "/nick"})
	if n := len(ofKind(env.flush(t, alice), EventDisplayNameChanged)); n != 0 {
		t.Fatal("/nick without a name is ignored")
	}

	env.submit(t, &Command{Client: alice, Kind: CommandChatMessage, Content: "/users"})
	list := onlyOne(t, env.flush(t, alice), EventUsersList)
	if len(list.Names) != 2 || list.Names[0] != "Big Al" || list.Names[1] != "bob" {
		t.Fatalf("users = %v", list.Names)
	}

	env.submit(t, &Command{Client: alice, Kind: CommandChatMessage, Content: "/help"})
	events = env.flush(t, alice)
	if len(events) != 1 || events[0].Kind != EventChatMessage {
		t.Fatalf("unknown commands only broadcast, got %+v", events)
	}
}

func TestHistoryOnJoinAndRequest(t *testing.T) {
	env := newTestEnv(t, Options{HistoryLimit: 2}, nil)
	alice := env.connect(t)
	env.login(t, alice, "alice", "pw1234")

	for _, text := range []string{"one", "two", "three"} {
		env.submit(t, &Command{Client: alice, Kind: CommandChatMessage, Content: text})
	}
	env.submit(t, &Command{Client: alice, Kind: CommandJoinCommunity, Community: "dev"})
	env.submit(t, &Command{Client: alice, Kind: CommandJoinCommunity, Community: "global"})
	joined := ofKind(env.flush(t, alice), EventCommunityJoined)
	back := joined[len(joined)-1]
	if len(back.Messages) != 2 || back.Messages[0].Content != "two" || back.Messages[1].Content != "three" {
		t.Fatalf("unexpected history on join: %+v", back.Messages)
	}

	env.submit(t, &Command{Client: alice, Kind: CommandGetHistory, Community: "GLOBAL"})
	hist := onlyOne(t, env.flush(t, alice), EventChatHistory)
	if hist.Community != "global" || len(hist.Messages) != 2 {
		t.Fatalf("unexpected chat_history: %+v", hist)
	}

	env.submit(t, &Command{Client: alice, Kind: CommandGetHistory})
	if hist := onlyOne(t, env.flush(t, alice), EventChatHistory); hist.Community != "global" {
		t.Fatalf("default history community = %q", hist.Community)
	}
}

func TestPersistenceFailureIsNotBroadcast(t *testing.T) {
	env := newTestEnv(t, Options{}, func(log store.MessageLog) store.MessageLog {
		return &failingLog{MessageLog: log}
	})
	alice := env.connect(t)
	bob := env.connect(t)
	env.login(t, alice, "alice", "pw1234")
	env.login(t, bob, "bob", "pw5678")
	env.flush(t, alice)

	env.submit(t, &Command{Client: alice, Kind: CommandChatMessage, Content: "lost"})

	ev := onlyOne(t, env.flush(t, alice), EventError)
	if ev.Error.Code != ErrCodeInternal {
		t.Fatalf("unexpected error: %+v", ev.Error)
	}
	if n := len(ofKind(env.flush(t, bob), EventChatMessage)); n != 0 {
		t.Fatal("peers must not see a message that failed to persist")
	}
}

func TestHistoryReadFailureKeepsMembership(t *testing.T) {
	env := newTestEnv(t, Options{}, func(log store.MessageLog) store.MessageLog {
		return &failingLog{MessageLog: log, failReads: true}
	})
	alice := env.connect(t)

	events := env.login(t, alice, "alice", "pw1234")
	onlyOne(t, events, EventLoginSuccess)
	onlyOne(t, events, EventError)

	stats, err := env.hub.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	for _, c := range stats.Communities {
		if c.UserCount != 0 {
			t.Fatalf("failed join must not add membership: %+v", stats.Communities)
		}
	}
}

func TestStrictProtocolReportsUnauthenticated(t *testing.T) {
	env := newTestEnv(t, Options{StrictProtocol: true}, nil)
	c := env.connect(t)

	env.submit(t, &Command{Client: c, Kind: CommandChatMessage, Content: "hi"})
	env.submit(t, &Command{Client: c, Kind: CommandJoinCommunity, Community: "dev"})
	errs := ofKind(env.flush(t, c), EventError)
	if len(errs) != 2 || errs[0].Error.Code != ErrCodeUnauthorized {
		t.Fatalf("expected two unauthorized errors, got %+v", errs)
	}
}

func TestTimestampsUseClock(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 9, 7, 0, 0, time.Local)
	env := newTestEnv(t, Options{Now: func() time.Time { return fixed }}, nil)
	alice := env.connect(t)

	joined := onlyOne(t, env.login(t, alice, "alice", "pw1234"), EventUserJoined)
	if joined.Timestamp != "09:07" {
		t.Fatalf("timestamp = %q, want 09:07", joined.Timestamp)
	}
}

func TestSubmitAfterStop(t *testing.T) {
	hub := NewHub(nil, nil, Options{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	if err := hub.Submit(context.Background(), &Command{Kind: CommandPing}); err != ErrHubClosed {
		// The buffered channel may still accept; either outcome is fine as long as nothing blocks.
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if _, err := hub.Stats(context.Background()); err != ErrHubClosed {
		t.Fatalf("stats after stop: %v", err)
	}
}
