package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/terminal-chat/internal/metrics"
	"github.com/vovakirdan/terminal-chat/internal/store"
)

// Welcome is sent as a system notice to every new connection.
const Welcome = "[SYS] > Connected to Terminal Chat"

// Sessions is the credential and session service the hub authenticates against.
type Sessions interface {
	RegisterOrLogin(ctx context.Context, username, password string) (*store.Profile, bool, error)
	CreateSession(ctx context.Context, username, displayName string) (string, error)
	ResolveSession(ctx context.Context, token string) (*store.Session, error)
	RenameDisplayName(ctx context.Context, username, token, newName string) (string, error)
}

// Options tune hub behavior.
type Options struct {
	DefaultCommunity string
	HistoryLimit     int
	// StrictProtocol makes unauthenticated chat, join and rename attempts
	// answer with an error instead of being ignored.
	StrictProtocol bool
	Now            func() time.Time
}

// CommunityStats is the member count of one community.
type CommunityStats struct {
	Name      string
	UserCount int
}

// Stats is a read-only snapshot of the hub.
type Stats struct {
	TotalUsers  int
	Connections int
	Communities []CommunityStats
}

// Hub owns the connection and community registries and applies client
// commands one at a time on a single goroutine.
type Hub struct {
	sessions Sessions
	history  store.MessageLog
	opts     Options
	log      *zerolog.Logger

	commands chan *Command
	stats    chan chan Stats
	done     chan struct{}

	conns       *connections
	communities *communities
}

// NewHub creates a new chat hub instance.
func NewHub(sessions Sessions, history store.MessageLog, opts Options, logger *zerolog.Logger) *Hub {
	if opts.DefaultCommunity == "" {
		opts.DefaultCommunity = "global"
	}
	opts.DefaultCommunity = NormalizeCommunity(opts.DefaultCommunity)
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 100
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		sessions:    sessions,
		history:     history,
		opts:        opts,
		log:         logger,
		commands:    make(chan *Command, 256),
		stats:       make(chan chan Stats),
		done:        make(chan struct{}),
		conns:       newConnections(),
		communities: newCommunities(opts.DefaultCommunity),
	}
}

// Run processes commands until ctx is canceled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case cmd := <-h.commands:
			h.handle(ctx, cmd)
		case reply := <-h.stats:
			reply <- h.snapshot()
		case <-ctx.Done():
			return
		}
	}
}

// RegisterClient adds a freshly connected client.
func (h *Hub) RegisterClient(c *Client) {
	_ = h.Submit(context.Background(), &Command{Client: c, Kind: CommandConnect})
}

// UnregisterClient removes a client from every registry and notifies its room.
func (h *Hub) UnregisterClient(c *Client) {
	_ = h.Submit(context.Background(), &Command{Client: c, Kind: CommandDisconnect})
}

// Submit queues a command. Commands from one sender are applied in order.
func (h *Hub) Submit(ctx context.Context, cmd *Command) error {
	select {
	case h.commands <- cmd:
		return nil
	case <-h.done:
		return ErrHubClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns a snapshot of live connections and community sizes.
func (h *Hub) Stats(ctx context.Context) (Stats, error) {
	reply := make(chan Stats, 1)
	select {
	case h.stats <- reply:
	case <-h.done:
		return Stats{}, ErrHubClosed
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	}
	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	}
}

func (h *Hub) snapshot() Stats {
	return Stats{
		TotalUsers:  h.conns.authenticated(),
		Connections: h.conns.len(),
		Communities: h.communities.Counts(),
	}
}

func (h *Hub) handle(ctx context.Context, cmd *Command) {
	c := cmd.Client
	if c == nil {
		return
	}

	switch cmd.Kind {
	case CommandConnect:
		h.connect(c)
		return
	case CommandDisconnect:
		h.disconnect(c)
		return
	}

	if !h.conns.live(c) {
		return
	}
	metrics.InboundEventsTotal.WithLabelValues(cmd.Kind.String()).Inc()

	switch cmd.Kind {
	case CommandLogin:
		h.login(ctx, c, cmd.Username, cmd.Password)
	case CommandRestoreSession:
		h.restoreSession(ctx, c, cmd.Token)
	case CommandJoinCommunity:
		h.joinCommunity(ctx, c, cmd.Community)
	case CommandChatMessage:
		h.chatMessage(ctx, c, cmd.Content)
	case CommandGetUsers:
		h.getUsers(c)
	case CommandChangeDisplayName:
		h.changeDisplayName(ctx, c, cmd.DisplayName)
	case CommandToggleGhost:
		c.Ghost = !c.Ghost
		h.send(c, &Event{Kind: EventGhostToggled, IsGhost: c.Ghost})
	case CommandGetHistory:
		h.getHistory(ctx, c, cmd.Community)
	case CommandPing:
		h.send(c, &Event{Kind: EventPong})
	default:
		h.log.Debug().Str("conn_id", c.ID).Int("kind", int(cmd.Kind)).Msg("unknown command")
	}
}

func (h *Hub) connect(c *Client) {
	if !h.conns.add(c) {
		return
	}
	if c.Community == "" {
		c.Community = h.opts.DefaultCommunity
	}
	metrics.WsConnections.Inc()
	h.log.Debug().Str("conn_id", c.ID).Msg("client connected")
	h.send(c, &Event{Kind: EventSystem, Content: Welcome})
}

func (h *Hub) disconnect(c *Client) {
	if !h.conns.remove(c) {
		return
	}
	metrics.WsConnections.Dec()
	if !c.Authenticated() {
		return
	}
	metrics.AuthenticatedConnections.Dec()

	room, ok := h.communities.Leave(c)
	if !ok {
		return
	}
	metrics.CommunityMembers.WithLabelValues(room).Dec()
	if !c.Ghost {
		h.broadcast(room, h.presence(EventUserLeft, c, room), c)
	}
	h.log.Info().Str("conn_id", c.ID).Str("username", c.Username).Str("community", room).Msg("user disconnected")
}

func (h *Hub) timestamp() string {
	return h.opts.Now().Format("15:04")
}

func (h *Hub) presence(kind EventKind, c *Client, room string) *Event {
	return &Event{
		Kind:      kind,
		Username:  c.Username,
		Community: room,
		Timestamp: h.timestamp(),
	}
}

// rejectUnauthenticated answers in strict mode; otherwise the command is ignored.
func (h *Hub) rejectUnauthenticated(c *Client) {
	if h.opts.StrictProtocol {
		h.send(c, &Event{Kind: EventError, Error: errNotAuthenticated})
	}
}
