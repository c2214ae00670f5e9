package core

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/vovakirdan/terminal-chat/internal/auth"
	"github.com/vovakirdan/terminal-chat/internal/metrics"
)

const (
	minCommunityLen = 2
	maxCommunityLen = 20
)

func (h *Hub) login(ctx context.Context, c *Client, username, password string) {
	profile, created, err := h.sessions.RegisterOrLogin(ctx, username, password)
	switch {
	case errors.Is(err, auth.ErrMissingCredentials):
		h.send(c, &Event{Kind: EventError, Error: errMissingCredentials})
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		h.log.Info().Str("conn_id", c.ID).Str("username", username).Msg("invalid credentials")
		h.send(c, &Event{Kind: EventError, Error: errInvalidCredentials})
		return
	case err != nil:
		h.log.Error().Err(err).Str("username", username).Msg("login failed")
		h.send(c, &Event{Kind: EventError, Error: errInternal})
		return
	}

	displayName := profile.DisplayName
	if displayName == "" {
		displayName = profile.Username
	}
	token, err := h.sessions.CreateSession(ctx, profile.Username, displayName)
	if err != nil {
		h.log.Error().Err(err).Str("username", profile.Username).Msg("create session failed")
		h.send(c, &Event{Kind: EventError, Error: errInternal})
		return
	}

	h.bind(c, token, profile.Username, displayName)
	h.send(c, &Event{
		Kind:        EventLoginSuccess,
		Token:       token,
		Username:    c.Username,
		DisplayName: c.DisplayName,
	})
	h.log.Info().Str("conn_id", c.ID).Str("username", c.Username).Bool("new_profile", created).Msg("user logged in")

	h.enter(ctx, c, h.opts.DefaultCommunity)
}

func (h *Hub) restoreSession(ctx context.Context, c *Client, token string) {
	sess, err := h.sessions.ResolveSession(ctx, token)
	switch {
	case errors.Is(err, auth.ErrSessionNotFound):
		h.send(c, &Event{Kind: EventError, Error: errSessionNotFound})
		return
	case err != nil:
		h.log.Error().Err(err).Str("conn_id", c.ID).Msg("restore session failed")
		h.send(c, &Event{Kind: EventError, Error: errInternal})
		return
	}

	h.bind(c, sess.Token, sess.Username, sess.DisplayName)
	h.send(c, &Event{
		Kind:        EventSessionRestored,
		Username:    c.Username,
		DisplayName: c.DisplayName,
	})
	h.log.Info().Str("conn_id", c.ID).Str("username", c.Username).Msg("session restored")

	h.enter(ctx, c, h.opts.DefaultCommunity)
}

func (h *Hub) bind(c *Client, token, username, displayName string) {
	if !c.Authenticated() {
		metrics.AuthenticatedConnections.Inc()
	}
	c.Token = token
	c.Username = username
	c.DisplayName = displayName
}

func (h *Hub) joinCommunity(ctx context.Context, c *Client, name string) {
	if !c.Authenticated() {
		h.rejectUnauthenticated(c)
		return
	}

	name = NormalizeCommunity(name)
	if n := utf8.RuneCountInString(name); n < minCommunityLen || n > maxCommunityLen {
		h.send(c, &Event{Kind: EventError, Error: errCommunityName})
		return
	}

	h.enter(ctx, c, name)
}

// enter performs the leave+join transition into room and announces it.
// History is read first so a storage failure leaves membership untouched.
func (h *Hub) enter(ctx context.Context, c *Client, room string) {
	history, err := h.tail(ctx, room)
	if err != nil {
		h.log.Error().Err(err).Str("community", room).Msg("read history failed")
		h.send(c, &Event{Kind: EventError, Error: errInternal})
		return
	}

	prev, members := h.communities.Join(c, room)
	c.Community = room

	if prev != "" {
		metrics.CommunityMembers.WithLabelValues(prev).Dec()
		if !c.Ghost {
			h.broadcast(prev, h.presence(EventUserLeft, c, prev), c)
		}
	}
	metrics.CommunityMembers.WithLabelValues(room).Inc()

	users := make([]Member, 0, len(members))
	for _, m := range members {
		users = append(users, Member{Username: m.Username, DisplayName: m.Name()})
	}
	h.send(c, &Event{
		Kind:      EventCommunityJoined,
		Community: room,
		Members:   users,
		Messages:  history,
	})

	if !c.Ghost {
		h.broadcast(room, h.presence(EventUserJoined, c, room), nil)
	}
	h.log.Debug().Str("conn_id", c.ID).Str("username", c.Username).Str("from", prev).Str("community", room).Msg("joined community")
}

func (h *Hub) chatMessage(ctx context.Context, c *Client, content string) {
	if !c.Authenticated() {
		h.rejectUnauthenticated(c)
		return
	}
	room, ok := h.communities.RoomOf(c)
	if !ok || content == "" {
		return
	}

	msg := Message{
		Username:    c.Username,
		DisplayName: c.Name(),
		Community:   room,
		Content:     content,
		Timestamp:   h.timestamp(),
		IsCommand:   strings.HasPrefix(content, commandSentinel),
		StoredAt:    h.opts.Now().UTC(),
	}

	// Persist before fan-out so every broadcast message is in history.
	if err := h.history.AppendMessage(ctx, msg.toStore()); err != nil {
		h.log.Error().Err(err).Str("community", room).Str("username", c.Username).Msg("append message failed")
		h.send(c, &Event{Kind: EventError, Error: errInternal})
		return
	}
	metrics.MessagesTotal.Inc()

	h.broadcast(room, &Event{Kind: EventChatMessage, Message: msg}, nil)

	if msg.IsCommand {
		h.interpret(ctx, c, content)
	}
}

func (h *Hub) getUsers(c *Client) {
	room := c.Community
	if r, ok := h.communities.RoomOf(c); ok {
		room = r
	}
	members := h.communities.Members(room)
	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.Name())
	}
	h.send(c, &Event{Kind: EventUsersList, Names: names})
}

func (h *Hub) changeDisplayName(ctx context.Context, c *Client, newName string) {
	if !c.Authenticated() {
		h.rejectUnauthenticated(c)
		return
	}

	name, err := h.sessions.RenameDisplayName(ctx, c.Username, c.Token, newName)
	switch {
	case errors.Is(err, auth.ErrInvalidDisplayName):
		h.send(c, &Event{Kind: EventError, Error: errEmptyDisplayName})
		return
	case err != nil:
		h.log.Error().Err(err).Str("username", c.Username).Msg("rename failed")
		h.send(c, &Event{Kind: EventError, Error: errInternal})
		return
	}

	c.DisplayName = name
	h.send(c, &Event{Kind: EventDisplayNameChanged, DisplayName: name})
}

func (h *Hub) getHistory(ctx context.Context, c *Client, community string) {
	room := NormalizeCommunity(community)
	if room == "" {
		room = c.Community
	}

	history, err := h.tail(ctx, room)
	if err != nil {
		h.log.Error().Err(err).Str("community", room).Msg("read history failed")
		h.send(c, &Event{Kind: EventError, Error: errInternal})
		return
	}
	h.send(c, &Event{Kind: EventChatHistory, Community: room, Messages: history})
}

func (h *Hub) tail(ctx context.Context, room string) ([]Message, error) {
	stored, err := h.history.TailMessages(ctx, room, h.opts.HistoryLimit)
	if err != nil {
		return nil, err
	}
	out := make([]Message, 0, len(stored))
	for _, m := range stored {
		out = append(out, messageFromStore(m))
	}
	return out, nil
}
