package http

import (
	"time"

	"github.com/vovakirdan/terminal-chat/internal/core"
	"github.com/vovakirdan/terminal-chat/internal/proto"
)

var inboundKinds = map[string]core.CommandKind{
	proto.InboundTypeLogin:             core.CommandLogin,
	proto.InboundTypeRestoreSession:    core.CommandRestoreSession,
	proto.InboundTypeJoinCommunity:     core.CommandJoinCommunity,
	proto.InboundTypeChatMessage:       core.CommandChatMessage,
	proto.InboundTypeGetUsers:          core.CommandGetUsers,
	proto.InboundTypeChangeDisplayName: core.CommandChangeDisplayName,
	proto.InboundTypeToggleGhost:       core.CommandToggleGhost,
	proto.InboundTypeGetHistory:        core.CommandGetHistory,
	proto.InboundTypePing:              core.CommandPing,
}

// inboundToCommand maps a client frame to a hub command. Unknown types yield nil.
func inboundToCommand(client *core.Client, inbound proto.Inbound) *core.Command {
	kind, ok := inboundKinds[inbound.Type]
	if !ok {
		return nil
	}
	return &core.Command{
		Client:      client,
		Kind:        kind,
		Username:    inbound.Username,
		Password:    inbound.Password,
		Token:       inbound.Token,
		Community:   inbound.Community,
		Content:     inbound.Content,
		DisplayName: inbound.DisplayName,
	}
}

func chatMessage(msg core.Message) proto.ChatMessage {
	out := proto.ChatMessage{
		Type:        proto.OutboundTypeChatMessage,
		Username:    msg.Username,
		DisplayName: msg.DisplayName,
		Community:   msg.Community,
		Content:     msg.Content,
		Timestamp:   msg.Timestamp,
		IsCommand:   msg.IsCommand,
	}
	if !msg.StoredAt.IsZero() {
		out.StoredAt = msg.StoredAt.UTC().Format(time.RFC3339)
	}
	return out
}

func chatMessages(msgs []core.Message) []proto.ChatMessage {
	out := make([]proto.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, chatMessage(m))
	}
	return out
}

func outboundFromEvent(event *core.Event) any {
	switch event.Kind {
	case core.EventSystem:
		return proto.Text{Type: proto.OutboundTypeSystem, Content: event.Content}
	case core.EventLoginSuccess:
		return proto.LoginSuccess{
			Type:        proto.OutboundTypeLoginSuccess,
			Token:       event.Token,
			Username:    event.Username,
			DisplayName: event.DisplayName,
		}
	case core.EventSessionRestored:
		return proto.SessionRestored{
			Type:        proto.OutboundTypeSessionRestored,
			Username:    event.Username,
			DisplayName: event.DisplayName,
		}
	case core.EventCommunityJoined:
		users := make([]proto.User, 0, len(event.Members))
		for _, m := range event.Members {
			users = append(users, proto.User{Username: m.Username, DisplayName: m.DisplayName})
		}
		return proto.CommunityJoined{
			Type:      proto.OutboundTypeCommunityJoined,
			Community: event.Community,
			Users:     users,
			History:   chatMessages(event.Messages),
		}
	case core.EventChatMessage:
		return chatMessage(event.Message)
	case core.EventUsersList:
		names := event.Names
		if names == nil {
			names = []string{}
		}
		return proto.UsersList{Type: proto.OutboundTypeUsersList, Users: names, Count: len(names)}
	case core.EventUserJoined, core.EventUserLeft:
		typ := proto.OutboundTypeUserJoined
		if event.Kind == core.EventUserLeft {
			typ = proto.OutboundTypeUserLeft
		}
		return proto.Presence{
			Type:      typ,
			Username:  event.Username,
			Community: event.Community,
			Timestamp: event.Timestamp,
		}
	case core.EventDisplayNameChanged:
		return proto.DisplayNameChanged{Type: proto.OutboundTypeDisplayNameChanged, DisplayName: event.DisplayName}
	case core.EventGhostToggled:
		return proto.GhostToggled{Type: proto.OutboundTypeGhostToggled, IsGhost: event.IsGhost}
	case core.EventCommandResponse:
		return proto.Text{Type: proto.OutboundTypeCommandResponse, Content: event.Content}
	case core.EventChatHistory:
		return proto.ChatHistory{
			Type:      proto.OutboundTypeChatHistory,
			Messages:  chatMessages(event.Messages),
			Community: event.Community,
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Error{Type: proto.OutboundTypeError, Message: "unknown error"}
		}
		return proto.Error{Type: proto.OutboundTypeError, Message: event.Error.Message}
	case core.EventPong:
		return proto.Pong{Type: proto.OutboundTypePong}
	default:
		return proto.Error{Type: proto.OutboundTypeError, Message: "unknown event"}
	}
}
