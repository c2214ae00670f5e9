package core

import (
	"time"

	"github.com/vovakirdan/terminal-chat/internal/store"
)

// commandSentinel marks chat content that is also a command.
const commandSentinel = "/"

// Message is the domain model for a chat message.
type Message struct {
	Username    string
	DisplayName string
	Community   string
	Content     string
	Timestamp   string
	IsCommand   bool
	StoredAt    time.Time
}

func messageFromStore(m *store.ChatMessage) Message {
	return Message{
		Username:    m.Username,
		DisplayName: m.DisplayName,
		Community:   m.Community,
		Content:     m.Content,
		Timestamp:   m.Timestamp,
		IsCommand:   m.IsCommand,
		StoredAt:    m.StoredAt,
	}
}

func (m Message) toStore() *store.ChatMessage {
	return &store.ChatMessage{
		Username:    m.Username,
		DisplayName: m.DisplayName,
		Community:   m.Community,
		Content:     m.Content,
		Timestamp:   m.Timestamp,
		IsCommand:   m.IsCommand,
		StoredAt:    m.StoredAt,
	}
}
