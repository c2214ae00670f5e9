package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventSystem is an informational server notice.
	EventSystem EventKind = iota
	// EventLoginSuccess confirms a login and carries the issued token.
	EventLoginSuccess
	// EventSessionRestored confirms a token-based login.
	EventSessionRestored
	// EventCommunityJoined delivers members and history of the joined community.
	EventCommunityJoined
	// EventChatMessage carries a chat message to community members.
	EventChatMessage
	// EventUsersList lists display names of a community's members.
	EventUsersList
	// EventUserJoined announces a member joining a community.
	EventUserJoined
	// EventUserLeft announces a member leaving a community.
	EventUserLeft
	// EventDisplayNameChanged acknowledges a rename.
	EventDisplayNameChanged
	// EventGhostToggled acknowledges a ghost mode change.
	EventGhostToggled
	// EventCommandResponse is a direct reply to a slash command.
	EventCommandResponse
	// EventChatHistory delivers recent messages of a community.
	EventChatHistory
	// EventError notifies the client about a failed action.
	EventError
	// EventPong answers a ping.
	EventPong
)

// Member is the public identity of a community member.
type Member struct {
	Username    string
	DisplayName string
}

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind        EventKind
	Token       string
	Username    string
	DisplayName string
	Community   string
	Content     string
	Timestamp   string
	IsGhost     bool

	Members  []Member  // EventCommunityJoined
	Names    []string  // EventUsersList
	Message  Message   // EventChatMessage
	Messages []Message // EventCommunityJoined, EventChatHistory
	Error    *CoreError
}
