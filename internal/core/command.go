package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandConnect registers a freshly opened connection.
	CommandConnect CommandKind = iota
	// CommandDisconnect removes a connection from every registry.
	CommandDisconnect
	// CommandLogin authenticates with username and password.
	CommandLogin
	// CommandRestoreSession authenticates with a previously issued token.
	CommandRestoreSession
	// CommandJoinCommunity moves the client into another community.
	CommandJoinCommunity
	// CommandChatMessage sends a chat message to the current community.
	CommandChatMessage
	// CommandGetUsers lists members of the current community.
	CommandGetUsers
	// CommandChangeDisplayName renames the client.
	CommandChangeDisplayName
	// CommandToggleGhost flips ghost mode.
	CommandToggleGhost
	// CommandGetHistory fetches recent messages of a community.
	CommandGetHistory
	// CommandPing is a keep-alive.
	CommandPing
)

var commandNames = map[CommandKind]string{
	CommandConnect:           "connect",
	CommandDisconnect:        "disconnect",
	CommandLogin:             "login",
	CommandRestoreSession:    "restore_session",
	CommandJoinCommunity:     "join_community",
	CommandChatMessage:       "chat_message",
	CommandGetUsers:          "get_users",
	CommandChangeDisplayName: "change_display_name",
	CommandToggleGhost:       "toggle_ghost",
	CommandGetHistory:        "get_history",
	CommandPing:              "ping",
}

func (k CommandKind) String() string {
	if name, ok := commandNames[k]; ok {
		return name
	}
	return "unknown"
}

// Command represents an action requested by a client.
type Command struct {
	Client *Client
	Kind   CommandKind

	Username    string
	Password    string
	Token       string
	Community   string
	Content     string
	DisplayName string
}
