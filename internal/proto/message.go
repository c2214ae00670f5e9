package proto

// Inbound is a frame coming from the client. Only the fields relevant to Type are set.
type Inbound struct {
	Type        string `json:"type"`
	Username    string `json:"username,omitempty"`
	Password    string `json:"password,omitempty"`
	Token       string `json:"token,omitempty"`
	Community   string `json:"community,omitempty"`
	Content     string `json:"content,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

const (
	InboundTypeLogin             = "login"
	InboundTypeRestoreSession    = "restore_session"
	InboundTypeJoinCommunity     = "join_community"
	InboundTypeChatMessage       = "chat_message"
	InboundTypeGetUsers          = "get_users"
	InboundTypeChangeDisplayName = "change_display_name"
	InboundTypeToggleGhost       = "toggle_ghost"
	InboundTypeGetHistory        = "get_history"
	InboundTypePing              = "ping"

	OutboundTypeLoginSuccess       = "login_success"
	OutboundTypeSessionRestored    = "session_restored"
	OutboundTypeCommunityJoined    = "community_joined"
	OutboundTypeChatMessage        = "chat_message"
	OutboundTypeSystem             = "system"
	OutboundTypeUsersList          = "users_list"
	OutboundTypeUserJoined         = "user_joined"
	OutboundTypeUserLeft           = "user_left"
	OutboundTypeDisplayNameChanged = "display_name_changed"
	OutboundTypeGhostToggled       = "ghost_toggled"
	OutboundTypeCommandResponse    = "command_response"
	OutboundTypeChatHistory        = "chat_history"
	OutboundTypeError              = "error"
	OutboundTypePong               = "pong"
)

// LoginSuccess confirms a login.
type LoginSuccess struct {
	Type        string `json:"type"`
	Token       string `json:"token"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

// SessionRestored confirms a token-based login.
type SessionRestored struct {
	Type        string `json:"type"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

// User is a member entry of community_joined.
type User struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

// ChatMessage is a live or stored chat message.
type ChatMessage struct {
	Type        string `json:"type"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Community   string `json:"community"`
	Content     string `json:"content"`
	Timestamp   string `json:"timestamp"`
	IsCommand   bool   `json:"isCommand"`
	StoredAt    string `json:"storedAt,omitempty"`
}

// CommunityJoined delivers members and recent history after a join.
type CommunityJoined struct {
	Type      string        `json:"type"`
	Community string        `json:"community"`
	Users     []User        `json:"users"`
	History   []ChatMessage `json:"history"`
}

// Text carries a single content string (system, command_response).
type Text struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// UsersList lists display names of a community's members.
type UsersList struct {
	Type  string   `json:"type"`
	Users []string `json:"users"`
	Count int      `json:"count"`
}

// Presence announces a user joining or leaving a community.
type Presence struct {
	Type      string `json:"type"`
	Username  string `json:"username"`
	Community string `json:"community"`
	Timestamp string `json:"timestamp"`
}

// DisplayNameChanged acknowledges a rename.
type DisplayNameChanged struct {
	Type        string `json:"type"`
	DisplayName string `json:"displayName"`
}

// GhostToggled acknowledges a ghost mode change.
type GhostToggled struct {
	Type    string `json:"type"`
	IsGhost bool   `json:"isGhost"`
}

// ChatHistory delivers recent messages of a community.
type ChatHistory struct {
	Type      string        `json:"type"`
	Messages  []ChatMessage `json:"messages"`
	Community string        `json:"community"`
}

// Error describes a failed action.
type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Pong answers a ping.
type Pong struct {
	Type string `json:"type"`
}
