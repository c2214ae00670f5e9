package core

// Client is a live connection as seen by the core layer.
//
// ID and Events are set at construction. The identity fields are owned by the
// hub goroutine and must not be touched from the transport.
type Client struct {
	ID     string
	Events chan *Event

	Token       string
	Username    string
	DisplayName string
	Community   string
	Ghost       bool
}

// NewClient constructs a client with an outbound buffer of the given size.
func NewClient(id string, buffer int) *Client {
	if buffer <= 0 {
		buffer = 64
	}
	return &Client{
		ID:     id,
		Events: make(chan *Event, buffer),
	}
}

// Authenticated reports whether the client is bound to a session.
func (c *Client) Authenticated() bool {
	return c.Token != ""
}

// Name returns the display name, falling back to the username.
func (c *Client) Name() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return c.Username
}
