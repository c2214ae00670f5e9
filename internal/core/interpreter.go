package core

import (
	"context"
	"fmt"
	"strings"
)

// interpret handles the server-side slash commands embedded in chat content.
// Anything else is left to the client.
func (h *Hub) interpret(ctx context.Context, c *Client, content string) {
	parts := strings.Split(content, " ")
	switch strings.ToLower(parts[0]) {
	case "/users":
		h.getUsers(c)
	case "/whoami":
		h.send(c, &Event{Kind: EventCommandResponse, Content: whoami(c)})
	case "/nick":
		if len(parts) > 1 {
			h.changeDisplayName(ctx, c, strings.Join(parts[1:], " "))
		}
	}
}

func whoami(c *Client) string {
	ghost := "OFF"
	if c.Ghost {
		ghost = "ON"
	}
	return fmt.Sprintf("Username: %s\nDisplay Name: %s\nCommunity: %s\nGhost Mode: %s",
		c.Username, c.Name(), c.Community, ghost)
}
