package core

import "github.com/vovakirdan/terminal-chat/internal/metrics"

// send delivers an event to one client without blocking the hub.
// Slow consumers lose the event.
func (h *Hub) send(c *Client, ev *Event) {
	select {
	case c.Events <- ev:
	default:
		metrics.DroppedEventsTotal.Inc()
		h.log.Debug().Str("conn_id", c.ID).Int("kind", int(ev.Kind)).Msg("client buffer full, event dropped")
	}
}

// broadcast delivers ev to every live member of room except exclude.
func (h *Hub) broadcast(room string, ev *Event, exclude *Client) {
	for _, c := range h.communities.Members(room) {
		if c == exclude || c.Community != room || !h.conns.live(c) {
			continue
		}
		h.send(c, ev)
	}
}
