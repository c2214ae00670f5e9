package core

import (
	"sort"
	"strings"
)

// NormalizeCommunity lower-cases and trims a community name.
func NormalizeCommunity(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Room groups the connections currently joined to a community.
type Room struct {
	Name    string
	clients map[*Client]uint64 // value is join sequence, for stable listing
}

// NewRoom constructs a room with no clients.
func NewRoom(name string) *Room {
	return &Room{
		Name:    name,
		clients: make(map[*Client]uint64),
	}
}

// Len returns the number of members.
func (r *Room) Len() int {
	return len(r.clients)
}

// Has reports whether c is a member.
func (r *Room) Has(c *Client) bool {
	_, ok := r.clients[c]
	return ok
}

// Clients returns the members in join order.
func (r *Room) Clients() []*Client {
	out := make([]*Client, 0, len(r.clients))
	for c := range r.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return r.clients[out[i]] < r.clients[out[j]] })
	return out
}

// communities maps room names to rooms and each client to its single room.
// Rooms are created lazily and never deleted.
type communities struct {
	rooms  map[string]*Room
	member map[*Client]string
	seq    uint64
}

func newCommunities(always ...string) *communities {
	cs := &communities{
		rooms:  make(map[string]*Room),
		member: make(map[*Client]string),
	}
	for _, name := range always {
		cs.room(name)
	}
	return cs
}

func (cs *communities) room(name string) *Room {
	r, ok := cs.rooms[name]
	if !ok {
		r = NewRoom(name)
		cs.rooms[name] = r
	}
	return r
}

// Join moves c into name, leaving its previous room first.
// It returns the previous room name ("" if none) and the resulting members.
func (cs *communities) Join(c *Client, name string) (string, []*Client) {
	prev, _ := cs.Leave(c)

	cs.seq++
	r := cs.room(name)
	r.clients[c] = cs.seq
	cs.member[c] = name

	return prev, r.Clients()
}

// Leave removes c from its current room. It is idempotent.
func (cs *communities) Leave(c *Client) (string, bool) {
	name, ok := cs.member[c]
	if !ok {
		return "", false
	}
	delete(cs.member, c)
	if r, ok := cs.rooms[name]; ok {
		delete(r.clients, c)
	}
	return name, true
}

// RoomOf returns the room c is joined to.
func (cs *communities) RoomOf(c *Client) (string, bool) {
	name, ok := cs.member[c]
	return name, ok
}

// Members lists the clients joined to name, in join order.
func (cs *communities) Members(name string) []*Client {
	r, ok := cs.rooms[name]
	if !ok {
		return nil
	}
	return r.Clients()
}

// Counts returns member counts for every known room, sorted by name.
func (cs *communities) Counts() []CommunityStats {
	out := make([]CommunityStats, 0, len(cs.rooms))
	for name, r := range cs.rooms {
		out = append(out, CommunityStats{Name: name, UserCount: r.Len()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
