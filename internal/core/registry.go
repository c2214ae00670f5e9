package core

// connections tracks every live client by ID.
type connections struct {
	byID map[string]*Client
}

func newConnections() *connections {
	return &connections{byID: make(map[string]*Client)}
}

func (cr *connections) add(c *Client) bool {
	if _, exists := cr.byID[c.ID]; exists {
		return false
	}
	cr.byID[c.ID] = c
	return true
}

func (cr *connections) remove(c *Client) bool {
	if existing, ok := cr.byID[c.ID]; !ok || existing != c {
		return false
	}
	delete(cr.byID, c.ID)
	return true
}

func (cr *connections) live(c *Client) bool {
	existing, ok := cr.byID[c.ID]
	return ok && existing == c
}

func (cr *connections) authenticated() int {
	n := 0
	for _, c := range cr.byID {
		if c.Authenticated() {
			n++
		}
	}
	return n
}

func (cr *connections) len() int {
	return len(cr.byID)
}
