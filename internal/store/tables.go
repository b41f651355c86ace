package store

// tables is the in-memory table set. Methods on tables only mutate memory;
// durability is the Store's responsibility, applied after each successful
// mutation. None of these methods are safe for concurrent use on their own;
// the owning Store serializes access.
type tables struct {
	clients      []Client
	clientOffers []ClientOffer
	users        []User
}

func (t *tables) load(s Snapshot) {
	t.clients = append([]Client(nil), s.Clients...)
	t.clientOffers = append([]ClientOffer(nil), s.ClientOffers...)
	t.users = append([]User(nil), s.Users...)
}

// snapshot returns a copy safe to hand to a persistence adapter while further
// mutations proceed.
func (t *tables) snapshot() Snapshot {
	return Snapshot{
		Clients:      append([]Client(nil), t.clients...),
		ClientOffers: append([]ClientOffer(nil), t.clientOffers...),
		Users:        append([]User(nil), t.users...),
	}
}

// insertClientHead prepends c so that default iteration order is
// most-recent-first.
func (t *tables) insertClientHead(c Client) {
	t.clients = append([]Client{c}, t.clients...)
}

func (t *tables) findClient(id string) (int, bool) {
	for i := range t.clients {
		if t.clients[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

// deleteClient removes the client row if present and cascades to every
// ClientOffer row referencing it. Reports whether anything changed.
func (t *tables) deleteClient(id string) bool {
	i, ok := t.findClient(id)
	if !ok {
		return false
	}
	t.clients = append(t.clients[:i], t.clients[i+1:]...)

	kept := t.clientOffers[:0]
	for _, co := range t.clientOffers {
		if co.ClientID != id {
			kept = append(kept, co)
		}
	}
	t.clientOffers = kept
	return true
}

func (t *tables) insertClientOffer(co ClientOffer) {
	t.clientOffers = append(t.clientOffers, co)
}

// removeClientOffers removes every association matching both identifiers.
// Reports whether anything changed.
func (t *tables) removeClientOffers(clientID, offerID string) bool {
	changed := false
	kept := t.clientOffers[:0]
	for _, co := range t.clientOffers {
		if co.ClientID == clientID && co.OfferID == offerID {
			changed = true
			continue
		}
		kept = append(kept, co)
	}
	t.clientOffers = kept
	return changed
}

func (t *tables) offersForClient(clientID string) []ClientOffer {
	var result []ClientOffer
	for _, co := range t.clientOffers {
		if co.ClientID == clientID {
			result = append(result, co)
		}
	}
	return result
}

// clientsForOffer resolves the association rows for offerID to client rows,
// deduplicated by client id in first-seen order. Dangling references (a row
// whose client no longer exists) are skipped rather than reported.
func (t *tables) clientsForOffer(offerID string) []Client {
	seen := make(map[string]struct{})
	var result []Client
	for _, co := range t.clientOffers {
		if co.OfferID != offerID {
			continue
		}
		if _, ok := seen[co.ClientID]; ok {
			continue
		}
		seen[co.ClientID] = struct{}{}
		if i, ok := t.findClient(co.ClientID); ok {
			result = append(result, t.clients[i])
		}
	}
	return result
}

func (t *tables) findUserByLogin(login string) (int, bool) {
	for i := range t.users {
		if t.users[i].Login == login {
			return i, true
		}
	}
	return -1, false
}

func (t *tables) insertUser(u User) {
	t.users = append(t.users, u)
}

// applyPatch merges the valid fields of p into c.
func applyPatch(c *Client, p ClientPatch) {
	if p.FirstName.Valid {
		c.FirstName = p.FirstName.V
	}
	if p.LastName.Valid {
		c.LastName = p.LastName.V
	}
	if p.Email.Valid {
		c.Email = p.Email.V
	}
	if p.Phone.Valid {
		c.Phone = p.Phone.V
	}
	if p.Notes.Valid {
		c.Notes = p.Notes.V
	}
	if p.ClientType.Valid {
		c.ClientType = p.ClientType.V
	}
	if p.Locations.Valid {
		c.Locations = append([]string(nil), p.Locations.V...)
	}
	if p.PriceMin.Valid {
		c.PriceMin = p.PriceMin.V
	}
	if p.PriceMax.Valid {
		c.PriceMax = p.PriceMax.V
	}
	if p.AgentID.Valid {
		c.AgentID = p.AgentID.V
	}
	if p.AgentName.Valid {
		c.AgentName = p.AgentName.V
	}
	if p.Tags.Valid {
		c.Tags = append([]string(nil), p.Tags.V...)
	}
}
