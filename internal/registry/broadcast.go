package registry

import "fmt"

// visibilitySet computes the union of members(ch) for every channel the
// given client is on.
func (r *Registry) visibilitySet(clientID int) map[int]struct{} {
	set := map[int]struct{}{}
	for _, chID := range r.clients[clientID].channels {
		for _, member := range r.channels[chID].Clients() {
			set[member] = struct{}{}
		}
	}
	return set
}

// Broadcast sends buf to every user visible to clientID, including
// clientID itself. Each recipient receives the payload exactly once, even
// if they share multiple channels with the source.
func (r *Registry) Broadcast(clientID int, buf []byte) {
	set := r.visibilitySet(clientID)
	set[clientID] = struct{}{}
	r.sendToSet(set, buf)
}

// BroadcastButOne sends buf to every user visible to clientID, excluding
// clientID itself.
func (r *Registry) BroadcastButOne(clientID int, buf []byte) {
	set := r.visibilitySet(clientID)
	delete(set, clientID)
	r.sendToSet(set, buf)
}

func (r *Registry) sendToSet(set map[int]struct{}, buf []byte) {
	for id := range set {
		r.clients[id].SendRaw(buf)
	}
}

// BroadcastNumeric formats ":<from> <numeric> <msg>\r\n" once and sends it
// via Broadcast.
func (r *Registry) BroadcastNumeric(clientID int, from, numeric, msg string) {
	r.Broadcast(clientID, []byte(fmt.Sprintf(":%s %s %s\r\n", from, numeric, msg)))
}

// BroadcastNumericButOne is BroadcastNumeric's exclude-self counterpart.
func (r *Registry) BroadcastNumericButOne(clientID int, from, numeric, msg string) {
	r.BroadcastButOne(clientID, []byte(fmt.Sprintf(":%s %s %s\r\n", from, numeric, msg)))
}
