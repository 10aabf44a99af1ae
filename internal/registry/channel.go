package registry

import "github.com/wharfd/wharfd/internal/modes"

// Channel holds a channel's member set and opaque channel-level metadata
// (mode bits, topic). Lookups are routed through the Registry's
// case-insensitive name index; the Channel itself stores the
// case-preserved name.
type Channel struct {
	id     int
	server *Registry

	name    string
	members map[int]struct{}

	topic string
	modes modes.ChannelMask
}

func newChannel(id int, server *Registry) *Channel {
	return &Channel{id: id, server: server, members: map[int]struct{}{}}
}

// ID returns the channel's stable slot index.
func (ch *Channel) ID() int { return ch.id }

// Name returns the case-preserved channel name.
func (ch *Channel) Name() string { return ch.name }

// Topic returns the channel's current topic.
func (ch *Channel) Topic() string { return ch.topic }

// SetTopic sets the channel's topic.
func (ch *Channel) SetTopic(topic string) { ch.topic = topic }

// Modes returns the channel's current mode mask.
func (ch *Channel) Modes() modes.ChannelMask { return ch.modes }

// AddModes ORs mask into the channel's mode bits.
func (ch *Channel) AddModes(mask modes.ChannelMask) { ch.modes |= mask }

// RemoveModes clears mask from the channel's mode bits.
func (ch *Channel) RemoveModes(mask modes.ChannelMask) { ch.modes &^= mask }

// reset reinitializes a recycled or freshly appended slot for name.
func (ch *Channel) reset(name string) {
	ch.name = name
	ch.topic = ""
	ch.modes = 0
	for id := range ch.members {
		delete(ch.members, id)
	}
}

// Add adds clientID to the channel's member set and records the
// membership on the client, keeping both sides of the relationship in
// sync in one call.
func (ch *Channel) Add(clientID int) {
	ch.members[clientID] = struct{}{}
	ch.server.GetClient(clientID).joinChannel(ch.id)
}

// Remove removes clientID from the channel's member set and from the
// client's membership list. If this empties the channel, the channel slot
// is freed and removed from the name index; STAT_CHANNELS is decremented
// here, symmetric with the increment in Registry.CreateChannel.
func (ch *Channel) Remove(clientID int) {
	delete(ch.members, clientID)
	ch.server.GetClient(clientID).leaveChannel(ch.id)

	if len(ch.members) == 0 {
		ch.server.EraseChannel(ch.name)
		ch.server.freeChannel(ch.id)
	}
}

// HasMember reports whether clientID is a member of the channel.
func (ch *Channel) HasMember(clientID int) bool {
	_, exists := ch.members[clientID]
	return exists
}

// MemberCount returns the number of members currently on the channel.
func (ch *Channel) MemberCount() int {
	return len(ch.members)
}

// Clients returns the member client ids, for broadcasting. Iteration order
// is unspecified.
func (ch *Channel) Clients() []int {
	out := make([]int, 0, len(ch.members))
	for id := range ch.members {
		out = append(out, id)
	}
	return out
}
