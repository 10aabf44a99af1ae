// Package registry implements the server-wide entity registry: slot
// vectors with free-list recycling for clients and channels, the
// case-insensitive name indices, the visibility-based broadcaster, and the
// fixed-slot counters. It is the single owner of all cross-client state;
// exactly one goroutine should drive it.
package registry

import (
	"time"

	"github.com/wharfd/wharfd/internal/names"
)

// NoSuchEntity is the sentinel index returned by lookups that find
// nothing, matching the source's NO_SUCH_CLIENT/NO_SUCH_CHANNEL.
const NoSuchEntity = -1

// Registry owns every live Client and Channel slot, the name indices that
// map nicknames and channel names to their stable slot index, and the
// fixed-slot statistics counters.
type Registry struct {
	clients      []*Client
	freeClients  []int
	channels     []*Channel
	freeChannels []int

	users map[string]int // folded nick -> client id
	chans map[string]int // folded channel name -> channel id

	counters Counters

	createdAt     time.Time
	createdString string

	serverName string
	network    string
	version    string
}

// New creates an empty Registry. serverName is the source prefix of every
// server-originated line a Client sends; network/version are used only for
// informational replies (the welcome burst).
func New(serverName, network, version string) *Registry {
	now := time.Now()
	return &Registry{
		users:         map[string]int{},
		chans:         map[string]int{},
		createdAt:     now,
		createdString: now.Format(time.RFC1123),
		serverName:    serverName,
		network:       network,
		version:       version,
	}
}

// ServerName returns the server's configured name.
func (r *Registry) ServerName() string { return r.serverName }

// Network returns the configured network name.
func (r *Registry) Network() string { return r.network }

// Version returns the configured server version string.
func (r *Registry) Version() string { return r.version }

// Created returns the human-readable creation timestamp.
func (r *Registry) Created() string { return r.createdString }

// Uptime returns how long the registry has existed.
func (r *Registry) Uptime() time.Duration { return time.Since(r.createdAt) }

// Counters returns the registry's fixed-slot statistics counters.
func (r *Registry) Counters() *Counters { return &r.counters }

// NewClient allocates a client slot, recycling a dead one if available, and
// returns it. It increments STAT_TOTAL_CONNS/STAT_TOTAL_USERS/
// STAT_LOCAL_USERS and raises STAT_MAX_USERS if a new peak is reached. The
// peak check compares against STAT_TOTAL_USERS but assigns from
// STAT_LOCAL_USERS, preserved exactly as that quirk historically behaved.
func (r *Registry) NewClient() *Client {
	r.counters.Inc(StatTotalConns)
	r.counters.Inc(StatTotalUsers)
	r.counters.Inc(StatLocalUsers)

	if r.counters.Get(StatMaxUsers) < r.counters.Get(StatTotalUsers) {
		r.counters.Set(StatMaxUsers, r.counters.Get(StatLocalUsers))
	}

	if n := len(r.freeClients); n > 0 {
		idx := r.freeClients[n-1]
		r.freeClients = r.freeClients[:n-1]
		c := r.clients[idx]
		c.resetTo(r)
		return c
	}

	c := newClient(len(r.clients), r)
	c.resetTo(r)
	r.clients = append(r.clients, c)
	return c
}

// GetClient returns the client at idx. It panics if idx is out of range,
// matching the source's at()-style bounds check: callers only ever pass
// indices obtained from this Registry.
func (r *Registry) GetClient(idx int) *Client {
	return r.clients[idx]
}

// freeClient returns a disabled client's slot to the free list and
// decrements STAT_TOTAL_USERS/STAT_LOCAL_USERS. Called by Client.Disable;
// not meant to be called directly.
func (r *Registry) freeClient(id int) {
	r.freeClients = append(r.freeClients, id)
	r.counters.Dec(StatTotalUsers)
	r.counters.Dec(StatLocalUsers)
}

// newChannel allocates a channel slot, recycling a dead one if available.
func (r *Registry) newChannel() *Channel {
	if n := len(r.freeChannels); n > 0 {
		idx := r.freeChannels[n-1]
		r.freeChannels = r.freeChannels[:n-1]
		return r.channels[idx]
	}

	ch := newChannel(len(r.channels), r)
	r.channels = append(r.channels, ch)
	return ch
}

// GetChannel returns the channel at idx.
func (r *Registry) GetChannel(idx int) *Channel {
	return r.channels[idx]
}

// UserByName returns the client id registered under nick (case-insensitive),
// or NoSuchEntity.
func (r *Registry) UserByName(nick string) int {
	id, exists := r.users[names.FoldCase(nick)]
	if !exists {
		return NoSuchEntity
	}
	return id
}

// ChannelByName returns the channel id registered under name
// (case-insensitive), or NoSuchEntity.
func (r *Registry) ChannelByName(name string) int {
	id, exists := r.chans[names.FoldCase(name)]
	if !exists {
		return NoSuchEntity
	}
	return id
}

// HashNickname registers nick -> id in the name index. Client is the only
// writer of this map.
func (r *Registry) HashNickname(nick string, id int) {
	r.users[names.FoldCase(nick)] = id
}

// EraseNickname removes nick from the name index.
func (r *Registry) EraseNickname(nick string) {
	delete(r.users, names.FoldCase(nick))
}

// HashChannel registers name -> id in the channel index. Entries are added
// by Registry.CreateChannel and erased by Channel.Remove.
func (r *Registry) HashChannel(name string, id int) {
	r.chans[names.FoldCase(name)] = id
}

// EraseChannel removes name from the channel index.
func (r *Registry) EraseChannel(name string) {
	delete(r.chans, names.FoldCase(name))
}

// CreateChannel allocates a channel slot, resets it to name, registers it
// in the name index, and increments STAT_CHANNELS. It returns the new
// channel. The paired decrement happens when the channel's member count
// reaches zero (see Channel.Remove).
func (r *Registry) CreateChannel(name string) *Channel {
	ch := r.newChannel()
	ch.reset(name)
	r.HashChannel(name, ch.id)
	r.counters.Inc(StatChannels)
	return ch
}

func (r *Registry) freeChannel(id int) {
	r.freeChannels = append(r.freeChannels, id)
	r.counters.Dec(StatChannels)
}
