package registry

import (
	"bytes"
	"fmt"

	"github.com/wharfd/wharfd/internal/modes"
	"github.com/wharfd/wharfd/internal/names"
)

// Registration progress bits.
const (
	regisConnected uint8 = 1 << 0 // connection live
	regisNick      uint8 = 1 << 1 // NICK received
	regisUser      uint8 = 1 << 2 // USER received

	// RegDead is the regis value of an unused/disabled slot.
	RegDead uint8 = 0
	// RegFull is the regis value once both NICK and USER have landed.
	RegFull = regisConnected | regisNick | regisUser
)

// Sink is the minimal write surface a Client needs onto its underlying
// connection. *net.TCPConn and any io.Writer with that signature satisfy
// it; tests use an in-memory fake.
type Sink interface {
	Write(p []byte) (int, error)
}

// Client holds per-connection state: registration progress, identity, send
// primitives, and channel membership. It is addressed only by its stable
// id; a disabled client's slot is recycled by Registry.NewClient.
type Client struct {
	id     int
	server *Registry

	regis  uint8
	umodes modes.UserMask

	conn Sink

	nick, user, host string

	// channels is kept duplicate-free by joinChannel.
	channels []int

	buf bytes.Buffer

	// quitting is set once a QUIT has been processed; the transport layer
	// checks it after each dispatched line to know when to tear the
	// connection down and call Disable.
	quitting bool
}

func newClient(id int, server *Registry) *Client {
	return &Client{id: id, server: server}
}

// ID returns the client's stable slot index.
func (c *Client) ID() int { return c.id }

// IsAlive reports whether the slot is attached to a live connection.
func (c *Client) IsAlive() bool { return c.regis != RegDead }

// IsReg reports whether the client has completed registration.
func (c *Client) IsReg() bool { return c.regis == RegFull }

// IsLocal reports whether the client has an attached connection. In this
// single-server core every live client is local.
func (c *Client) IsLocal() bool { return c.conn != nil }

// Nick returns the client's current nickname (empty before NICK).
func (c *Client) Nick() string { return c.nick }

// User returns the client's username (empty before USER).
func (c *Client) User() string { return c.user }

// Host returns the client's hostname.
func (c *Client) Host() string { return c.host }

// SetHost sets the client's hostname. Connection setup sets the host
// through Attach instead.
func (c *Client) SetHost(host string) { c.host = host }

// Channels returns the ids of channels this client has joined.
func (c *Client) Channels() []int { return c.channels }

// UserModes returns the client's current user mode mask.
func (c *Client) UserModes() modes.UserMask { return c.umodes }

// IsOperator reports whether the operator mode bit is set.
func (c *Client) IsOperator() bool {
	mask, _ := modes.UserCharToBit('o')
	return c.umodes.Has(mask)
}

// AddUserModes ORs mask into the client's mode bits.
func (c *Client) AddUserModes(mask modes.UserMask) { c.umodes |= mask }

// RemoveUserModes clears mask from the client's mode bits.
func (c *Client) RemoveUserModes(mask modes.UserMask) { c.umodes &^= mask }

// ModeString renders the client's set user modes as mode characters.
func (c *Client) ModeString() string { return c.umodes.String() }

// UserHost returns "user@host".
func (c *Client) UserHost() string {
	return c.user + "@" + c.host
}

// NickUserHost returns "nick!user@host", the standard QUIT/PART/PRIVMSG
// source form.
func (c *Client) NickUserHost() string {
	return c.nick + "!" + c.UserHost()
}

// resetTo reinitializes a recycled or freshly appended slot for a new
// connection. regis becomes "connected, unregistered"; identity, channel
// membership, and the line buffer are cleared.
func (c *Client) resetTo(server *Registry) {
	c.server = server
	c.regis = regisConnected
	c.umodes = modes.DefaultUserModes()
	c.conn = nil
	c.nick = ""
	c.user = ""
	c.host = ""
	c.channels = c.channels[:0]
	c.buf.Reset()
	c.quitting = false
}

// Attach binds the client's slot to a live connection sink. Callers invoke
// this right after Registry.NewClient returns a freshly reset slot.
func (c *Client) Attach(conn Sink, host string) {
	c.conn = conn
	c.host = host
}

// Disable releases the client's resources: its nickname is freed, the slot
// is returned to the free list, and counters are decremented. Calling
// Disable on an already-disabled client is a programming error.
func (c *Client) Disable() {
	if !c.IsAlive() {
		panic(fmt.Sprintf("client %d disabled twice", c.id))
	}

	if c.nick != "" {
		c.server.EraseNickname(c.nick)
	}

	c.nick = ""
	c.user = ""
	c.host = ""
	c.conn = nil
	c.regis = RegDead

	c.server.freeClient(c.id)
}

// setNickBit marks the NICK stage of registration complete. It returns
// true if this transition completes registration (both NICK and USER now
// set).
func (c *Client) setNickBit() (completed bool) {
	before := c.regis
	c.regis |= regisNick
	return before != RegFull && c.regis == RegFull
}

// setUserBit marks the USER stage of registration complete, with the same
// completion-detection behavior as setNickBit.
func (c *Client) setUserBit() (completed bool) {
	before := c.regis
	c.regis |= regisUser
	return before != RegFull && c.regis == RegFull
}

// ConfirmNick marks the NICK stage of registration complete, for callers
// outside this package that have just applied a successful ChangeNick. It
// returns true if this was the transition that completed registration.
func (c *Client) ConfirmNick() bool {
	return c.setNickBit()
}

// SetUser records the USER command's username field and marks the USER
// stage of registration complete. It returns true if this was the
// transition that completed registration.
func (c *Client) SetUser(user string) bool {
	c.user = user
	return c.setUserBit()
}

// ChangeNick validates and applies a nickname change, sending the
// appropriate numeric error and returning false on any failure. On
// success it updates the name index and the client's nick field.
func (c *Client) ChangeNick(newNick string) bool {
	if len(newNick) < names.NickMinLength {
		c.SendNoNick(ErrErroneusNickname, newNick+" :Nickname too short")
		return false
	}
	if len(newNick) > names.NickMaxLength {
		c.SendNoNick(ErrErroneusNickname, newNick+" :Nickname too long")
		return false
	}
	if !names.ValidNick(newNick) {
		c.SendNoNick(ErrErroneusNickname, newNick+" :Erroneous nickname")
		return false
	}

	if idx := c.server.UserByName(newNick); idx != NoSuchEntity {
		c.SendNoNick(ErrNicknameInUse, newNick+" :Nickname is already in use")
		return false
	}

	if c.nick != "" {
		c.server.EraseNickname(c.nick)
	}
	c.server.HashNickname(newNick, c.id)
	c.nick = newNick
	return true
}

// joinChannel records that the client is a member of channel id. It is the
// caller's responsibility to have already added the client to the
// Channel's member set.
func (c *Client) joinChannel(id int) {
	for _, existing := range c.channels {
		if existing == id {
			return
		}
	}
	c.channels = append(c.channels, id)
}

// leaveChannel removes channel id from the client's membership list.
func (c *Client) leaveChannel(id int) {
	for i, existing := range c.channels {
		if existing == id {
			c.channels = append(c.channels[:i], c.channels[i+1:]...)
			return
		}
	}
}

// RequestQuit marks the client for disconnection at the transport's next
// opportunity, independent of registration state: an unregistered client
// can send QUIT too, and has no channels to announce a departure to.
func (c *Client) RequestQuit() { c.quitting = true }

// Quitting reports whether RequestQuit has been called on this client.
func (c *Client) Quitting() bool { return c.quitting }

// HandleQuit announces the client's departure to every user who can see it
// (every channel it shares membership with, excluding itself) and removes
// it from every channel it was on. It is idempotent: after the first call,
// the client is on no channels, so a second call is a silent no-op.
func (c *Client) HandleQuit(reason string) {
	if !c.IsReg() {
		return
	}

	line := ":" + c.NickUserHost() + " QUIT :" + reason + "\r\n"
	c.server.BroadcastButOne(c.id, []byte(line))

	for _, chID := range append([]int(nil), c.channels...) {
		c.server.GetChannel(chID).Remove(c.id)
	}
}
