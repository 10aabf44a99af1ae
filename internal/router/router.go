package router

import "github.com/wharfd/wharfd/internal/proto"

// Handler processes one parsed message's parameters for a session.
type Handler func(s *Session, params []string)

// Router holds the two dispatch tables: commands usable before
// registration completes, and the full command set for registered
// clients.
type Router struct {
	Unregistered map[string]Handler
	Registered   map[string]Handler
}

// New builds a Router with the default handler set wired in.
func New() *Router {
	r := &Router{
		Unregistered: map[string]Handler{},
		Registered:   map[string]Handler{},
	}
	registerDefaultHandlers(r)
	return r
}

// Dispatch routes one already-split message to the appropriate table based
// on the session's registration state. An empty command (an empty input
// line) is a silent no-op.
func (r *Router) Dispatch(s *Session, m proto.Message) {
	command := m.Command()
	if command == "" {
		return
	}

	if m.Source != "" {
		// Clients SHOULD NOT send a prefix (RFC 2812 §2.3); reject it outright
		// rather than silently trusting a client-supplied identity.
		s.Client.SendServerLine("NOTICE * :Do not send a prefix")
		return
	}

	params := m.Params()

	if !s.Client.IsReg() {
		if handler, ok := r.Unregistered[command]; ok {
			handler(s, params)
			return
		}

		// CAP negotiation (IRCv3) is out of scope; accept and ignore it rather
		// than bouncing clients that probe for it during registration.
		if command == "CAP" {
			return
		}

		s.MessageFromServer(errNotRegistered, "You have not registered")
		return
	}

	if handler, ok := r.Registered[command]; ok {
		handler(s, params)
		return
	}

	if command == "CAP" {
		return
	}

	s.MessageFromServer(errUnknownCommand, command+" :Unknown command")
}
