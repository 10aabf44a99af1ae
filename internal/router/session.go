// Package router dispatches parsed protocol lines to command handlers,
// split by registration phase: an unregistered-client table that only
// accepts the registration commands, and a full table for registered
// clients. This package ships the routing plumbing plus handler bodies for
// NICK/USER/JOIN/PART/PRIVMSG/NOTICE/QUIT/PING/PONG/TOPIC.
package router

import (
	"github.com/wharfd/wharfd/internal/config"
	"github.com/wharfd/wharfd/internal/registry"
)

// Session is the seam between one connection's parsed lines and the
// shared Registry: the connection's client (registered or not) plus the
// server configuration, from which the handlers read the MOTD text.
type Session struct {
	Client *registry.Client
	Server *registry.Registry
	Config *config.Config
}

// MessageFromServer emits a numeric reply, prepending the client's own
// (possibly placeholder) nick as Client.Send already does.
func (s *Session) MessageFromServer(numeric string, text string) {
	s.Client.Send(numeric, text)
}
