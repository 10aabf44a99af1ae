package router

import (
	"fmt"

	"github.com/wharfd/wharfd/internal/registry"
)

// sendWelcome fires the registration-complete sequence: server greeting
// numerics, MOTD, LUSERS, and the mode echo. It runs exactly once, as a
// side effect of the NICK/USER handler that completes registration.
func sendWelcome(s *Session) {
	c := s.Client
	srv := s.Server

	c.Send(replyWelcome,
		fmt.Sprintf(":Welcome to the %s IRC Network %s", srv.Network(), c.NickUserHost()))

	c.Send(replyYourHost,
		fmt.Sprintf(":Your host is %s, running version %s", srv.ServerName(), srv.Version()))

	c.Send(replyCreated,
		fmt.Sprintf(":This server was created %s", srv.Created()))

	c.Send(replyMyInfo, fmt.Sprintf("%s %s iows mits", srv.ServerName(), srv.Version()))

	sendMotd(s)
	sendLusers(s)

	// Mode echo: tell the client its own starting mode string.
	c.SendRawLine(fmt.Sprintf(":%s MODE %s +%s", srv.ServerName(), c.Nick(), c.ModeString()))
}

func sendLusers(s *Session) {
	c := s.Client
	srv := s.Server

	c.Send(replyLuserClient, fmt.Sprintf(
		":There are %d users and %d services on %d servers.",
		srv.Counters().Get(registry.StatTotalUsers), 0, 1))

	c.Send(replyLuserMe, fmt.Sprintf(":I have %d clients and %d servers",
		srv.Counters().Get(registry.StatLocalUsers), 1))
}

func sendMotd(s *Session) {
	c := s.Client
	srv := s.Server

	c.Send(replyMotdStart, fmt.Sprintf(":- %s Message of the day -", srv.ServerName()))

	if len(s.Config.MOTD) == 0 {
		c.Send(replyMotd, ":- No MOTD configured")
	} else {
		for _, line := range s.Config.MOTD {
			c.Send(replyMotd, ":- "+line)
		}
	}

	c.Send(replyEndOfMotd, ":End of MOTD command")
}
