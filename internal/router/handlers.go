package router

import (
	"fmt"

	"github.com/wharfd/wharfd/internal/names"
	"github.com/wharfd/wharfd/internal/registry"
)

func registerDefaultHandlers(r *Router) {
	r.Unregistered["NICK"] = handleNick
	r.Unregistered["USER"] = handleUser
	r.Unregistered["PASS"] = handlePass
	r.Unregistered["QUIT"] = handleQuit
	r.Unregistered["PING"] = handlePing

	r.Registered["NICK"] = handleNick
	r.Registered["USER"] = handleUserAlreadyRegistered
	r.Registered["JOIN"] = handleJoin
	r.Registered["PART"] = handlePart
	r.Registered["PRIVMSG"] = handlePrivmsg
	r.Registered["NOTICE"] = handlePrivmsg
	r.Registered["QUIT"] = handleQuit
	r.Registered["PING"] = handlePing
	r.Registered["PONG"] = handlePong
	r.Registered["TOPIC"] = handleTopic
}

// handleNick applies to both unregistered and registered clients: it covers
// both NICK-during-registration and a nick change after registration.
func handleNick(s *Session, params []string) {
	if len(params) == 0 {
		s.MessageFromServer(errNoNicknameGiven, ":No nickname given")
		return
	}

	nick := params[0]
	wasReg := s.Client.IsReg()

	oldNickUserHost := s.Client.NickUserHost()

	if !s.Client.ChangeNick(nick) {
		return
	}

	if !wasReg {
		if s.Client.ConfirmNick() {
			sendWelcome(s)
		}
		return
	}

	// Registered clients changing nick: tell everyone visible, from the old
	// identity, then reflect the change.
	s.Server.BroadcastButOne(s.Client.ID(), []byte(
		fmt.Sprintf(":%s NICK :%s\r\n", oldNickUserHost, nick)))
}

func handlePass(s *Session, params []string) {
	// PASS is accepted and ignored: this core has no server-linking or
	// operator-password flow in scope (spec.md Non-goals).
}

func handleUser(s *Session, params []string) {
	if len(params) != 4 {
		s.MessageFromServer(errNeedMoreParams, "USER :Not enough parameters")
		return
	}

	if s.Client.SetUser(params[0]) {
		sendWelcome(s)
	}
}

func handleUserAlreadyRegistered(s *Session, params []string) {
	s.MessageFromServer(errAlreadyRegistered, ":Unauthorized command (already registered)")
}

func handleQuit(s *Session, params []string) {
	msg := "Client Quit"
	if len(params) > 0 {
		msg = params[0]
	}
	s.Client.RequestQuit()
	s.Client.HandleQuit(msg)
}

func handlePing(s *Session, params []string) {
	if len(params) == 0 {
		s.MessageFromServer(errNoOrigin, ":No origin specified")
		return
	}
	s.Client.SendServerLine("PONG " + s.Server.ServerName() + " :" + params[0])
}

func handlePong(s *Session, params []string) {
	// Nothing to do; receiving a PONG just means the client is alive.
}

func handleJoin(s *Session, params []string) {
	if len(params) == 0 {
		s.MessageFromServer(errNeedMoreParams, "JOIN :Not enough parameters")
		return
	}

	if len(params) == 1 && params[0] == "0" {
		for _, chID := range append([]int(nil), s.Client.Channels()...) {
			partChannel(s, s.Server.GetChannel(chID), "")
		}
		return
	}

	channelName := params[0]
	if !names.ValidChannel(channelName) {
		s.MessageFromServer(errNoSuchChannel, channelName+" :Invalid channel name")
		return
	}

	channel := resolveOrCreateChannel(s, channelName)

	if channel.HasMember(s.Client.ID()) {
		return
	}

	channel.Add(s.Client.ID())

	s.Server.Broadcast(s.Client.ID(), []byte(
		fmt.Sprintf(":%s JOIN %s\r\n", s.Client.NickUserHost(), channel.Name())))

	if channel.Topic() != "" {
		s.Client.Send(replyTopic, channel.Name()+" :"+channel.Topic())
	}

	for _, memberID := range channel.Clients() {
		member := s.Server.GetClient(memberID)
		s.Client.Send(replyNamReply, "= "+channel.Name()+" :"+member.Nick())
	}
	s.Client.Send(replyEndOfNames, channel.Name()+" :End of NAMES list")
}

// resolveOrCreateChannel looks up channelName, creating it if this is the
// first client to join.
func resolveOrCreateChannel(s *Session, channelName string) *registry.Channel {
	if chID := s.Server.ChannelByName(channelName); chID != registry.NoSuchEntity {
		return s.Server.GetChannel(chID)
	}
	return s.Server.CreateChannel(channelName)
}

func handlePart(s *Session, params []string) {
	if len(params) == 0 {
		s.MessageFromServer(errNeedMoreParams, "PART :Not enough parameters")
		return
	}

	channelName := params[0]
	message := ""
	if len(params) >= 2 {
		message = params[1]
	}

	chID := s.Server.ChannelByName(channelName)
	if chID == -1 {
		s.MessageFromServer(errNoSuchChannel, channelName+" :No such channel")
		return
	}
	channel := s.Server.GetChannel(chID)

	if !channel.HasMember(s.Client.ID()) {
		s.MessageFromServer(errNotOnChannel, channelName+" :You are not on that channel")
		return
	}

	partChannel(s, channel, message)
}

func partChannel(s *Session, channel interface {
	Name() string
	HasMember(int) bool
	Remove(int)
}, message string) {
	line := fmt.Sprintf(":%s PART %s", s.Client.NickUserHost(), channel.Name())
	if message != "" {
		line += " :" + message
	}
	line += "\r\n"

	s.Server.Broadcast(s.Client.ID(), []byte(line))
	channel.Remove(s.Client.ID())
}

func handlePrivmsg(s *Session, params []string) {
	if len(params) == 0 {
		s.MessageFromServer(errNoRecipient, ":No recipient given")
		return
	}
	if len(params) == 1 {
		s.MessageFromServer(errNoTextToSend, ":No text to send")
		return
	}

	target := params[0]
	msg := params[1]

	if names.IsChannel(target) {
		chID := s.Server.ChannelByName(target)
		if chID == -1 {
			s.MessageFromServer(errNoSuchChannel, target+" :No such channel")
			return
		}
		channel := s.Server.GetChannel(chID)
		if !channel.HasMember(s.Client.ID()) {
			s.MessageFromServer(errCannotSendToChan, target+" :Cannot send to channel")
			return
		}

		line := fmt.Sprintf(":%s PRIVMSG %s :%s\r\n", s.Client.NickUserHost(), channel.Name(), msg)
		s.Server.BroadcastButOne(s.Client.ID(), []byte(line))
		return
	}

	targetID := s.Server.UserByName(target)
	if targetID == -1 {
		s.MessageFromServer(errNoSuchNick, target+" :No such nick/channel")
		return
	}

	targetClient := s.Server.GetClient(targetID)
	targetClient.SendRawLine(fmt.Sprintf(":%s PRIVMSG %s :%s", s.Client.NickUserHost(),
		targetClient.Nick(), msg))
}

func handleTopic(s *Session, params []string) {
	if len(params) == 0 {
		s.MessageFromServer(errNeedMoreParams, "TOPIC :Not enough parameters")
		return
	}

	chID := s.Server.ChannelByName(params[0])
	if chID == -1 {
		s.MessageFromServer(errNoSuchChannel, params[0]+" :No such channel")
		return
	}
	channel := s.Server.GetChannel(chID)

	if len(params) == 1 {
		if channel.Topic() == "" {
			s.Client.Send(replyNoTopic, channel.Name()+" :No topic is set")
		} else {
			s.Client.Send(replyTopic, channel.Name()+" :"+channel.Topic())
		}
		return
	}

	if !channel.HasMember(s.Client.ID()) {
		s.MessageFromServer(errNotOnChannel, channel.Name()+" :You are not on that channel")
		return
	}

	channel.SetTopic(params[1])
	s.Server.Broadcast(s.Client.ID(), []byte(
		fmt.Sprintf(":%s TOPIC %s :%s\r\n", s.Client.NickUserHost(), channel.Name(), params[1])))
}
