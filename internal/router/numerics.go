package router

import (
	"github.com/horgh/irc"
	"github.com/wharfd/wharfd/internal/registry"
)

// Local aliases so handlers.go can reference numerics without importing
// registry everywhere. replyWelcome reuses the wire library's own constant
// rather than redefining "001".
const (
	replyWelcome     = irc.ReplyWelcome
	replyYourHost    = "002"
	replyCreated     = "003"
	replyMyInfo      = "004"
	replyLuserClient = "251"
	replyLuserOp     = "252"
	replyLuserMe     = "255"
	replyMotdStart   = "375"
	replyMotd        = "372"
	replyEndOfMotd   = "376"
	replyNamReply    = "353"
	replyEndOfNames  = "366"
	replyTopic       = "332"
	replyNoTopic     = "331"

	errNoOrigin          = "409"
	errNoRecipient       = "411"
	errNoTextToSend      = "412"
	errNoSuchNick        = registry.ErrNoSuchNick
	errNoSuchChannel     = registry.ErrNoSuchChannel
	errCannotSendToChan  = registry.ErrCannotSendToChan
	errUnknownCommand    = registry.ErrUnknownCommand
	errNoNicknameGiven   = "431"
	errNicknameInUse     = registry.ErrNicknameInUse
	errNotOnChannel      = "442"
	errNotRegistered     = registry.ErrNotRegistered
	errNeedMoreParams    = registry.ErrNeedMoreParams
	errAlreadyRegistered = "462"
)
