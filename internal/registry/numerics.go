package registry

// A subset of the RFC 1459/2812 numeric replies this core needs directly;
// command handler bodies outside this core's scope define the rest.
const (
	ErrNoSuchNick       = "401"
	ErrNoSuchChannel    = "403"
	ErrCannotSendToChan = "404"
	ErrUnknownCommand   = "421"
	ErrErroneusNickname = "432"
	ErrNicknameInUse    = "433"
	ErrNotRegistered    = "451"
	ErrNeedMoreParams   = "461"
)
