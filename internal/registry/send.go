package registry

// Send primitives. All of them terminate the emitted line with CRLF. They
// are fire-and-forget: a write error on a dying socket is ignored here,
// since the transport's read-loop failure path is what drives the client
// into Disable.
//
// These use Go's naturally growable strings/byte slices rather than a
// fixed-size buffer, so no truncation occurs here.

// SendFrom writes ":<from> <numeric> <text>\r\n".
func (c *Client) SendFrom(from, numeric, text string) {
	c.SendRaw([]byte(":" + from + " " + numeric + " " + text + "\r\n"))
}

// SendNoNick writes SendFrom(server.ServerName(), numeric, text).
func (c *Client) SendNoNick(numeric, text string) {
	c.SendFrom(c.server.ServerName(), numeric, text)
}

// Send writes a numeric reply prefixed with the client's own nickname, the
// form most command replies use: ":<server> <numeric> <nick> <text>\r\n".
func (c *Client) Send(numeric, text string) {
	nick := c.nick
	if nick == "" {
		nick = "*"
	}
	c.SendNoNick(numeric, nick+" "+text)
}

// SendServerLine writes ":<server> <text>\r\n", for non-numeric server
// commands (e.g. a server-originated NOTICE).
func (c *Client) SendServerLine(text string) {
	c.SendRaw([]byte(":" + c.server.ServerName() + " " + text + "\r\n"))
}

// SendRaw writes buf verbatim. Callers are responsible for including any
// terminator.
func (c *Client) SendRaw(buf []byte) {
	if c.conn == nil {
		return
	}
	_, _ = c.conn.Write(buf)
}

// SendRawLine appends CRLF to text and writes it.
func (c *Client) SendRawLine(text string) {
	c.SendRaw([]byte(text + "\r\n"))
}

// SendAuthNotice sends the notice emitted when a connection is first
// accepted, before registration completes.
func (c *Client) SendAuthNotice() {
	c.SendServerLine("NOTICE * :*** Looking up your hostname...")
}
