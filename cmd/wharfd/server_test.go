package main

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wharfd/wharfd/internal/config"
)

// testClient is a minimal line-oriented IRC client for driving the server
// over a real socket, scoped to a single process (no server-to-server
// linking in this core).
type testClient struct {
	conn net.Conn
	r    *bufio.Reader
}

func dialTestClient(t *testing.T, addr string) *testClient {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	require.NoError(t, err, "dial server")
	return &testClient{conn: conn, r: bufio.NewReader(conn)}
}

func (c *testClient) send(line string) {
	_, _ = c.conn.Write([]byte(line + "\r\n"))
}

func (c *testClient) close() {
	_ = c.conn.Close()
}

// readUntil reads lines until one contains substr, failing the test if
// none arrives before the deadline.
func (c *testClient) readUntil(t *testing.T, substr string) string {
	t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		line, err := c.r.ReadString('\n')
		require.NoError(t, err, "waiting for line containing %q", substr)
		line = strings.TrimRight(line, "\r\n")
		if strings.Contains(line, substr) {
			return line
		}
	}
}

func startTestServer(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err, "listen on ephemeral port")

	cfg := &config.Config{
		ServerName:      "irc.test.example",
		ServerInfo:      "test server",
		Version:         "wharfd-test",
		Network:         "TestNet",
		NickMinLength:   1,
		NickMaxLength:   9,
		ChanMinLength:   1,
		ChanMaxLength:   16,
		ChanMax:         8,
		ClientMaxChans:  10,
		MaxBufferedLine: 2048,
		PingTime:        time.Hour,
		DeadTime:        time.Hour,
	}

	srv := newServer(cfg)
	go func() {
		_ = srv.serve(ln)
	}()

	return ln.Addr().String()
}

func registerClient(t *testing.T, addr, nick, user string) *testClient {
	t.Helper()
	c := dialTestClient(t, addr)
	c.send(fmt.Sprintf("NICK %s", nick))
	c.send(fmt.Sprintf("USER %s 0 * :%s Example", user, user))
	c.readUntil(t, " 001 ")
	return c
}

// TestRegistrationOverSocket checks, end-to-end over a real socket, that
// NICK then USER yields the welcome burst.
func TestRegistrationOverSocket(t *testing.T) {
	addr := startTestServer(t)
	c := registerClient(t, addr, "alice", "alice")
	defer c.close()
}

// TestJoinAndPrivmsgOverSocket checks that a message sent to a channel by
// one client over its own socket is delivered to another client's socket.
func TestJoinAndPrivmsgOverSocket(t *testing.T) {
	addr := startTestServer(t)

	alice := registerClient(t, addr, "alice", "alice")
	defer alice.close()
	bob := registerClient(t, addr, "bob", "bob")
	defer bob.close()

	alice.send("JOIN #general")
	alice.readUntil(t, "JOIN #general")

	bob.send("JOIN #general")
	bob.readUntil(t, "JOIN #general")

	alice.send("PRIVMSG #general :hello there")
	line := bob.readUntil(t, "PRIVMSG #general")
	require.Contains(t, line, "hello there")
	require.Contains(t, line, "alice!")
}

// TestQuitOverSocket checks, end-to-end over a real socket, that QUIT
// announces to channel peers and the connection is torn down.
func TestQuitOverSocket(t *testing.T) {
	addr := startTestServer(t)

	alice := registerClient(t, addr, "alice", "alice")
	defer alice.close()
	bob := registerClient(t, addr, "bob", "bob")
	defer bob.close()

	alice.send("JOIN #general")
	alice.readUntil(t, "JOIN #general")
	bob.send("JOIN #general")
	bob.readUntil(t, "JOIN #general")

	alice.send("QUIT :goodbye")
	line := bob.readUntil(t, "QUIT")
	require.Contains(t, line, "goodbye")

	_ = alice.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 16)
	_, err := alice.conn.Read(buf)
	require.Error(t, err, "expected connection to be closed after QUIT")
}

// TestPartialLineAcrossWrites checks that a line split across two TCP
// writes still dispatches once complete.
func TestPartialLineAcrossWrites(t *testing.T) {
	addr := startTestServer(t)
	c := dialTestClient(t, addr)
	defer c.close()

	_, err := c.conn.Write([]byte("NICK al"))
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)
	_, err = c.conn.Write([]byte("ice\r\nUSER alice 0 * :Alice\r\n"))
	require.NoError(t, err)

	c.readUntil(t, " 001 ")
}
