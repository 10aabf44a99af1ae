package main

import (
	"log"
	"net"
	"time"

	"github.com/wharfd/wharfd/internal/proto"
)

// chanSink adapts a buffered write channel to registry.Sink. The owning
// event loop writes to it directly (via Client.Send*); the actual socket
// write happens on the connection's own writeLoop goroutine, so the event
// loop never blocks on client I/O.
type chanSink struct {
	ch chan []byte
}

func (s chanSink) Write(p []byte) (int, error) {
	cp := make([]byte, len(p))
	copy(cp, p)
	s.ch <- cp
	return len(p), nil
}

// acceptConnections accepts TCP connections and hands each one to the event
// loop over newConnChan. Per-connection goroutines are started once the
// event loop has registered the client and can tell us its id.
func acceptConnections(ln net.Listener, newConnChan chan<- net.Conn) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			log.Printf("Failed to accept connection: %s", err)
			continue
		}
		newConnChan <- conn
	}
}

// readLoop endlessly reads from the connection, splits complete lines out
// via a Framer, and forwards each to the event loop. It reports any
// termination (I/O error, or a line that overflowed the buffer) on
// deadChan and then returns; it does not close the connection itself, as
// the writeLoop goroutine owns the close so buffered output can drain
// first.
func readLoop(conn net.Conn, clientID int, deadTime time.Duration,
	lineChan chan<- lineEvent, deadChan chan<- deadEvent) {
	framer := &proto.Framer{}
	buf := make([]byte, 4096)

	for {
		if deadTime > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(deadTime)); err != nil {
				deadChan <- deadEvent{clientID: clientID, reason: "unable to set read deadline"}
				return
			}
		}

		n, err := conn.Read(buf)
		if n > 0 {
			lines, ferr := framer.Feed(buf[:n])
			for _, line := range lines {
				lineChan <- lineEvent{clientID: clientID, line: line}
			}
			if ferr != nil {
				deadChan <- deadEvent{clientID: clientID, reason: "line too long"}
				return
			}
		}

		if err != nil {
			deadChan <- deadEvent{clientID: clientID, reason: "connection closed"}
			return
		}
	}
}

// writeLoop drains writeChan to the connection until it is closed (by the
// event loop, once the client is disabled), then closes the socket: we
// only close once every already-queued message has had a chance to go out.
func writeLoop(conn net.Conn, writeChan <-chan []byte) {
	for buf := range writeChan {
		if _, err := conn.Write(buf); err != nil {
			break
		}
	}

	if err := conn.Close(); err != nil {
		log.Printf("client %s: error closing connection: %s", conn.RemoteAddr(), err)
	}
}

func remoteHost(conn net.Conn) string {
	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		return conn.RemoteAddr().String()
	}
	return host
}
