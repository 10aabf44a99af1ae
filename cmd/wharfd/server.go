package main

import (
	"log"
	"net"
	"time"

	"github.com/pkg/errors"
	"github.com/wharfd/wharfd/internal/config"
	"github.com/wharfd/wharfd/internal/proto"
	"github.com/wharfd/wharfd/internal/registry"
	"github.com/wharfd/wharfd/internal/router"
)

// lineEvent carries one fully-framed line from a connection's readLoop to
// the event loop.
type lineEvent struct {
	clientID int
	line     string
}

// deadEvent reports that a connection's reader or writer gave up.
type deadEvent struct {
	clientID int
	reason   string
}

// server owns the registry and the router; run's event loop is the single
// goroutine permitted to touch either.
type server struct {
	config   *config.Config
	registry *registry.Registry
	router   *router.Router
}

func newServer(cfg *config.Config) *server {
	return &server{
		config:   cfg,
		registry: registry.New(cfg.ServerName, cfg.Network, cfg.Version),
		router:   router.New(),
	}
}

// run opens the configured listener and serves it. It is the only place
// Registry methods are called from: the event loop is the registry's
// single owning goroutine.
func (s *server) run() error {
	addr := net.JoinHostPort(s.config.ListenHost, s.config.ListenPort)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "unable to listen on %s", addr)
	}
	log.Printf("Listening on %s", ln.Addr())

	return s.serve(ln)
}

// serve drives the event loop against an already-open listener. Split out
// from run so tests can bind an ephemeral port and still reach the loop.
func (s *server) serve(ln net.Listener) error {
	newConnChan := make(chan net.Conn, 100)
	lineChan := make(chan lineEvent, 100)
	deadChan := make(chan deadEvent, 100)

	go acceptConnections(ln, newConnChan)

	sessions := map[int]*router.Session{}
	writeChans := map[int]chan []byte{}
	lastActivity := map[int]time.Time{}

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case conn := <-newConnChan:
			s.acceptClient(conn, lineChan, deadChan, sessions, writeChans, lastActivity)

		case ev := <-lineChan:
			session, ok := sessions[ev.clientID]
			if !ok {
				continue
			}
			lastActivity[ev.clientID] = time.Now()

			s.router.Dispatch(session, proto.Split(ev.line))

			if session.Client.Quitting() {
				s.disconnect(ev.clientID, sessions, writeChans, lastActivity)
			}

		case ev := <-deadChan:
			session, ok := sessions[ev.clientID]
			if !ok {
				continue
			}
			session.Client.RequestQuit()
			session.Client.HandleQuit(ev.reason)
			s.disconnect(ev.clientID, sessions, writeChans, lastActivity)

		case <-ticker.C:
			s.checkIdleClients(sessions, writeChans, lastActivity)
		}
	}
}

// acceptClient registers a connection as a fresh client slot, wires its
// sink to a fresh write goroutine, and starts its reader.
func (s *server) acceptClient(conn net.Conn, lineChan chan<- lineEvent,
	deadChan chan<- deadEvent, sessions map[int]*router.Session,
	writeChans map[int]chan []byte, lastActivity map[int]time.Time) {
	client := s.registry.NewClient()

	writeChan := make(chan []byte, 100)
	client.Attach(chanSink{ch: writeChan}, remoteHost(conn))

	sessions[client.ID()] = &router.Session{
		Client: client,
		Server: s.registry,
		Config: s.config,
	}
	writeChans[client.ID()] = writeChan
	lastActivity[client.ID()] = time.Now()

	client.SendAuthNotice()

	go writeLoop(conn, writeChan)
	go readLoop(conn, client.ID(), s.config.DeadTime, lineChan, deadChan)

	log.Printf("New connection: client %d from %s", client.ID(), conn.RemoteAddr())
}

// disconnect frees a client's registry slot and closes its write channel,
// which in turn lets its writeLoop goroutine drain and close the socket.
func (s *server) disconnect(clientID int, sessions map[int]*router.Session,
	writeChans map[int]chan []byte, lastActivity map[int]time.Time) {
	session, ok := sessions[clientID]
	if !ok {
		return
	}

	if session.Client.IsAlive() {
		session.Client.Disable()
	}

	if wc, ok := writeChans[clientID]; ok {
		close(wc)
		delete(writeChans, clientID)
	}

	delete(sessions, clientID)
	delete(lastActivity, clientID)
}

// checkIdleClients pings registered clients idle past PingTime and
// disconnects anyone (registered or not) idle past DeadTime.
func (s *server) checkIdleClients(sessions map[int]*router.Session,
	writeChans map[int]chan []byte, lastActivity map[int]time.Time) {
	now := time.Now()

	for clientID, session := range sessions {
		idle := now.Sub(lastActivity[clientID])

		if session.Client.IsReg() {
			if idle < s.config.PingTime {
				continue
			}
			if idle > s.config.DeadTime {
				session.Client.RequestQuit()
				session.Client.HandleQuit("Ping timeout")
				s.disconnect(clientID, sessions, writeChans, lastActivity)
				continue
			}
			session.Client.SendServerLine("PING :" + s.config.ServerName)
			continue
		}

		if idle > s.config.DeadTime {
			session.Client.RequestQuit()
			s.disconnect(clientID, sessions, writeChans, lastActivity)
		}
	}
}
