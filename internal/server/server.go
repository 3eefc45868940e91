// Package server is the event-loop-equivalent external collaborator named
// in spec.md §1 ("the event loop that invokes the handler on readability").
// It owns the TCP/UDP sockets and feeds inbound bytes to
// internal/protocol.Conn buffers, calling core.Core.HandleClientConnect on
// every readability edge. Modeled directly on the teacher's
// tcpListen/udpListen/handler trio (accept semaphore, done channel,
// sync.WaitGroup) in apkerr-telegraf/plugins/inputs/statsd/statsd.go.
package server

import (
	"net"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/statsited/statsited/internal/core"
	"github.com/statsited/statsited/internal/protocol"
)

const (
	udpMaxPacketSize  = 64 * 1024
	tcpReadBufferSize = 4096
	defaultMaxConns   = 250
)

// Server listens for inbound statsd traffic on one address/protocol pair
// and dispatches every connection (or, for UDP, every datagram) to Core.
type Server struct {
	Core    *core.Core
	Log     *logrus.Logger
	Network string // "tcp" or "udp"
	Address string
	MaxTCP  int

	done     chan struct{}
	wg       sync.WaitGroup
	accept   chan struct{}
	tcpLn    *net.TCPListener
	udpConn  *net.UDPConn
	connsMu  sync.Mutex
	conns    map[net.Conn]struct{}
}

// New constructs a Server with the teacher's connection-limit default.
func New(c *core.Core, log *logrus.Logger, network, address string, maxTCP int) *Server {
	if maxTCP <= 0 {
		maxTCP = defaultMaxConns
	}
	return &Server{
		Core:    c,
		Log:     log,
		Network: network,
		Address: address,
		MaxTCP:  maxTCP,
		done:    make(chan struct{}),
		accept:  make(chan struct{}, maxTCP),
		conns:   make(map[net.Conn]struct{}),
	}
}

// Start binds the listening socket and spawns the accept/read loop(s). It
// returns once the listener is bound; the loops run in background
// goroutines tracked by the Server's WaitGroup.
func (s *Server) Start() error {
	for i := 0; i < s.MaxTCP; i++ {
		s.accept <- struct{}{}
	}

	if s.Network == "udp" {
		addr, err := net.ResolveUDPAddr("udp", s.Address)
		if err != nil {
			return err
		}
		conn, err := net.ListenUDP("udp", addr)
		if err != nil {
			return err
		}
		s.udpConn = conn
		s.Log.Infof("UDP listening on %q", conn.LocalAddr())
		s.wg.Add(1)
		go s.udpLoop(conn)
		return nil
	}

	addr, err := net.ResolveTCPAddr("tcp", s.Address)
	if err != nil {
		return err
	}
	ln, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return err
	}
	s.tcpLn = ln
	s.Log.Infof("TCP listening on %q", ln.Addr())
	s.wg.Add(1)
	go s.tcpLoop(ln)
	return nil
}

// Stop closes the listening socket(s) and every open connection, then waits
// for the background loops to exit.
func (s *Server) Stop() {
	close(s.done)
	if s.tcpLn != nil {
		s.tcpLn.Close()
	}
	if s.udpConn != nil {
		s.udpConn.Close()
	}

	s.connsMu.Lock()
	conns := make([]net.Conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.connsMu.Unlock()
	for _, c := range conns {
		c.Close()
	}

	s.wg.Wait()
}

func (s *Server) tcpLoop(ln *net.TCPListener) {
	defer s.wg.Done()
	for {
		conn, err := ln.AcceptTCP()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				s.Log.WithError(err).Warn("tcp accept failed")
				return
			}
		}

		select {
		case <-s.accept:
			s.wg.Add(1)
			s.remember(conn)
			go s.handleTCP(conn)
		default:
			s.Log.Warn("max TCP connections reached, refusing connection")
			conn.Close()
		}
	}
}

func (s *Server) handleTCP(nc *net.TCPConn) {
	defer func() {
		s.wg.Done()
		nc.Close()
		s.forget(nc)
		s.accept <- struct{}{}
	}()

	wireConn := &protocol.Conn{}
	buf := make([]byte, tcpReadBufferSize)
	for {
		n, err := nc.Read(buf)
		if n > 0 {
			wireConn.Buffer.Feed(buf[:n])
			if s.Core.HandleClientConnect(wireConn) == -1 {
				return
			}
		}
		if err != nil {
			return
		}
		select {
		case <-s.done:
			return
		default:
		}
	}
}

func (s *Server) udpLoop(conn *net.UDPConn) {
	defer s.wg.Done()
	buf := make([]byte, udpMaxPacketSize)
	for {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				s.Log.WithError(err).Warn("udp read failed")
				return
			}
		}
		if n == 0 {
			continue
		}
		// Each UDP datagram is dispatched through its own throwaway
		// protocol.Conn: statsd datagrams are self-contained, and unlike
		// TCP there is no byte stream to carry partial lines/frames across
		// packets.
		wireConn := &protocol.Conn{}
		wireConn.Buffer.Feed(buf[:n])
		s.Core.HandleClientConnect(wireConn)
	}
}

func (s *Server) remember(c net.Conn) {
	s.connsMu.Lock()
	s.conns[c] = struct{}{}
	s.connsMu.Unlock()
}

func (s *Server) forget(c net.Conn) {
	s.connsMu.Lock()
	delete(s.conns, c)
	s.connsMu.Unlock()
}
