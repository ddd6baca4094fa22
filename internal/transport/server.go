package transport

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/JOHNSONPCX/movie-sync/internal/logger"
	"github.com/JOHNSONPCX/movie-sync/internal/protocol"
)

// Server owns the host's listening socket and the set of connected
// peers. Peers are added on accept and removed on the first failed read
// or write; broadcasts iterate a snapshot so a dead peer never delays
// the others.
type Server struct {
	handler   Handler
	onConnect func(*Peer)

	ln      *net.TCPListener
	mu      sync.Mutex
	peers   map[string]*Peer
	running atomic.Bool
	wg      sync.WaitGroup
}

// NewServer builds a server; onConnect, if non-nil, runs for every
// accepted peer before its receive loop starts.
func NewServer(handler Handler, onConnect func(*Peer)) *Server {
	return &Server{
		handler:   handler,
		onConnect: onConnect,
		peers:     make(map[string]*Peer),
	}
}

// Listen binds the control socket and starts the accept loop. A bind
// failure is fatal to the host role.
func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("binding %s: %w", addr, err)
	}

	s.ln = ln.(*net.TCPListener)
	s.running.Store(true)

	logger.Log.Info().Str("addr", s.Addr()).Msg("listening for peers")

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// Addr returns the bound listen address.
func (s *Server) Addr() string { return s.ln.Addr().String() }

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for s.running.Load() {
		s.ln.SetDeadline(time.Now().Add(pollInterval))
		conn, err := s.ln.Accept()
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			if s.running.Load() {
				logger.Log.Warn().Err(err).Msg("accept failed")
				continue
			}
			return
		}

		peer := newPeer(conn)
		s.mu.Lock()
		s.peers[peer.id] = peer
		s.mu.Unlock()

		logger.Log.Info().Str("addr", peer.RemoteAddr()).Str("peer", peer.id).Msg("peer connected")

		if s.onConnect != nil {
			s.onConnect(peer)
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			peer.receiveLoop(&s.running, s.handler, s.removePeer)
		}()
	}
}

func (s *Server) removePeer(p *Peer) {
	s.mu.Lock()
	_, present := s.peers[p.id]
	delete(s.peers, p.id)
	s.mu.Unlock()

	p.Close()
	if present {
		logger.Log.Info().Str("peer", p.id).Msg("peer disconnected")
	}
}

// Broadcast delivers one message to every currently connected peer,
// each independently. A failed send drops that peer only.
func (s *Server) Broadcast(msg protocol.Message) {
	s.mu.Lock()
	snapshot := make([]*Peer, 0, len(s.peers))
	for _, p := range s.peers {
		snapshot = append(snapshot, p)
	}
	s.mu.Unlock()

	for _, p := range snapshot {
		s.Send(p, msg)
	}
}

// Send delivers one message to one peer, dropping the peer on failure.
func (s *Server) Send(p *Peer, msg protocol.Message) {
	if err := p.Send(msg); err != nil {
		logger.Log.Warn().Err(err).Str("peer", p.id).Msg("send failed, dropping peer")
		s.removePeer(p)
	}
}

// PeerCount reports how many peers are currently connected.
func (s *Server) PeerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.peers)
}

// Close stops the accept loop, disconnects every peer and waits for all
// loops to exit.
func (s *Server) Close() {
	if !s.running.CompareAndSwap(true, false) {
		return
	}

	s.ln.Close()

	s.mu.Lock()
	snapshot := make([]*Peer, 0, len(s.peers))
	for _, p := range s.peers {
		snapshot = append(snapshot, p)
	}
	s.peers = make(map[string]*Peer)
	s.mu.Unlock()

	for _, p := range snapshot {
		p.Close()
	}
	s.wg.Wait()
}
