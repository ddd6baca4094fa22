package transport

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/JOHNSONPCX/movie-sync/internal/logger"
	"github.com/JOHNSONPCX/movie-sync/internal/protocol"
)

// Client is the client role's single connection to the host.
type Client struct {
	peer         *Peer
	onDisconnect func()
	running      atomic.Bool
	wg           sync.WaitGroup
}

// Dial connects to the host and starts the receive loop. A connect
// failure is fatal to the client role. onDisconnect, if non-nil, runs
// once if the host goes away before Close.
func Dial(addr string, handler Handler, onDisconnect func()) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connecting to host %s: %w", addr, err)
	}

	c := &Client{peer: newPeer(conn), onDisconnect: onDisconnect}
	c.running.Store(true)

	logger.Log.Info().Str("addr", addr).Msg("connected to host")

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.peer.receiveLoop(&c.running, handler, c.closed)
	}()
	return c, nil
}

func (c *Client) closed(p *Peer) {
	p.Close()
	if c.running.Load() {
		logger.Log.Info().Msg("disconnected from host")
		if c.onDisconnect != nil {
			c.onDisconnect()
		}
	}
}

// Send writes one message to the host. Failures are point-to-point:
// the caller logs and carries on.
func (c *Client) Send(msg protocol.Message) error {
	return c.peer.Send(msg)
}

// Close tears down the connection and waits for the receive loop.
func (c *Client) Close() {
	if !c.running.CompareAndSwap(true, false) {
		return
	}
	c.peer.Close()
	c.wg.Wait()
}
