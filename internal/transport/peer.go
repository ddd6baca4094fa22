// Package transport manages the TCP side of a session: the host's
// listening socket and peer set, the client's single outbound
// connection, and newline-delimited JSON framing of command messages.
package transport

import (
	"bytes"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/JOHNSONPCX/movie-sync/internal/logger"
	"github.com/JOHNSONPCX/movie-sync/internal/protocol"
)

// DefaultPort is the fixed well-known control port.
const DefaultPort = 5000

const (
	// pollInterval bounds every blocking socket wait so loops observe
	// shutdown within roughly one second.
	pollInterval = time.Second
	writeTimeout = 5 * time.Second

	// maxBuffered caps the receive accumulator; a peer that never sends
	// a delimiter is misbehaving and gets dropped.
	maxBuffered = 4 << 20
)

// Handler receives every successfully decoded message along with the
// peer it arrived on, for direct replies.
type Handler func(msg protocol.Message, from *Peer)

// Peer is one live connection, on either side of the session.
type Peer struct {
	id     string
	conn   net.Conn
	wmu    sync.Mutex
	closed atomic.Bool
}

func newPeer(conn net.Conn) *Peer {
	return &Peer{id: uuid.NewString(), conn: conn}
}

func (p *Peer) ID() string { return p.id }

func (p *Peer) RemoteAddr() string { return p.conn.RemoteAddr().String() }

// Send serializes and writes one framed message. A write failure means
// the connection is dead; the caller removes the peer.
func (p *Peer) Send(msg protocol.Message) error {
	frame, err := protocol.Encode(msg)
	if err != nil {
		return err
	}

	p.wmu.Lock()
	defer p.wmu.Unlock()
	p.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	_, err = p.conn.Write(frame)
	return err
}

func (p *Peer) Close() {
	if p.closed.CompareAndSwap(false, true) {
		p.conn.Close()
	}
}

// receiveLoop reads frames until the peer disconnects or running goes
// false. Reads use a bounded deadline so shutdown is observed promptly;
// partial frames accumulate across reads. A frame that fails to decode
// is logged and dropped, the connection stays open.
func (p *Peer) receiveLoop(running *atomic.Bool, handler Handler, onClose func(*Peer)) {
	defer onClose(p)

	var acc []byte
	buf := make([]byte, 4096)

	for running.Load() {
		p.conn.SetReadDeadline(time.Now().Add(pollInterval))
		n, err := p.conn.Read(buf)
		if n > 0 {
			acc = append(acc, buf[:n]...)
			for {
				i := bytes.IndexByte(acc, protocol.Delimiter)
				if i < 0 {
					break
				}
				frame := acc[:i]
				acc = acc[i+1:]
				if len(bytes.TrimSpace(frame)) == 0 {
					continue
				}

				msg, derr := protocol.Decode(frame)
				if derr != nil {
					logger.Log.Warn().Err(derr).Str("peer", p.id).Msg("dropping bad message")
					continue
				}
				handler(msg, p)
			}
			if len(acc) > maxBuffered {
				logger.Log.Error().Str("peer", p.id).Msg("unframed data overflow, closing connection")
				return
			}
		}
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			if err != io.EOF && running.Load() {
				logger.Log.Warn().Err(err).Str("peer", p.id).Msg("connection read failed")
			}
			return
		}
	}
}
