package session

import (
	"time"

	"github.com/JOHNSONPCX/movie-sync/internal/logger"
	"github.com/JOHNSONPCX/movie-sync/internal/protocol"
	"github.com/JOHNSONPCX/movie-sync/internal/transport"
)

// handleMessage routes one decoded command. Playback commands apply to
// the local engine; a client never re-broadcasts what it received, and
// commands arriving on the wrong role are logged and ignored rather
// than crashing the receive loop.
func (s *Session) handleMessage(msg protocol.Message, from *transport.Peer) {
	switch m := msg.(type) {
	case *protocol.PlaylistInfo:
		if !s.clientOnly(protocol.TypePlaylistInfo) {
			return
		}
		s.reconcile(m.Playlist)

	case *protocol.PlayFile:
		if !s.clientOnly(protocol.TypePlayFile) {
			return
		}
		if err := s.verifyAndLoad(m.Index); err != nil {
			logger.Log.Warn().Err(err).Int("index", m.Index).Msg("cannot play announced file")
			return
		}
		if m.Time != nil {
			s.player.SetPositionMs(*m.Time)
		}
		s.player.Play()

	case *protocol.Play:
		if !s.clientOnly(protocol.TypePlay) {
			return
		}
		if m.Time != nil {
			s.player.SetPositionMs(*m.Time)
		}
		s.player.Play()

	case *protocol.Pause:
		if !s.clientOnly(protocol.TypePause) {
			return
		}
		s.player.Pause()

	case *protocol.Seek:
		if !s.clientOnly(protocol.TypeSeek) {
			return
		}
		s.player.SetPositionMs(m.Time)

	case *protocol.Sync:
		if !s.clientOnly(protocol.TypeSync) {
			return
		}
		s.handleSync(m)

	case *protocol.RequestSync:
		if !s.hostOnly(protocol.TypeRequestSync) {
			return
		}
		s.emitSync()

	case *protocol.ToggleShuffle:
		if !s.hostOnly(protocol.TypeToggleShuffle) {
			return
		}
		s.ToggleShuffle()

	case *protocol.ShuffleState:
		if !s.clientOnly(protocol.TypeShuffleState) {
			return
		}
		s.mu.Lock()
		s.shuffle = m.Enabled
		s.mu.Unlock()
		logger.Log.Info().Bool("enabled", m.Enabled).Msg("shuffle state adopted")

	case *protocol.Ping:
		if !s.hostOnly(protocol.TypePing) {
			return
		}
		s.server.Send(from, protocol.Pong{Type: protocol.TypePong})

	case *protocol.Pong:
		if !s.clientOnly(protocol.TypePong) {
			return
		}
		s.recordPong(time.Now().UnixMilli())

	case *protocol.RequestFile:
		if !s.hostOnly(protocol.TypeRequestFile) {
			return
		}
		s.handleFileRequest(m, from)

	case *protocol.FileUnsupported:
		if !s.clientOnly(protocol.TypeFileUnsupported) {
			return
		}
		logger.Log.Warn().Int("index", m.Index).
			Msg("host cannot transfer the missing file; add it to the media folder manually")
	}
}

// handleFileRequest answers explicitly: file transfer is a documented
// non-goal, and the requester must never be left waiting.
func (s *Session) handleFileRequest(m *protocol.RequestFile, from *transport.Peer) {
	if entry, ok := s.list.At(m.Index); ok {
		logger.Log.Info().Str("name", entry.Name).Int("index", m.Index).
			Msg("peer requested file; transfer not supported")
	} else {
		logger.Log.Warn().Int("index", m.Index).Msg("peer requested unknown file")
	}
	s.server.Send(from, protocol.FileUnsupported{Type: protocol.TypeFileUnsupported, Index: m.Index})
}

func (s *Session) clientOnly(kind string) bool {
	if s.role != RoleClient {
		logger.Log.Debug().Str("type", kind).Msg("ignoring client-bound command on host")
		return false
	}
	return true
}

func (s *Session) hostOnly(kind string) bool {
	if s.role != RoleHost {
		logger.Log.Debug().Str("type", kind).Msg("ignoring host-bound command on client")
		return false
	}
	return true
}
