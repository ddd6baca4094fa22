package session

import (
	"time"

	"github.com/JOHNSONPCX/movie-sync/internal/logger"
	"github.com/JOHNSONPCX/movie-sync/internal/protocol"
)

// Drift thresholds: inside the tight band no correction happens (seek
// jitter is worse than 100ms of drift), beyond the hard band the client
// seeks outright, in between the playback rate is nudged toward
// convergence.
const (
	inSyncThresholdMs   = 100
	hardSeekThresholdMs = 1000

	catchUpRate  = 1.05
	fallBackRate = 0.95

	// maxPlausibleRTTMs discards round trips so slow they would distort
	// the one-way estimate more than help it.
	maxPlausibleRTTMs = 2000
)

// syncLoop is the host's periodic sync emitter: while actively playing,
// capture position + wall clock and broadcast them.
func (s *Session) syncLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.syncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if s.player.IsPlaying() {
				s.emitSync()
			}
		}
	}
}

func (s *Session) emitSync() {
	s.server.Broadcast(protocol.Sync{
		Type:     protocol.TypeSync,
		Time:     s.player.PositionMs(),
		SyncTime: time.Now().UnixMilli(),
	})
}

// handleSync applies one host sync sample. The sample is used once and
// discarded; repeated delivery of the same sample is idempotent.
func (s *Session) handleSync(m *protocol.Sync) {
	if !s.isLoaded() {
		return
	}

	elapsed := time.Now().UnixMilli() - m.SyncTime
	target := m.Time + elapsed + s.latencyMs.Load()

	if !s.player.IsPlaying() {
		s.player.SetPositionMs(target)
		return
	}

	diff := s.player.PositionMs() - target
	switch {
	case diff >= hardSeekThresholdMs || diff <= -hardSeekThresholdMs:
		logger.Log.Debug().Int64("drift_ms", diff).Msg("hard resync")
		s.player.SetPositionMs(target)
		s.player.SetRate(1.0)
	case diff > inSyncThresholdMs:
		s.player.SetRate(fallBackRate)
	case diff < -inSyncThresholdMs:
		s.player.SetRate(catchUpRate)
	default:
		s.player.SetRate(1.0)
	}
}

// pingLoop is the client's latency probe. Each tick sends one ping and
// stamps it; the probe never blocks the sync path, and a ping that was
// never answered is simply superseded by the next one.
func (s *Session) pingLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.pingSentMs.Store(time.Now().UnixMilli())
			if err := s.client.Send(protocol.Ping{Type: protocol.TypePing}); err != nil {
				logger.Log.Debug().Err(err).Msg("latency probe failed")
				s.pingSentMs.Store(0)
			}
		}
	}
}

// recordPong turns a pong's round trip into a one-way latency estimate.
func (s *Session) recordPong(nowMs int64) {
	sent := s.pingSentMs.Swap(0)
	if sent == 0 {
		return
	}
	rtt := nowMs - sent
	if rtt < 0 || rtt > maxPlausibleRTTMs {
		return
	}
	s.latencyMs.Store(rtt / 2)
}
