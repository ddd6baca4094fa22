package player

import (
	"sync"
	"time"

	"github.com/JOHNSONPCX/movie-sync/internal/logger"
)

// Stub simulates a media engine: position advances with the wall clock,
// scaled by the current rate. It stands in where no real engine is
// wired, keeping the whole protocol exercisable end to end.
type Stub struct {
	mu         sync.Mutex
	path       string
	playing    bool
	rate       float64
	posMs      int64
	anchor     time.Time
	durationMs int64
	eomTimer   *time.Timer
	eom        chan struct{}
}

func NewStub() *Stub {
	return &Stub{rate: 1.0, eom: make(chan struct{}, 1)}
}

// SetDurationMs makes subsequently opened media finish after ms,
// firing the end-of-media signal. Zero means endless.
func (s *Stub) SetDurationMs(ms int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.durationMs = ms
}

func (s *Stub) Open(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.path = path
	s.posMs = 0
	s.playing = false
	s.rate = 1.0
	s.stopTimerLocked()
	logger.Log.Debug().Str("path", path).Msg("stub player loaded media")
	return nil
}

func (s *Stub) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playing {
		return
	}
	s.playing = true
	s.anchor = time.Now()
	s.armTimerLocked()
}

func (s *Stub) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.playing {
		// The engine contract is pause, not toggle; resuming is Play.
		return
	}
	s.posMs = s.positionLocked()
	s.playing = false
	s.stopTimerLocked()
}

func (s *Stub) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = false
	s.posMs = 0
	s.stopTimerLocked()
}

func (s *Stub) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

func (s *Stub) PositionMs() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.positionLocked()
}

func (s *Stub) SetPositionMs(ms int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posMs = ms
	s.anchor = time.Now()
	s.armTimerLocked()
}

func (s *Stub) SetRate(rate float64) {
	if rate <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posMs = s.positionLocked()
	s.anchor = time.Now()
	s.rate = rate
	s.armTimerLocked()
}

func (s *Stub) EndOfMedia() <-chan struct{} { return s.eom }

func (s *Stub) positionLocked() int64 {
	if !s.playing {
		return s.posMs
	}
	elapsed := float64(time.Since(s.anchor).Milliseconds())
	return s.posMs + int64(elapsed*s.rate)
}

func (s *Stub) armTimerLocked() {
	s.stopTimerLocked()
	if !s.playing || s.durationMs <= 0 {
		return
	}
	remaining := s.durationMs - s.positionLocked()
	if remaining < 0 {
		remaining = 0
	}
	wait := time.Duration(float64(remaining)/s.rate) * time.Millisecond
	s.eomTimer = time.AfterFunc(wait, s.fireEndOfMedia)
}

func (s *Stub) stopTimerLocked() {
	if s.eomTimer != nil {
		s.eomTimer.Stop()
		s.eomTimer = nil
	}
}

func (s *Stub) fireEndOfMedia() {
	s.mu.Lock()
	if !s.playing {
		s.mu.Unlock()
		return
	}
	s.playing = false
	s.posMs = s.durationMs
	s.mu.Unlock()

	select {
	case s.eom <- struct{}{}:
	default:
	}
}
