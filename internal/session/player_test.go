package session

import (
	"sync"

	"github.com/JOHNSONPCX/movie-sync/internal/media"
	"github.com/JOHNSONPCX/movie-sync/internal/playlist"
)

// fakePlayer is a fully deterministic engine double: position only
// moves when a test or the code under test moves it.
type fakePlayer struct {
	mu      sync.Mutex
	playing bool
	pos     int64
	rate    float64
	opened  []string
	seeks   []int64
	eom     chan struct{}
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{rate: 1.0, eom: make(chan struct{}, 1)}
}

func (f *fakePlayer) Open(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = append(f.opened, path)
	f.pos = 0
	f.playing = false
	return nil
}

func (f *fakePlayer) Play() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playing = true
}

func (f *fakePlayer) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playing = false
}

func (f *fakePlayer) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playing = false
	f.pos = 0
}

func (f *fakePlayer) IsPlaying() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.playing
}

func (f *fakePlayer) PositionMs() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pos
}

func (f *fakePlayer) SetPositionMs(ms int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pos = ms
	f.seeks = append(f.seeks, ms)
}

func (f *fakePlayer) SetRate(rate float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rate = rate
}

func (f *fakePlayer) EndOfMedia() <-chan struct{} { return f.eom }

func (f *fakePlayer) state() (playing bool, pos int64, rate float64, seeks int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.playing, f.pos, f.rate, len(f.seeks)
}

// newTestSession builds a coordinator with no network endpoint, for
// exercising dispatch, reconciliation and sync handling directly.
func newTestSession(role Role, folder string, p *fakePlayer) *Session {
	return &Session{
		role:    role,
		folder:  folder,
		player:  p,
		list:    playlist.New(),
		missing: make(map[int]media.Entry),
		done:    make(chan struct{}),
	}
}
