// Package playlist holds the ordered media entries shared between host
// and clients, plus the playback cursor. Both the transport receive path
// and the local command path reach it concurrently, so every operation
// takes the playlist lock.
package playlist

import (
	"sync"

	"github.com/JOHNSONPCX/movie-sync/internal/media"
)

type Playlist struct {
	mu      sync.Mutex
	entries []media.Entry
	current int
}

func New() *Playlist {
	return &Playlist{current: -1}
}

func (p *Playlist) Append(e media.Entry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = append(p.entries, e)
}

// Replace rebuilds the playlist wholesale and resets the cursor. Old
// state is discarded, not merged.
func (p *Playlist) Replace(entries []media.Entry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = append([]media.Entry(nil), entries...)
	p.current = -1
}

func (p *Playlist) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// Entries returns a snapshot copy.
func (p *Playlist) Entries() []media.Entry {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]media.Entry(nil), p.entries...)
}

func (p *Playlist) At(index int) (media.Entry, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if index < 0 || index >= len(p.entries) {
		return media.Entry{}, false
	}
	return p.entries[index], true
}

func (p *Playlist) Current() (media.Entry, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current < 0 || p.current >= len(p.entries) {
		return media.Entry{}, false
	}
	return p.entries[p.current], true
}

func (p *Playlist) CurrentIndex() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// SetCurrent moves the cursor. Out-of-bounds indexes are rejected
// without mutation.
func (p *Playlist) SetCurrent(index int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if index < 0 || index >= len(p.entries) {
		return false
	}
	p.current = index
	return true
}

// Advance moves the cursor forward, wrapping at the end. On an empty
// playlist it is a no-op returning no entry.
func (p *Playlist) Advance() (media.Entry, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.entries) == 0 {
		return media.Entry{}, false
	}
	p.current = (p.current + 1) % len(p.entries)
	return p.entries[p.current], true
}

// Retreat moves the cursor backward, wrapping at the start.
func (p *Playlist) Retreat() (media.Entry, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.entries) == 0 {
		return media.Entry{}, false
	}
	p.current = ((p.current-1)%len(p.entries) + len(p.entries)) % len(p.entries)
	return p.entries[p.current], true
}
