// Package player defines the media-engine capability the session
// consumes. The engine itself (VLC, mpv, ...) lives outside this module;
// anything that can open a file, report and set its position and rate,
// and signal end of media can drive a session.
package player

// Player is the playback capability consumed by the session coordinator.
type Player interface {
	// Open loads a local file without starting playback.
	Open(path string) error
	Play()
	Pause()
	Stop()
	IsPlaying() bool
	// PositionMs reports the current playback position in milliseconds.
	PositionMs() int64
	SetPositionMs(ms int64)
	// SetRate adjusts playback speed; 1.0 is nominal.
	SetRate(rate float64)
	// EndOfMedia delivers a signal when the loaded media finishes
	// naturally.
	EndOfMedia() <-chan struct{}
}
