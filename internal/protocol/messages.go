// Package protocol defines the wire-level command set. Every message is
// one flat JSON object carrying a "type" discriminator, framed by a
// trailing newline on the stream.
package protocol

import "github.com/JOHNSONPCX/movie-sync/internal/media"

const (
	TypePlaylistInfo    = "playlist_info"
	TypePlayFile        = "play_file"
	TypePlay            = "play"
	TypePause           = "pause"
	TypeSeek            = "seek"
	TypeSync            = "sync"
	TypeRequestSync     = "request_sync"
	TypeToggleShuffle   = "toggle_shuffle"
	TypeShuffleState    = "shuffle_state"
	TypePing            = "ping"
	TypePong            = "pong"
	TypeRequestFile     = "request_file"
	TypeFileUnsupported = "file_unsupported"
)

// Message is the closed set of wire commands. Decode only ever returns
// one of the concrete types below.
type Message interface {
	message()
}

// PlaylistInfo announces the host's full playlist to a client, which
// rebuilds its own playlist by hash reconciliation.
type PlaylistInfo struct {
	Type     string        `json:"type"`
	Playlist []media.Entry `json:"playlist"`
}

// PlayFile selects a playlist entry and starts it, optionally at a
// position.
type PlayFile struct {
	Type  string `json:"type"`
	Index int    `json:"index"`
	Time  *int64 `json:"time,omitempty"`
}

// Play starts or resumes playback, optionally seeking first.
type Play struct {
	Type string `json:"type"`
	Time *int64 `json:"time,omitempty"`
}

type Pause struct {
	Type string `json:"type"`
}

// Seek sets the playback position in milliseconds.
type Seek struct {
	Type string `json:"type"`
	Time int64  `json:"time"`
}

// Sync carries the host playback position and the host wall clock (ms
// since epoch) captured at the same instant.
type Sync struct {
	Type     string `json:"type"`
	Time     int64  `json:"time"`
	SyncTime int64  `json:"sync_time"`
}

// RequestSync asks the host to emit one Sync immediately.
type RequestSync struct {
	Type string `json:"type"`
}

// ToggleShuffle asks the host to flip the shuffle flag.
type ToggleShuffle struct {
	Type string `json:"type"`
}

// ShuffleState broadcasts the host's shuffle flag.
type ShuffleState struct {
	Type    string `json:"type"`
	Enabled bool   `json:"enabled"`
}

type Ping struct {
	Type string `json:"type"`
}

type Pong struct {
	Type string `json:"type"`
}

// RequestFile asks the host for a missing file by playlist index.
type RequestFile struct {
	Type  string `json:"type"`
	Index int    `json:"index"`
}

// FileUnsupported is the host's explicit answer to RequestFile: file
// transfer is not supported, the client should not wait for the file.
type FileUnsupported struct {
	Type  string `json:"type"`
	Index int    `json:"index"`
}

func (PlaylistInfo) message()    {}
func (PlayFile) message()        {}
func (Play) message()            {}
func (Pause) message()           {}
func (Seek) message()            {}
func (Sync) message()            {}
func (RequestSync) message()     {}
func (ToggleShuffle) message()   {}
func (ShuffleState) message()    {}
func (Ping) message()            {}
func (Pong) message()            {}
func (RequestFile) message()     {}
func (FileUnsupported) message() {}
