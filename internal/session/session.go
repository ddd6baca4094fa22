// Package session composes playlist, transport, protocol and clock
// synchronization into the coordinator both local commands and remote
// commands funnel through. The host owns ground-truth playback state
// and broadcasts it; clients mirror it.
package session

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/JOHNSONPCX/movie-sync/internal/logger"
	"github.com/JOHNSONPCX/movie-sync/internal/media"
	"github.com/JOHNSONPCX/movie-sync/internal/player"
	"github.com/JOHNSONPCX/movie-sync/internal/playlist"
	"github.com/JOHNSONPCX/movie-sync/internal/protocol"
	"github.com/JOHNSONPCX/movie-sync/internal/transport"
)

type Role int

const (
	RoleHost Role = iota
	RoleClient
)

func (r Role) String() string {
	if r == RoleHost {
		return "host"
	}
	return "client"
}

var (
	ErrEntryNotFound   = errors.New("entry not found")
	ErrFileUnavailable = errors.New("file unavailable")
	ErrNoPlaylist      = errors.New("playlist is empty")
)

const (
	defaultSyncInterval = 2 * time.Second
	defaultPingInterval = 5 * time.Second
)

type Config struct {
	Role   Role
	Folder string
	// Addr is the listen address for the host, the host address for a
	// client.
	Addr   string
	Player player.Player

	SyncInterval time.Duration
	PingInterval time.Duration
	// WatchFolder makes the host reload and re-announce the playlist
	// when the media folder changes.
	WatchFolder bool
}

// Session is the coordinator for one process's role in a playback
// session. All shared state lives behind its mutex; transport receive
// loops and the local command path both land here.
type Session struct {
	role   Role
	folder string
	player player.Player
	list   *playlist.Playlist

	server *transport.Server
	client *transport.Client

	mu      sync.Mutex
	shuffle bool
	missing map[int]media.Entry
	loaded  bool

	latencyMs  atomic.Int64
	pingSentMs atomic.Int64

	syncInterval time.Duration
	pingInterval time.Duration

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New builds a session, loads the local playlist, and brings up the
// role's network endpoint. A bind (host) or connect (client) failure is
// returned as-is: the process cannot proceed without its socket role.
func New(cfg Config) (*Session, error) {
	if cfg.Player == nil {
		return nil, errors.New("session requires a player")
	}
	if cfg.Folder == "" {
		return nil, errors.New("session requires a media folder")
	}
	if cfg.SyncInterval <= 0 {
		cfg.SyncInterval = defaultSyncInterval
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = defaultPingInterval
	}

	s := &Session{
		role:         cfg.Role,
		folder:       cfg.Folder,
		player:       cfg.Player,
		list:         playlist.New(),
		missing:      make(map[int]media.Entry),
		syncInterval: cfg.SyncInterval,
		pingInterval: cfg.PingInterval,
		done:         make(chan struct{}),
	}

	entries, err := media.Load(cfg.Folder)
	if err != nil {
		return nil, fmt.Errorf("loading media folder: %w", err)
	}
	s.list.Replace(entries)
	logger.Log.Info().Int("entries", len(entries)).Str("folder", cfg.Folder).Msg("local playlist loaded")

	switch cfg.Role {
	case RoleHost:
		s.server = transport.NewServer(s.handleMessage, s.announceTo)
		if err := s.server.Listen(cfg.Addr); err != nil {
			return nil, err
		}
		s.wg.Add(1)
		go s.syncLoop()
		if cfg.WatchFolder {
			if err := s.watchFolder(); err != nil {
				logger.Log.Warn().Err(err).Msg("folder watch unavailable")
			}
		}
	case RoleClient:
		s.client, err = transport.Dial(cfg.Addr, s.handleMessage, nil)
		if err != nil {
			return nil, err
		}
		s.wg.Add(1)
		go s.pingLoop()
	}

	s.wg.Add(1)
	go s.watchEndOfMedia()

	return s, nil
}

func (s *Session) Role() Role { return s.role }

// Addr reports the host's bound listen address.
func (s *Session) Addr() string {
	if s.server != nil {
		return s.server.Addr()
	}
	return ""
}

// Entries returns a snapshot of the playlist.
func (s *Session) Entries() []media.Entry { return s.list.Entries() }

// Missing returns the entries that could not be resolved locally,
// keyed by playlist index.
func (s *Session) Missing() map[int]media.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]media.Entry, len(s.missing))
	for k, v := range s.missing {
		out[k] = v
	}
	return out
}

func (s *Session) ShuffleEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shuffle
}

// PlayFile loads the entry at index and starts it. On the host the
// canonical post-effect position is broadcast so peers converge on
// ground truth rather than intent.
func (s *Session) PlayFile(index int) error {
	if err := s.verifyAndLoad(index); err != nil {
		return err
	}
	s.player.Play()

	if s.role == RoleHost {
		pos := s.player.PositionMs()
		s.server.Broadcast(protocol.PlayFile{Type: protocol.TypePlayFile, Index: index, Time: &pos})
	}
	return nil
}

// PlayCurrent resumes the loaded media, or starts the current entry
// (first entry if no cursor) when nothing is loaded yet.
func (s *Session) PlayCurrent() error {
	if !s.isLoaded() {
		index := s.list.CurrentIndex()
		if index < 0 {
			index = 0
		}
		return s.PlayFile(index)
	}

	s.player.Play()
	if s.role == RoleHost {
		pos := s.player.PositionMs()
		s.server.Broadcast(protocol.Play{Type: protocol.TypePlay, Time: &pos})
	}
	return nil
}

func (s *Session) Pause() {
	s.player.Pause()
	if s.role == RoleHost {
		s.server.Broadcast(protocol.Pause{Type: protocol.TypePause})
	}
}

func (s *Session) SeekMs(ms int64) {
	s.player.SetPositionMs(ms)
	if s.role == RoleHost {
		s.server.Broadcast(protocol.Seek{Type: protocol.TypeSeek, Time: s.player.PositionMs()})
	}
}

// Next advances the playlist. Under shuffle it picks a uniformly random
// index over the whole playlist; repeats are possible.
func (s *Session) Next() error {
	n := s.list.Len()
	if n == 0 {
		return ErrNoPlaylist
	}
	if s.ShuffleEnabled() {
		return s.PlayFile(rand.Intn(n))
	}
	entry, ok := s.list.Advance()
	if !ok {
		return ErrNoPlaylist
	}
	return s.PlayFile(entry.Index)
}

func (s *Session) Previous() error {
	entry, ok := s.list.Retreat()
	if !ok {
		return ErrNoPlaylist
	}
	return s.PlayFile(entry.Index)
}

// ToggleShuffle flips the flag on the host and broadcasts the new
// state; a client relays the request to the host.
func (s *Session) ToggleShuffle() {
	if s.role == RoleClient {
		if err := s.client.Send(protocol.ToggleShuffle{Type: protocol.TypeToggleShuffle}); err != nil {
			logger.Log.Warn().Err(err).Msg("shuffle request failed")
		}
		return
	}

	s.mu.Lock()
	s.shuffle = !s.shuffle
	enabled := s.shuffle
	s.mu.Unlock()

	logger.Log.Info().Bool("enabled", enabled).Msg("shuffle toggled")
	s.server.Broadcast(protocol.ShuffleState{Type: protocol.TypeShuffleState, Enabled: enabled})
}

// ForceSync emits one sync immediately (host) or asks the host for one
// (client).
func (s *Session) ForceSync() {
	if s.role == RoleHost {
		s.emitSync()
		return
	}
	if err := s.client.Send(protocol.RequestSync{Type: protocol.TypeRequestSync}); err != nil {
		logger.Log.Warn().Err(err).Msg("sync request failed")
	}
}

// verifyAndLoad is the safety gate in front of every selection change:
// the cursor and the loaded media only move when the entry exists in
// the playlist and its file exists on disk.
func (s *Session) verifyAndLoad(index int) error {
	entry, ok := s.list.At(index)
	if !ok {
		return fmt.Errorf("%w: index %d", ErrEntryNotFound, index)
	}

	if entry.LocalPath == "" || !fileExists(entry.LocalPath) {
		s.requestFile(index)
		return fmt.Errorf("%w: %s", ErrFileUnavailable, entry.Name)
	}

	s.list.SetCurrent(index)
	if err := s.player.Open(entry.LocalPath); err != nil {
		return fmt.Errorf("loading %s: %w", entry.Name, err)
	}
	s.setLoaded(true)
	return nil
}

func (s *Session) requestFile(index int) {
	if s.role != RoleClient || s.client == nil {
		return
	}
	if err := s.client.Send(protocol.RequestFile{Type: protocol.TypeRequestFile, Index: index}); err != nil {
		logger.Log.Warn().Err(err).Msg("file request failed")
	}
}

// announceTo sends the current playlist to a newly accepted peer so
// late joiners reconcile immediately.
func (s *Session) announceTo(p *transport.Peer) {
	s.server.Send(p, protocol.PlaylistInfo{Type: protocol.TypePlaylistInfo, Playlist: s.list.Entries()})

	s.mu.Lock()
	enabled := s.shuffle
	s.mu.Unlock()
	if enabled {
		s.server.Send(p, protocol.ShuffleState{Type: protocol.TypeShuffleState, Enabled: true})
	}
}

// watchEndOfMedia reacts to natural end of media on the coordinator's
// own goroutine. Only the host advances; clients wait for its command.
func (s *Session) watchEndOfMedia() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case <-s.player.EndOfMedia():
			if s.role != RoleHost {
				logger.Log.Debug().Msg("media finished, waiting for host")
				continue
			}
			logger.Log.Info().Msg("media finished, advancing")
			if err := s.Next(); err != nil {
				logger.Log.Warn().Err(err).Msg("auto-advance failed")
			}
		}
	}
}

func (s *Session) isLoaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

func (s *Session) setLoaded(v bool) {
	s.mu.Lock()
	s.loaded = v
	s.mu.Unlock()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Close shuts the session down: loops observe done or their socket
// closing within one poll interval, then the player stops.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.server != nil {
			s.server.Close()
		}
		if s.client != nil {
			s.client.Close()
		}
		s.player.Stop()
		s.wg.Wait()
	})
}
