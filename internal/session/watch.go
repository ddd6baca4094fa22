package session

import (
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/JOHNSONPCX/movie-sync/internal/logger"
	"github.com/JOHNSONPCX/movie-sync/internal/media"
	"github.com/JOHNSONPCX/movie-sync/internal/protocol"
)

// reloadDebounce coalesces the event bursts a single file copy
// produces into one playlist reload.
const reloadDebounce = 500 * time.Millisecond

// watchFolder makes the host pick up files added to or removed from the
// media folder while the session runs, re-announcing the playlist so
// clients re-reconcile without a restart.
func (s *Session) watchFolder() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(s.folder); err != nil {
		watcher.Close()
		return err
	}

	logger.Log.Info().Str("folder", s.folder).Msg("watching media folder")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer watcher.Close()

		var reload *time.Timer
		for {
			select {
			case <-s.done:
				if reload != nil {
					reload.Stop()
				}
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename|fsnotify.Write) == 0 {
					continue
				}
				if reload != nil {
					reload.Stop()
				}
				reload = time.AfterFunc(reloadDebounce, s.reloadPlaylist)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Log.Warn().Err(err).Msg("folder watch error")
			}
		}
	}()
	return nil
}

// reloadPlaylist rebuilds the host playlist wholesale from the folder
// and broadcasts the new announcement.
func (s *Session) reloadPlaylist() {
	entries, err := media.Load(s.folder)
	if err != nil {
		logger.Log.Error().Err(err).Msg("playlist reload failed")
		return
	}

	s.list.Replace(entries)
	logger.Log.Info().Int("entries", len(entries)).Msg("playlist reloaded from folder")

	s.server.Broadcast(protocol.PlaylistInfo{Type: protocol.TypePlaylistInfo, Playlist: entries})
}
