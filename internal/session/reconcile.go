package session

import (
	"github.com/JOHNSONPCX/movie-sync/internal/logger"
	"github.com/JOHNSONPCX/movie-sync/internal/media"
)

// reconcile rebuilds the playlist from a host announcement, matching
// every announced entry to a local file by content hash. Unmatched
// entries keep their place in the order with an empty local path and
// are recorded as missing; playback state is left untouched.
func (s *Session) reconcile(announced []media.Entry) {
	byHash := s.localHashIndex()

	rebuilt := make([]media.Entry, 0, len(announced))
	missing := make(map[int]media.Entry)

	for _, entry := range announced {
		entry.LocalPath = byHash[entry.Hash]
		rebuilt = append(rebuilt, entry)
		if entry.LocalPath == "" {
			missing[entry.Index] = entry
			logger.Log.Warn().Str("name", entry.Name).Int("index", entry.Index).
				Msg("announced file not found locally")
		}
	}

	s.list.Replace(rebuilt)

	s.mu.Lock()
	s.missing = missing
	s.mu.Unlock()

	logger.Log.Info().Int("entries", len(rebuilt)).Int("missing", len(missing)).
		Msg("playlist reconciled")
}

// localHashIndex fingerprints the media folder into hash → path. Scan
// order is lexicographic, and the first file with a given hash wins,
// so matching is reproducible.
func (s *Session) localHashIndex() map[string]string {
	byHash := make(map[string]string)

	paths, err := media.Scan(s.folder)
	if err != nil {
		logger.Log.Error().Err(err).Str("folder", s.folder).Msg("media folder scan failed")
		return byHash
	}

	for _, path := range paths {
		hash, err := media.Fingerprint(path)
		if err != nil {
			logger.Log.Warn().Err(err).Str("path", path).Msg("skipping unreadable media file")
			continue
		}
		if _, taken := byHash[hash]; !taken {
			byHash[hash] = path
		}
	}
	return byHash
}
