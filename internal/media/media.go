package media

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/JOHNSONPCX/movie-sync/internal/logger"
)

// Entry identifies one media file. Across the network an entry is
// identified by (Name, Size, Hash); Index is the ordering key shared by
// host and clients. LocalPath is node-local and never crosses the wire;
// it is empty when the entry could not be resolved to a local file.
type Entry struct {
	LocalPath string `json:"-"`
	Name      string `json:"name"`
	Size      int64  `json:"size"`
	Hash      string `json:"hash"`
	Index     int    `json:"index"`
}

var extensions = map[string]bool{
	".mp4": true, ".avi": true, ".mkv": true, ".mov": true, ".wmv": true,
	".flv": true, ".mp3": true, ".wav": true, ".flac": true, ".m4a": true,
	".aac": true, ".webm": true, ".ogg": true,
}

type cacheEntry struct {
	size    int64
	modTime int64
	hash    string
}

var (
	cacheMu sync.RWMutex
	cache   = make(map[string]cacheEntry)
)

// Fingerprint returns the hex SHA-256 digest of the file's content.
// Results are cached by size and mtime since reconciliation re-scans
// the folder on every playlist announcement.
func Fingerprint(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	cacheMu.RLock()
	entry, ok := cache[path]
	cacheMu.RUnlock()

	if ok && entry.size == info.Size() && entry.modTime == info.ModTime().Unix() {
		return entry.hash, nil
	}

	hash, err := hashFile(path)
	if err != nil {
		return "", err
	}

	cacheMu.Lock()
	cache[path] = cacheEntry{
		size:    info.Size(),
		modTime: info.ModTime().Unix(),
		hash:    hash,
	}
	cacheMu.Unlock()

	return hash, nil
}

func hashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// Describe builds the Entry for one local file at the given playlist index.
func Describe(path string, index int) (Entry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Entry{}, err
	}

	hash, err := Fingerprint(path)
	if err != nil {
		return Entry{}, err
	}

	return Entry{
		LocalPath: path,
		Name:      filepath.Base(path),
		Size:      info.Size(),
		Hash:      hash,
		Index:     index,
	}, nil
}

// Scan lists the media files directly inside dir, in lexicographic order.
func Scan(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if extensions[strings.ToLower(filepath.Ext(e.Name()))] {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return paths, nil
}

// Load scans dir and fingerprints every media file, assigning contiguous
// playlist indexes from 0 in scan order. Unreadable files are skipped.
func Load(dir string) ([]Entry, error) {
	paths, err := Scan(dir)
	if err != nil {
		return nil, err
	}

	var list []Entry
	for _, path := range paths {
		entry, err := Describe(path, len(list))
		if err != nil {
			logger.Log.Warn().Err(err).Str("path", path).Msg("skipping unreadable media file")
			continue
		}
		list = append(list, entry)
	}
	return list, nil
}
