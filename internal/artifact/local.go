// Package artifact owns the audio-artifact namespace keyed by output id.
// Every turn writes a distinct derived path, published atomically so a
// concurrent reader never observes a partial file.
package artifact

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when no artifact exists for the requested id.
var ErrNotFound = errors.New("artifact not found")

// Store persists and serves audio artifacts keyed by output id.
type Store interface {
	// Put writes the full audio stream for id, replacing any prior artifact
	// at the same id. It fails on a zero-byte stream and never leaves a
	// partial file visible. Returns the published size in bytes.
	Put(id string, r io.Reader) (int64, error)
	// Open returns a reader over the artifact for id, plus its size.
	Open(id string) (io.ReadCloser, int64, error)
}

// LocalStore keeps artifacts as reply_<id>.mp3 files under one directory.
type LocalStore struct {
	Dir string
}

// NewLocalStore creates the directory when missing.
func NewLocalStore(dir string) (*LocalStore, error) {
	if dir == "" {
		dir = "audio_out"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("artifact dir: %w", err)
	}
	return &LocalStore{Dir: dir}, nil
}

// FileName derives the stable artifact file name for an output id.
func FileName(id string) string {
	return "reply_" + id + ".mp3"
}

// validID rejects ids that could resolve outside the store directory.
func validID(id string) bool {
	if id == "" {
		return false
	}
	return !strings.ContainsAny(id, `/\`) && !strings.Contains(id, "..")
}

// Path returns the on-disk location for an output id. The mapping is stable,
// so any consumer that knows the id can re-derive it.
func (s *LocalStore) Path(id string) string {
	return filepath.Join(s.Dir, FileName(id))
}

func (s *LocalStore) Put(id string, r io.Reader) (int64, error) {
	if !validID(id) {
		return 0, fmt.Errorf("invalid artifact id %q", id)
	}
	final := s.Path(id)
	tmp, err := os.CreateTemp(s.Dir, FileName(id)+".tmp-*")
	if err != nil {
		return 0, fmt.Errorf("artifact temp file: %w", err)
	}
	tmpName := tmp.Name()

	n, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("artifact write: %w", err)
	}
	if n == 0 {
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("artifact for %s is empty", id)
	}
	// Rename publishes atomically and fully replaces any prior artifact.
	if err := os.Rename(tmpName, final); err != nil {
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("artifact publish: %w", err)
	}
	return n, nil
}

func (s *LocalStore) Open(id string) (io.ReadCloser, int64, error) {
	if !validID(id) {
		return nil, 0, ErrNotFound
	}
	f, err := os.Open(s.Path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, err
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, err
	}
	return f, fi.Size(), nil
}
