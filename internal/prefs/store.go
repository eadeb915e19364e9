package prefs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/pelletier/go-toml/v2"
)

const lockRetryDelay = 25 * time.Millisecond

// Store reads and writes the state file under an advisory lock so two
// recite processes do not interleave writes.
type Store struct {
	path string
	lock *flock.Flock
}

func NewStore(path string) *Store {
	return &Store{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

func (s *Store) Path() string {
	return s.path
}

// Load returns the stored prefs, or defaults when the file does not exist.
func (s *Store) Load(ctx context.Context) (Prefs, error) {
	if err := s.ensureDir(); err != nil {
		return Prefs{}, err
	}

	locked, err := s.lock.TryRLockContext(ctx, lockRetryDelay)
	if err != nil {
		return Prefs{}, fmt.Errorf("acquire state lock: %w", err)
	}
	if !locked {
		return Prefs{}, fmt.Errorf("state file is locked: %s", s.path)
	}
	defer s.lock.Unlock()

	return s.read()
}

// Update runs fn on the current prefs and writes the result, holding an
// exclusive lock for the whole read-modify-write.
func (s *Store) Update(ctx context.Context, fn func(*Prefs) error) (Prefs, error) {
	if err := s.ensureDir(); err != nil {
		return Prefs{}, err
	}

	locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return Prefs{}, fmt.Errorf("acquire state lock: %w", err)
	}
	if !locked {
		return Prefs{}, fmt.Errorf("state file is locked: %s", s.path)
	}
	defer s.lock.Unlock()

	p, err := s.read()
	if err != nil {
		return Prefs{}, err
	}
	if err := fn(&p); err != nil {
		return Prefs{}, err
	}
	p.normalize()

	if err := s.write(p); err != nil {
		return Prefs{}, err
	}
	return p, nil
}

func (s *Store) read() (Prefs, error) {
	p := Default()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return p, nil
		}
		return Prefs{}, fmt.Errorf("read state file: %w", err)
	}

	if err := toml.Unmarshal(data, &p); err != nil {
		return Prefs{}, fmt.Errorf("parse state file %s: %w", s.path, err)
	}
	p.normalize()
	return p, nil
}

// temp file plus rename, readers see the old or the new file
func (s *Store) write(p Prefs) error {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".state-*.toml")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close state file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

func (s *Store) ensureDir() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	return nil
}
