package project

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/gofrs/flock"
	nsiderr "github.com/terassyi/nsid/internal/errors"
)

const backupSuffix = ".bak"

// Store reads and writes one project file. Writers hold an exclusive lock
// on <file>.lock so two nsid processes never interleave saves.
type Store struct {
	path     string
	format   Format
	lockPath string
	fileLock *flock.Flock
	locked   bool
}

// NewStore creates a Store for the project file at path. The file need not
// exist yet.
func NewStore(path string) (*Store, error) {
	f, err := FormatOf(path)
	if err != nil {
		return nil, nsiderr.NewConfigError("cannot open project file", err).WithFile(path)
	}
	lockPath := path + ".lock"
	return &Store{
		path:     path,
		format:   f,
		lockPath: lockPath,
		fileLock: flock.New(lockPath),
	}, nil
}

// Path returns the project file path.
func (s *Store) Path() string {
	return s.path
}

// LockPath returns the path to the lock file.
func (s *Store) LockPath() string {
	return s.lockPath
}

// BackupPath returns the path of the copy kept before each save.
func (s *Store) BackupPath() string {
	return s.path + backupSuffix
}

// Lock acquires the exclusive lock and records our PID in the lock file.
func (s *Store) Lock() error {
	if s.locked {
		return nil
	}

	locked, err := s.fileLock.TryLock()
	if err != nil {
		return nsiderr.NewProjectLockError(s.lockPath).WithCause(err)
	}
	if !locked {
		lockErr := nsiderr.NewProjectLockError(s.lockPath)
		if pid, _ := s.readLockPID(); pid > 0 {
			lockErr.Base.Details = map[string]any{"pid": pid}
		}
		return lockErr
	}

	if err := os.WriteFile(s.lockPath, []byte(strconv.Itoa(os.Getpid())), 0644); err != nil {
		_ = s.fileLock.Unlock()
		return fmt.Errorf("failed to write PID to lock file: %w", err)
	}

	s.locked = true
	return nil
}

// Unlock releases the lock.
func (s *Store) Unlock() error {
	if !s.locked {
		return nil
	}
	if err := s.fileLock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	s.locked = false
	return nil
}

// Load reads the project file. It does not require the lock.
func (s *Store) Load() (*Spec, error) {
	return Load(s.path)
}

// Save backs up the current file and writes spec atomically in the
// store's format. Must be called after Lock().
func (s *Store) Save(spec *Spec) error {
	if !s.locked {
		return errors.New("must acquire lock before saving project")
	}

	data, err := spec.Marshal(s.format)
	if err != nil {
		return nsiderr.NewProjectError(spec.Name, "", "cannot encode project").WithCause(err)
	}

	if err := s.backup(); err != nil {
		return err
	}
	if err := writeAtomic(s.path, data); err != nil {
		return nsiderr.NewProjectError(spec.Name, "", "cannot save project").WithCause(err)
	}
	return nil
}

// LoadBackup reads the copy saved before the last write. Returns nil, nil
// if there is none.
func (s *Store) LoadBackup() (*Spec, error) {
	data, err := os.ReadFile(s.BackupPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read backup: %w", err)
	}
	return Parse(data, s.format, s.BackupPath())
}

func (s *Store) backup() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read project for backup: %w", err)
	}
	if err := writeAtomic(s.BackupPath(), data); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	return nil
}

func (s *Store) readLockPID() (int, error) {
	data, err := os.ReadFile(s.lockPath)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(string(data))
}

// writeAtomic writes data to a temp file next to path and renames it
// into place.
func writeAtomic(path string, data []byte) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
