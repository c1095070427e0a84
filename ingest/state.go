// Package ingest implements the actor-based ingest/ID-allocation
// pipeline of spec §4.5: an importer per ingest lane, a singleton meta
// store handing out contiguous ID ranges, and archive/index pools that
// receive every stamped batch.
//
// Actors communicate over unbuffered typed-request channels — one
// mailbox channel per actor, carrying a request struct rather than an
// `interface{}` atom — the same preference the teacher expresses via
// event.Feed/TypeMux's typed subscription channels over untyped pub-sub.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sangminoh/vast/vasterr"
)

// State is the persisted (next, available) pair of spec §6: the next
// ID to stamp and how many IDs remain in the current allocation.
type State struct {
	Next      uint64
	Available uint64
}

const (
	nextFile      = "next"
	availableFile = "available"
)

// LoadState reads (next, available) from dir. A missing directory (or
// missing files within it) means a fresh start (0, 0); a present but
// unreadable or malformed file is a fatal filesystem error (spec §4.5
// "Restart").
func LoadState(dir string) (State, error) {
	next, err := readCounter(filepath.Join(dir, nextFile))
	if err != nil {
		return State{}, err
	}
	available, err := readCounter(filepath.Join(dir, availableFile))
	if err != nil {
		return State{}, err
	}
	return State{Next: next, Available: available}, nil
}

func readCounter(path string) (uint64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, &vasterr.FilesystemError{Path: path, Err: err}
	}
	text := strings.TrimSpace(string(data))
	n, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return 0, &vasterr.FilesystemError{Path: path, Err: fmt.Errorf("malformed counter %q: %w", text, err)}
	}
	return n, nil
}

// Save persists (next, available) to dir, creating it if necessary.
func (s State) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &vasterr.FilesystemError{Path: dir, Err: err}
	}
	if err := writeCounter(filepath.Join(dir, nextFile), s.Next); err != nil {
		return err
	}
	return writeCounter(filepath.Join(dir, availableFile), s.Available)
}

func writeCounter(path string, n uint64) error {
	if err := os.WriteFile(path, []byte(strconv.FormatUint(n, 10)+"\n"), 0o644); err != nil {
		return &vasterr.FilesystemError{Path: path, Err: err}
	}
	return nil
}
