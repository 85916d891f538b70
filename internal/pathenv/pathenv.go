// Package pathenv edits a persistent, semicolon-delimited PATH value one
// segment at a time.
//
// Edits are read-modify-write and are not atomic with respect to other
// writers of the same value.
package pathenv

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

const separator = ";"

var (
	ErrRead        = errors.New("read PATH")
	ErrWrite       = errors.New("write PATH")
	ErrUnsupported = errors.New("persistent PATH is not supported on this platform")
)

// Store reads and writes the persisted PATH value.
type Store interface {
	Read() (string, error)
	Write(value string) error
}

// Manager adds and removes single PATH segments.
type Manager struct {
	Store Store
}

func NewManager(s Store) *Manager {
	return &Manager{Store: s}
}

// Contains reports whether segment is one of the entries of value.
// Matching is exact and case-sensitive.
func Contains(value, segment string) bool {
	for _, s := range strings.Split(value, separator) {
		if s == segment {
			return true
		}
	}
	return false
}

// Has reports whether the stored PATH contains segment.
func (m *Manager) Has(segment string) (bool, error) {
	value, err := m.read()
	if err != nil {
		return false, err
	}
	return Contains(value, segment), nil
}

// Add appends segment when it is not already present. It reports whether the
// stored value changed.
func (m *Manager) Add(segment string) (bool, error) {
	value, err := m.read()
	if err != nil {
		return false, err
	}
	if Contains(value, segment) {
		return false, nil
	}

	next := segment
	if trimmed := strings.TrimRight(value, separator); trimmed != "" {
		next = trimmed + separator + segment
	}
	if err := m.write(next); err != nil {
		return false, err
	}
	return true, nil
}

// Remove drops every entry equal to segment. It reports whether the stored
// value changed; an absent segment leaves the store untouched.
func (m *Manager) Remove(segment string) (bool, error) {
	value, err := m.read()
	if err != nil {
		return false, err
	}
	if !Contains(value, segment) {
		return false, nil
	}

	parts := strings.Split(value, separator)
	kept := parts[:0]
	for _, p := range parts {
		if p != segment {
			kept = append(kept, p)
		}
	}
	if err := m.write(strings.Join(kept, separator)); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Manager) read() (string, error) {
	v, err := m.Store.Read()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRead, err)
	}
	return v, nil
}

func (m *Manager) write(v string) error {
	if err := m.Store.Write(v); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

// MemoryStore keeps the PATH value in memory. An unset store fails every
// Read until the first Write.
type MemoryStore struct {
	mu       sync.Mutex
	value    string
	unset    bool
	writes   int
	ReadErr  error
	WriteErr error
}

func NewMemoryStore(value string) *MemoryStore {
	return &MemoryStore{value: value}
}

// NewUnsetMemoryStore returns a store whose value does not exist.
func NewUnsetMemoryStore() *MemoryStore {
	return &MemoryStore{unset: true}
}

var errUnset = errors.New("value is not set")

func (s *MemoryStore) Read() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ReadErr != nil {
		return "", s.ReadErr
	}
	if s.unset {
		return "", errUnset
	}
	return s.value, nil
}

func (s *MemoryStore) Write(value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteErr != nil {
		return s.WriteErr
	}
	s.value = value
	s.unset = false
	s.writes++
	return nil
}

// Value returns the current value without going through Read.
func (s *MemoryStore) Value() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Writes returns how many successful writes the store has seen.
func (s *MemoryStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Unsupported is the Store used on platforms without a persistent per-user
// PATH.
type Unsupported struct{}

func (Unsupported) Read() (string, error) { return "", ErrUnsupported }
func (Unsupported) Write(string) error    { return ErrUnsupported }
