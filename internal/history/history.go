package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const HistoryDir = ".remote-sync"
const HistoryFile = "history.json"

// MaxEntries caps the file; oldest runs are dropped first.
const MaxEntries = 200

type HistoryEntry struct {
	ID        string    `json:"id"`
	LocalPath string    `json:"local_path"`
	Host      string    `json:"host"`
	Pull      bool      `json:"pull"`
	NoPerms   bool      `json:"no_perms,omitempty"`
	Failed    bool      `json:"failed,omitempty"`
	LastRun   time.Time `json:"last_run"`
}

// Direction renders the transfer direction for listings.
func (e HistoryEntry) Direction() string {
	if e.Pull {
		return "pull"
	}
	return "push"
}

// sameTarget reports whether two entries describe the same transfer.
func (e HistoryEntry) sameTarget(o HistoryEntry) bool {
	return e.LocalPath == o.LocalPath && e.Host == o.Host && e.Pull == o.Pull
}

type History struct {
	Entries []HistoryEntry `json:"entries"`
}

// Store reads and writes one history file.
type Store struct {
	Path string
	now  func() time.Time
}

func GetHistoryDir(home string) string {
	return filepath.Join(home, HistoryDir)
}

func GetHistoryPath(home string) string {
	return filepath.Join(GetHistoryDir(home), HistoryFile)
}

// NewStore returns the store under home.
func NewStore(home string) *Store {
	return &Store{Path: GetHistoryPath(home), now: time.Now}
}

func (s *Store) Load() (*History, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return &History{Entries: []HistoryEntry{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	var h History
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("parse history %s: %w", s.Path, err)
	}
	return &h, nil
}

func (s *Store) Save(h *History) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.Path, data, 0644)
}

// Add records a run. A run against the same path, host and direction
// replaces the earlier entry. The stored entry is returned.
func (s *Store) Add(e HistoryEntry) (HistoryEntry, error) {
	h, err := s.Load()
	if err != nil {
		return HistoryEntry{}, err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.LastRun.IsZero() {
		e.LastRun = s.now()
	}

	kept := h.Entries[:0]
	for _, old := range h.Entries {
		if !old.sameTarget(e) {
			kept = append(kept, old)
		}
	}
	h.Entries = append(kept, e)
	sortRecent(h.Entries)
	if len(h.Entries) > MaxEntries {
		h.Entries = h.Entries[:MaxEntries]
	}
	return e, s.Save(h)
}

// Remove deletes the entry with the given id (or unique id prefix).
func (s *Store) Remove(id string) error {
	h, err := s.Load()
	if err != nil {
		return err
	}
	idx, err := find(h.Entries, id)
	if err != nil {
		return err
	}
	h.Entries = append(h.Entries[:idx], h.Entries[idx+1:]...)
	return s.Save(h)
}

// Get looks up an entry by id or unique id prefix.
func (s *Store) Get(id string) (HistoryEntry, error) {
	h, err := s.Load()
	if err != nil {
		return HistoryEntry{}, err
	}
	idx, err := find(h.Entries, id)
	if err != nil {
		return HistoryEntry{}, err
	}
	return h.Entries[idx], nil
}

// Recent returns up to limit entries, most recent first. limit <= 0 means all.
func (s *Store) Recent(limit int) ([]HistoryEntry, error) {
	h, err := s.Load()
	if err != nil {
		return nil, err
	}
	sortRecent(h.Entries)
	if limit > 0 && len(h.Entries) > limit {
		h.Entries = h.Entries[:limit]
	}
	return h.Entries, nil
}

// Search returns entries whose path or host contains query, case-insensitively.
func (s *Store) Search(query string) ([]HistoryEntry, error) {
	all, err := s.Recent(0)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	var results []HistoryEntry
	for _, e := range all {
		if strings.Contains(strings.ToLower(e.LocalPath), q) || strings.Contains(strings.ToLower(e.Host), q) {
			results = append(results, e)
		}
	}
	return results, nil
}

func sortRecent(entries []HistoryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].LastRun.After(entries[j].LastRun)
	})
}

func find(entries []HistoryEntry, id string) (int, error) {
	if id == "" {
		return -1, fmt.Errorf("history entry id is empty")
	}
	match := -1
	for i, e := range entries {
		if e.ID == id {
			return i, nil
		}
		if strings.HasPrefix(e.ID, id) {
			if match >= 0 {
				return -1, fmt.Errorf("history id %q is ambiguous", id)
			}
			match = i
		}
	}
	if match < 0 {
		return -1, fmt.Errorf("no history entry %q", id)
	}
	return match, nil
}
