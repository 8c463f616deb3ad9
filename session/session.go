package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"doccompare/exclusion"
	"doccompare/matcher"
)

// Version is the session file format version.
const Version = "1.0"

// Session holds the comparison state that can be saved and restored:
// which documents were compared, the matching result, the exclusion
// zones, and free-form notes.
type Session struct {
	ID                string                  `json:"id"`
	Version           string                  `json:"version"`
	LeftDocumentPath  string                  `json:"left_document_path"`
	RightDocumentPath string                  `json:"right_document_path"`
	MatchingResult    *matcher.MatchingResult `json:"matching_result,omitempty"`
	ExclusionZones    exclusion.ZoneSet       `json:"exclusion_zones"`
	CreatedAt         time.Time               `json:"created_at"`
	ModifiedAt        time.Time               `json:"modified_at"`
	Notes             string                  `json:"notes"`
}

// New creates an empty session.
func New() *Session {
	now := time.Now()
	return &Session{
		ID:         uuid.NewString(),
		Version:    Version,
		CreatedAt:  now,
		ModifiedAt: now,
	}
}

// HasDocuments reports whether both document paths are set.
func (s *Session) HasDocuments() bool {
	return s.LeftDocumentPath != "" && s.RightDocumentPath != ""
}

// Clear resets the session state, keeping its identity.
func (s *Session) Clear() {
	s.LeftDocumentPath = ""
	s.RightDocumentPath = ""
	s.MatchingResult = nil
	s.ExclusionZones = exclusion.ZoneSet{}
	s.Notes = ""
	s.ModifiedAt = time.Now()
}

// Save writes the session to a JSON file, creating parent directories
// as needed.
func (s *Session) Save(path string) error {
	s.ModifiedAt = time.Now()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot serialize session: %v", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("cannot create session directory: %v", err)
		}
	}

	return os.WriteFile(path, data, 0644)
}

// Load reads a session from a JSON file. Zone invariants are
// re-validated during decoding.
func Load(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("cannot parse session file: %w", err)
	}

	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Version == "" {
		s.Version = Version
	}

	return &s, nil
}
