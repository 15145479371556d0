package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/mgkim1976-spec/research-based-wm/internal/types"
)

// FileStore keeps the report history in a single JSON file. The whole file
// is rewritten on append, under a mutex, so concurrent appends from the
// refresher and a routine run cannot interleave.
type FileStore struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

// NewFileStore creates a store at path, creating the parent directory if
// needed.
func NewFileStore(path string, logger *zap.Logger) (*FileStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileStore{path: path, logger: logger}, nil
}

// AppendNew merges reports into the file, skipping ids already present, and
// returns the number inserted.
func (s *FileStore) AppendNew(ctx context.Context, reports []*types.ResearchReport) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.loadLocked()
	existingIDs := make(map[string]struct{}, len(existing))
	for _, r := range existing {
		existingIDs[r.ReportID] = struct{}{}
	}

	inserted := 0
	for _, r := range reports {
		if _, ok := existingIDs[r.ReportID]; ok {
			continue
		}
		existing = append(existing, r)
		existingIDs[r.ReportID] = struct{}{}
		inserted++
	}

	sort.SliceStable(existing, func(i, j int) bool {
		return existing[i].Date.After(existing[j].Date)
	})

	data, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("failed to marshal report store: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return 0, fmt.Errorf("failed to write report store: %w", err)
	}

	return inserted, nil
}

// LoadAll returns every stored report, newest first.
func (s *FileStore) LoadAll(ctx context.Context) ([]*types.ResearchReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(), nil
}

// loadLocked reads the file, treating absence and corruption as an empty
// store. The caller must hold the mutex.
func (s *FileStore) loadLocked() []*types.ResearchReport {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("failed to read report store, treating as empty",
				zap.String("path", s.path), zap.Error(err))
		}
		return []*types.ResearchReport{}
	}

	var reports []*types.ResearchReport
	if err := json.Unmarshal(data, &reports); err != nil {
		s.logger.Warn("report store is corrupt, treating as empty",
			zap.String("path", s.path), zap.Error(err))
		return []*types.ResearchReport{}
	}
	return reports
}
