package baseline

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fentz26/prochunt/internal/models"
)

// Repository holds at most one baseline snapshot.
type Repository interface {
	// Load returns the stored snapshot, or nil with no error when none exists.
	Load() (*models.BaselineSnapshot, error)
	// Store replaces any existing snapshot.
	Store(snap models.BaselineSnapshot) error
}

// FileRepository keeps the snapshot as indented JSON at a single path.
type FileRepository struct {
	path string
}

// NewFileRepository creates a repository backed by path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

// Path returns the backing file.
func (r *FileRepository) Path() string {
	return r.path
}

// Load reads the snapshot file.
func (r *FileRepository) Load() (*models.BaselineSnapshot, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read baseline: %w", err)
	}

	var snap models.BaselineSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse baseline %s: %w", r.path, err)
	}
	return &snap, nil
}

// Store overwrites the snapshot file, creating parent directories.
func (r *FileRepository) Store(snap models.BaselineSnapshot) error {
	if dir := filepath.Dir(r.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create baseline directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode baseline: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write baseline: %w", err)
	}
	return nil
}

// MemoryRepository is an in-process Repository.
type MemoryRepository struct {
	snap *models.BaselineSnapshot
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Load returns a copy of the stored snapshot.
func (r *MemoryRepository) Load() (*models.BaselineSnapshot, error) {
	if r.snap == nil {
		return nil, nil
	}
	cp := *r.snap
	return &cp, nil
}

// Store replaces the stored snapshot.
func (r *MemoryRepository) Store(snap models.BaselineSnapshot) error {
	r.snap = &snap
	return nil
}
