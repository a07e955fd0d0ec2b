package checkpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kilianp07/spotflux/core/model"
	"github.com/kilianp07/spotflux/infra/logger"
)

// Config defines where the checkpoint blob lives.
type Config struct {
	Path string `json:"path"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Path == "" {
		c.Path = "checkpoint.json"
	}
}

// FileStore persists the checkpoint as a single JSON file. The store is a dumb
// blob: no locking, single writer enforced by not overlapping runs.
type FileStore struct {
	path string
	log  logger.Logger
}

// NewFileStore creates a FileStore for the configured path.
func NewFileStore(cfg Config) *FileStore {
	cfg.SetDefaults()
	return &FileStore{path: cfg.Path, log: logger.New("checkpoint-store")}
}

// Read loads the previous checkpoint. A missing file means no run has
// completed yet and returns (nil, nil).
func (s *FileStore) Read(ctx context.Context) (*model.Checkpoint, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.log.Infof("no checkpoint at %s, assuming first run", s.path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read checkpoint %s: %w", s.path, err)
	}

	var cp model.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("unmarshal checkpoint %s: %w", s.path, err)
	}
	return &cp, nil
}

// Write replaces the checkpoint wholesale: marshal to a temp file in the same
// directory, then rename over the target so readers never see a torn blob.
func (s *FileStore) Write(ctx context.Context, cp model.Checkpoint) error {
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".checkpoint-*")
	if err != nil {
		return fmt.Errorf("create temp checkpoint: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write temp checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp checkpoint: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace checkpoint %s: %w", s.path, err)
	}
	return nil
}
