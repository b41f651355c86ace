package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/agentdesk/internal/common"
)

// FileAdapter persists the snapshot as a single JSON document on disk.
// Writes go through a temp file followed by rename so a crash mid-write
// leaves the previous snapshot intact.
//
// Unknown fields in the file are ignored on load; encoding/json leaves them
// out of the decoded snapshot without error, and the known data round-trips
// exactly.
type FileAdapter struct {
	path string
}

func NewFileAdapter(path string) (*FileAdapter, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return nil, fmt.Errorf("%w: mkdir %s: %v", common.ErrStorage, dir, err)
	}
	return &FileAdapter{path: path}, nil
}

func (a *FileAdapter) Save(ctx context.Context, s Snapshot) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal snapshot: %v", common.ErrStorage, err)
	}

	tmp := a.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o660); err != nil {
		return fmt.Errorf("%w: write %s: %v", common.ErrStorage, tmp, err)
	}
	if err := os.Rename(tmp, a.path); err != nil {
		return fmt.Errorf("%w: rename %s: %v", common.ErrStorage, a.path, err)
	}
	return nil
}

func (a *FileAdapter) Load(ctx context.Context) (Snapshot, bool, error) {
	data, err := os.ReadFile(a.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, fmt.Errorf("%w: read %s: %v", common.ErrStorage, a.path, err)
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, false, fmt.Errorf("%w: unmarshal %s: %v", common.ErrStorage, a.path, err)
	}
	return s, true, nil
}
