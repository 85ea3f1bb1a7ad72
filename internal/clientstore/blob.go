package clientstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Blob is one namespaced durable slot on local disk. Each component owns its
// whole blob: state is serialized in full on every save and rehydrated
// wholesale on startup.
type Blob struct {
	path string
}

// NewBlob returns the blob for a namespace inside dir, creating dir if needed.
func NewBlob(dir, namespace string) (*Blob, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &Blob{path: filepath.Join(dir, namespace+".json")}, nil
}

// Load rehydrates v from disk. A missing blob leaves v untouched and returns
// found=false.
func (b *Blob) Load(v any) (bool, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read state blob: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode state blob: %w", err)
	}
	return true, nil
}

// Save writes v as the blob's full contents. The write goes through a temp
// file and rename so a crash never leaves a half-written blob.
func (b *Blob) Save(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode state blob: %w", err)
	}
	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write state blob: %w", err)
	}
	if err := os.Rename(tmp, b.path); err != nil {
		return fmt.Errorf("replace state blob: %w", err)
	}
	return nil
}
