package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileRepository stores operators as an indented JSON array.
type FileRepository struct {
	path string
	mu   sync.Mutex
}

func NewFileRepository(path string) (*FileRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure dir: %w", err)
	}
	// Touch file if not exists
	f, err := os.OpenFile(path, os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("touch file: %w", err)
	}
	_ = f.Close()
	return &FileRepository{path: path}, nil
}

func (r *FileRepository) LoadAll() ([]Operator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

func (r *FileRepository) Upsert(op Operator) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ops, err := r.load()
	if err != nil {
		return err
	}
	for i, o := range ops {
		if o.ID == op.ID {
			ops[i] = op
			return r.save(ops)
		}
	}
	return r.save(append(ops, op))
}

func (r *FileRepository) Remove(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ops, err := r.load()
	if err != nil {
		return err
	}
	out := ops[:0]
	for _, o := range ops {
		if o.ID != id {
			out = append(out, o)
		}
	}
	return r.save(out)
}

// load treats an empty file as an empty list.
func (r *FileRepository) load() ([]Operator, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}
	if len(data) == 0 {
		return []Operator{}, nil
	}
	var ops []Operator
	if err := json.Unmarshal(data, &ops); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.path, err)
	}
	return ops, nil
}

func (r *FileRepository) save(ops []Operator) error {
	data, err := json.MarshalIndent(ops, "", "  ")
	if err != nil {
		return err
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	return os.Rename(tmp, r.path)
}
