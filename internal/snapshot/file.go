package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/josh-kwaku/grey-ledger/internal/domain"
	"github.com/josh-kwaku/grey-ledger/internal/logging"
)

const (
	fileModeData fs.FileMode = 0644
	fileModeDir  fs.FileMode = 0755
)

var errUnparseable = errors.New("unparseable snapshot file")

// FileStore is a small key/value file: a JSON object mapping each key to a
// ledger snapshot. Saves rewrite the file through a temp file and rename.
type FileStore struct {
	path string
	key  string
	mu   sync.Mutex
}

func NewFileStore(path, key string) *FileStore {
	return &FileStore{path: path, key: key}
}

func (f *FileStore) Load(_ context.Context) ([]domain.Transaction, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.readEntries()
	if err != nil {
		return nil, false, fmt.Errorf("Load: %w", err)
	}
	raw, ok := entries[f.key]
	if !ok {
		return nil, false, nil
	}
	txns, err := Decode(raw)
	if err != nil {
		return nil, false, fmt.Errorf("Load: key %q: %w", f.key, err)
	}
	return txns, true, nil
}

func (f *FileStore) Save(_ context.Context, txns []domain.Transaction) error {
	if err := f.write(txns, func(err error) error { return err }); err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	return nil
}

// Overwrite saves txns like Save, but a file that does not parse is replaced
// instead of failing. Entries stored under other keys in that file are lost.
func (f *FileStore) Overwrite(ctx context.Context, txns []domain.Transaction) error {
	err := f.write(txns, func(err error) error {
		logging.FromContext(ctx).Warn("replacing unparseable snapshot file", "path", f.path, "error", err)
		return nil
	})
	if err != nil {
		return fmt.Errorf("Overwrite: %w", err)
	}
	return nil
}

// write stores txns under f.key. onCorrupt decides whether a file that fails
// to parse aborts the write or is started over empty. Read errors always abort.
func (f *FileStore) write(txns []domain.Transaction, onCorrupt func(error) error) error {
	data, err := Encode(txns)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.readEntries()
	if errors.Is(err, errUnparseable) {
		if err := onCorrupt(err); err != nil {
			return err
		}
		entries = make(map[string]json.RawMessage)
	} else if err != nil {
		return err
	}
	entries[f.key] = data

	out, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return f.writeAtomic(out)
}

func (f *FileStore) readEntries() (map[string]json.RawMessage, error) {
	entries := make(map[string]json.RawMessage)

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return entries, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse %s: %w: %w", f.path, errUnparseable, err)
	}
	return entries, nil
}

func (f *FileStore) writeAtomic(data []byte) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, fileModeDir); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, fileModeData); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("rename to %s: %w", f.path, err)
	}
	return nil
}
