package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ovaphlow/pitchfork/service-user-registry/internal/user/entity"
)

// rename is swapped in tests to fail the final step of Save.
var rename = os.Rename

// FileStore keeps the collection as a pretty-printed JSON array on disk.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore { return &FileStore{path: path} }

// Path returns the document location.
func (s *FileStore) Path() string { return s.path }

// EnsureFile writes an empty array if the document does not exist yet.
func (s *FileStore) EnsureFile(ctx context.Context) error {
	_, err := os.Stat(s.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", s.path, err)
	}
	return s.Save(ctx, nil)
}

// Load reads the document. A missing file reads as an empty collection.
func (s *FileStore) Load(_ context.Context) ([]entity.User, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []entity.User{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	var users []entity.User
	if err := json.Unmarshal(b, &users); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	if users == nil {
		users = []entity.User{}
	}
	return users, nil
}

// Save writes the document to a temp file next to it and renames it into
// place, so readers see either the old or the new document.
func (s *FileStore) Save(_ context.Context, users []entity.User) error {
	b, err := encodeDocument(users)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", s.path, err)
	}
	tmpName := tmp.Name()
	// no-op once the rename succeeded
	defer os.Remove(tmpName)

	if _, err := tmp.Write(b); err != nil {
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
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

// encodeDocument renders users as a two-space indented array with a trailing
// newline. HTML escaping is off so the file stays readable.
func encodeDocument(users []entity.User) ([]byte, error) {
	if users == nil {
		users = []entity.User{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(users); err != nil {
		return nil, fmt.Errorf("encode users: %w", err)
	}
	return buf.Bytes(), nil
}
