package media

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// Local keeps media files on disk under Root and serves them from BaseURL.
type Local struct {
	Root    string
	BaseURL string
}

func NewLocal(root, baseURL string) *Local {
	if baseURL == "" {
		baseURL = "/media/"
	}
	return &Local{Root: root, BaseURL: baseURL}
}

func (l *Local) Save(_ context.Context, name, _ string, data []byte) (string, error) {
	dir := filepath.Join(l.Root, UploadDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("media dir: %w", err)
	}

	name = cleanName(name)
	for i := 0; i < 5; i++ {
		f, err := os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			name = altName(cleanName(name))
			continue
		}
		if err != nil {
			return "", err
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			return "", err
		}
		if err := f.Close(); err != nil {
			return "", err
		}
		return path.Join(UploadDir, name), nil
	}
	return "", fmt.Errorf("no free file name for %q", name)
}

func (l *Local) Delete(_ context.Context, rel string) error {
	err := os.Remove(filepath.Join(l.Root, filepath.FromSlash(rel)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (l *Local) URL(rel string) string {
	if rel == "" {
		return ""
	}
	return l.BaseURL + rel
}
