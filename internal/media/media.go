// Package media stores uploaded post images and validates them.
package media

import (
	"bytes"
	"context"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path"
	"strings"

	"github.com/google/uuid"
)

// UploadDir is the path prefix every post image is stored under.
const UploadDir = "posts"

var ErrNotImage = errors.New("upload a valid image: the file you uploaded was either not an image or a corrupted image")

// Storage keeps uploaded files under relative paths such as "posts/a.gif".
type Storage interface {
	Save(ctx context.Context, name, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, rel string) error
	URL(rel string) string
}

// DetectImage checks that data decodes as an image and returns its format
// ("gif", "png" or "jpeg").
func DetectImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrNotImage
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", ErrNotImage
	}
	return format, nil
}

// cleanName reduces an uploaded filename to a safe base name.
func cleanName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		}
		return -1
	}, name)
	name = strings.TrimLeft(name, ".")
	if name == "" {
		name = "upload"
	}
	return name
}

// altName inserts a short random suffix before the extension, used when
// the plain name is already taken.
func altName(name string) string {
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return base + "_" + uuid.New().String()[:7] + ext
}
