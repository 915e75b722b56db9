// Package media stores uploaded images on local disk. Files are renamed
// to opaque UUIDs so client-supplied names never reach the filesystem.
package media

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrTooLarge        = errors.New("file exceeds the upload size limit")
	ErrUnsupportedType = errors.New("only JPEG, PNG and WebP images are accepted")
)

// Kind selects the subdirectory an upload lands in.
type Kind string

const (
	KindAvatar     Kind = "avatars"
	KindLogo       Kind = "logos"
	KindEventCover Kind = "covers"
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type Store struct {
	dir      string
	maxBytes int64
	logger   zerolog.Logger
}

func NewStore(dir string, maxBytes int64, logger zerolog.Logger) (*Store, error) {
	for _, kind := range []Kind{KindAvatar, KindLogo, KindEventCover} {
		if err := os.MkdirAll(filepath.Join(dir, string(kind)), 0o755); err != nil {
			return nil, fmt.Errorf("create uploads dir: %w", err)
		}
	}
	return &Store{
		dir:      dir,
		maxBytes: maxBytes,
		logger:   logger.With().Str("component", "media").Logger(),
	}, nil
}

// Dir returns the root directory uploads are written to, for static serving.
func (s *Store) Dir() string { return s.dir }

// Save sniffs the file's real content type, enforces the size limit and
// writes it under a fresh UUID name. It returns the public path relative
// to the static uploads mount.
func (s *Store) Save(file multipart.File, header *multipart.FileHeader, kind Kind) (string, error) {
	if header.Size > s.maxBytes {
		return "", ErrTooLarge
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	contentType := http.DetectContentType(head[:n])
	ext, ok := extensions[contentType]
	if !ok {
		return "", ErrUnsupportedType
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	name := uuid.New().String() + ext
	path := filepath.Join(s.dir, string(kind), name)
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, io.LimitReader(file, s.maxBytes+1))
	if err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write upload: %w", err)
	}
	if written > s.maxBytes {
		_ = os.Remove(path)
		return "", ErrTooLarge
	}

	s.logger.Info().
		Str("kind", string(kind)).
		Str("file", name).
		Int64("bytes", written).
		Msg("upload stored")
	return "/" + string(kind) + "/" + name, nil
}
