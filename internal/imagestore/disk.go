package imagestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/2beens/gymlog/internal/telemetry/tracing"
	"github.com/2beens/gymlog/pkg"

	log "github.com/sirupsen/logrus"
)

var ErrInvalidKey = errors.New("invalid image key")

type DiskStore struct {
	rootPath string
}

func NewDiskStore(rootPath string) (*DiskStore, error) {
	if err := pkg.EnsureDir(rootPath); err != nil {
		return nil, fmt.Errorf("ensure images root [%s]: %w", rootPath, err)
	}
	log.Debugf("using disk image store at: %s", rootPath)
	return &DiskStore{rootPath: rootPath}, nil
}

func (s *DiskStore) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if key == "" || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrInvalidKey, key)
	}
	return filepath.Join(s.rootPath, clean), nil
}

// Save writes to a temp file first and renames it, so readers never see a partial image.
func (s *DiskStore) Save(ctx context.Context, key string, r io.Reader) (err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "imagestore.disk.save")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := pkg.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close image: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename image: %w", err)
	}
	return nil
}

func (s *DiskStore) Open(ctx context.Context, key string) (_ io.ReadCloser, err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "imagestore.disk.open")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open image: %w", err)
	}
	return f, nil
}

func (s *DiskStore) Exists(_ context.Context, key string) (bool, error) {
	path, err := s.path(key)
	if err != nil {
		return false, err
	}
	return pkg.PathExists(path, false)
}
