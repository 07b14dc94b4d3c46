package curriculum

import (
	"context"
	"ctlab_backend/internal/config"
	"ctlab_backend/internal/util"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Source opens a catalog document by name.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// NewSource picks the source for storage.type.
func NewSource(cfg *config.StorageConfig) (Source, error) {
	switch cfg.Type {
	case util.StorageMinio:
		return NewMinioSource(cfg)
	case util.StorageLocal, "":
		return &FileSource{Root: cfg.LocalPath}, nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// FileSource reads catalogs from disk. Relative names resolve against Root, falling back
// to the working directory.
type FileSource struct {
	Root string
}

func (s *FileSource) Open(_ context.Context, name string) (io.ReadCloser, error) {
	if filepath.IsAbs(name) || s.Root == "" {
		return os.Open(name)
	}
	f, err := os.Open(filepath.Join(s.Root, name))
	if os.IsNotExist(err) {
		return os.Open(name)
	}
	return f, err
}

// MinioSource reads catalogs from a MinIO bucket.
type MinioSource struct {
	Client *minio.Client
	Bucket string
}

func NewMinioSource(cfg *config.StorageConfig) (*MinioSource, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioSecure,
	})
	if err != nil {
		return nil, err
	}
	return &MinioSource{Client: client, Bucket: cfg.MinioBucket}, nil
}

func (s *MinioSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	// GetObject is lazy; stat first so a missing object fails here
	if _, err := s.Client.StatObject(ctx, s.Bucket, name, minio.StatObjectOptions{}); err != nil {
		return nil, fmt.Errorf("stat %s/%s: %w", s.Bucket, name, err)
	}
	return s.Client.GetObject(ctx, s.Bucket, name, minio.GetObjectOptions{})
}

// Decode picks the decoder from the name's extension.
func Decode(name string, r io.Reader) (*Catalog, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return DecodeYAML(r)
	case ".xlsx":
		return DecodeXLSX(r)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q, want one of %s", filepath.Ext(name), strings.Join(util.CatalogExtensions, ", "))
	}
}

// Load opens, decodes and validates the named catalog.
func Load(ctx context.Context, src Source, name string) (*Catalog, error) {
	rc, err := src.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	catalog, err := Decode(name, rc)
	if err != nil {
		return nil, err
	}
	catalog.Normalize()
	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", name, err)
	}
	return catalog, nil
}
