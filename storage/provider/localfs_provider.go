package provider

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/multierr"
)

// DefaultLocalFSBasePath directory used when no base path is configured
const DefaultLocalFSBasePath = "./meter-snapshots"

// LocalFSProvider stores objects as files below a base directory
type LocalFSProvider struct {
	basePath    string
	prefix      string
	createDirs  bool
	permissions fs.FileMode
}

// NewLocalFSProvider creates a new local filesystem storage provider
func NewLocalFSProvider(config *ProviderConfig) (*LocalFSProvider, error) {
	if config.Type != ProviderTypeLocalFS {
		return nil, fmt.Errorf("invalid provider type: %s, expected: %s", config.Type, ProviderTypeLocalFS)
	}

	basePath := DefaultLocalFSBasePath
	createDirs := true
	permissions := fs.FileMode(0755)

	if config.LocalFS != nil {
		if config.LocalFS.BasePath != "" {
			basePath = config.LocalFS.BasePath
		}
		createDirs = config.LocalFS.CreateDirs
		if config.LocalFS.Permissions != "" {
			perm, err := parseFileMode(config.LocalFS.Permissions)
			if err != nil {
				return nil, err
			}
			permissions = perm
		}
	}

	if createDirs {
		if err := os.MkdirAll(basePath, permissions); err != nil {
			return nil, fmt.Errorf("failed to create base directory %s: %w", basePath, err)
		}
	}

	return &LocalFSProvider{
		basePath:    basePath,
		prefix:      config.Prefix,
		createDirs:  createDirs,
		permissions: permissions,
	}, nil
}

// parseFileMode parses an octal permission string such as "0750"
func parseFileMode(perm string) (fs.FileMode, error) {
	if !strings.HasPrefix(perm, "0") || len(perm) < 2 {
		return 0, fmt.Errorf("unsupported permission format: %s", perm)
	}
	mode, err := strconv.ParseUint(perm, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid octal format: %s", perm)
	}
	return fs.FileMode(mode), nil
}

// fullPath maps an object path to a file below the base directory
func (l *LocalFSProvider) fullPath(path string) string {
	return filepath.Join(l.basePath, filepath.FromSlash(objectKey(l.prefix, path)))
}

// Upload implements ObjectStorageProvider interface
func (l *LocalFSProvider) Upload(ctx context.Context, path string, data io.Reader) error {
	fullPath := l.fullPath(path)

	if l.createDirs {
		dir := filepath.Dir(fullPath)
		if err := os.MkdirAll(dir, l.permissions); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	// Write to a temporary file first so readers never observe a partial object.
	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", fullPath, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	_, err = io.Copy(tmp, data)
	if err = multierr.Append(err, tmp.Close()); err != nil {
		return fmt.Errorf("failed to write data to file %s: %w", fullPath, err)
	}
	if err := os.Chmod(tmpName, l.permissions&0666); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", fullPath, err)
	}
	if err := os.Rename(tmpName, fullPath); err != nil {
		return fmt.Errorf("failed to move file into place %s: %w", fullPath, err)
	}
	return nil
}

// Download implements ObjectStorageProvider interface
func (l *LocalFSProvider) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	fullPath := l.fullPath(path)

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to open file %s: %w", fullPath, err)
	}
	return file, nil
}

// Delete implements ObjectStorageProvider interface
func (l *LocalFSProvider) Delete(ctx context.Context, path string) error {
	fullPath := l.fullPath(path)

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete file %s: %w", fullPath, err)
	}
	return nil
}

// Exists implements ObjectStorageProvider interface
func (l *LocalFSProvider) Exists(ctx context.Context, path string) (bool, error) {
	fullPath := l.fullPath(path)

	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check file existence %s: %w", fullPath, err)
	}
	return true, nil
}

// List implements ObjectStorageProvider interface.
// Returned keys use forward slashes and are relative to the provider prefix.
func (l *LocalFSProvider) List(ctx context.Context, prefix string) ([]string, error) {
	root := l.basePath
	if l.prefix != "" {
		root = filepath.Join(l.basePath, filepath.FromSlash(strings.Trim(l.prefix, "/")))
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == root {
				return filepath.SkipDir
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".upload-") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			files = append(files, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files with prefix %s: %w", prefix, err)
	}
	return files, nil
}
