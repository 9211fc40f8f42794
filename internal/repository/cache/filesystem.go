package cache

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/jaennil/guide_helper/backend/offline/internal/resource"
	"github.com/jaennil/guide_helper/backend/offline/pkg/logger"
)

// expiresHeaderSize prefixes every file: expiry as unix nanoseconds, 0 for never.
const expiresHeaderSize = 8

var errCorruptEntry = errors.New("corrupt cache file")

// FilesystemCache stores one file per resource.
// Structure: {root}/{kind}/{digest[:2]}/{digest}
type FilesystemCache struct {
	root   string
	logger logger.Logger
}

func NewFilesystemCache(root string, l logger.Logger) (*FilesystemCache, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	l.Info("filesystem cache initialized", "root", root)

	return &FilesystemCache{
		root:   root,
		logger: l,
	}, nil
}

var _ ResourceCache = (*FilesystemCache)(nil)

func (c *FilesystemCache) Get(_ context.Context, k resource.Key) (Entry, bool, error) {
	content, err := os.ReadFile(c.keyToPath(k))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Entry{}, false, nil
		}
		return Entry{}, false, err
	}

	if len(content) < expiresHeaderSize {
		c.logger.Warn("filesystem cache file truncated", "key", k.String())
		return Entry{}, false, errCorruptEntry
	}

	e := Entry{Data: content[expiresHeaderSize:]}
	if ns := int64(binary.BigEndian.Uint64(content[:expiresHeaderSize])); ns != 0 {
		e.Expires = time.Unix(0, ns)
	}

	return e, true, nil
}

func (c *FilesystemCache) Set(_ context.Context, k resource.Key, v Entry) error {
	path := c.keyToPath(k)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	var ns int64
	if !v.Expires.IsZero() {
		ns = v.Expires.UnixNano()
	}

	content := make([]byte, expiresHeaderSize, expiresHeaderSize+len(v.Data))
	binary.BigEndian.PutUint64(content, uint64(ns))
	content = append(content, v.Data...)

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}

	return nil
}

func (c *FilesystemCache) Clear(_ context.Context) error {
	if err := os.RemoveAll(c.root); err != nil {
		return err
	}
	return os.MkdirAll(c.root, 0755)
}

func (c *FilesystemCache) keyToPath(k resource.Key) string {
	digest := k.Digest()
	return filepath.Join(c.root, k.Kind.String(), digest[:2], digest)
}
