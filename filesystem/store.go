// Package filesystem provides a local file system backend for keyfold.
// Keys map onto the directory tree: folder-marker keys (trailing "/")
// become real directories, and the one-level delimiter listing is a single
// directory read. Writes are atomic via temp files, with SHA256 etags.
package filesystem

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/keyfold/keyfold"
)

// Store implements keyfold.ObjectStore on a sandboxed directory tree.
//
// One contract divergence from the marker model: folder markers are real
// directories here, so deleting the marker of a non-empty folder fails
// instead of hiding the folder. The sqlite backend is the faithful one.
type Store struct {
	root *os.Root
}

// NewStore creates a Store rooted at root. The os.Root sandbox is what keeps
// opaque keys from escaping the tree; keys are never normalized here.
func NewStore(root *os.Root) *Store {
	return &Store{root: root}
}

// Get opens an object for reading. Returns keyfold.ErrNotFound if absent.
func (s *Store) Get(ctx context.Context, key string) (*keyfold.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if keyfold.IsFolderKey(key) {
		info, err := s.root.Stat(strings.TrimSuffix(key, "/"))
		if err != nil || !info.IsDir() {
			return nil, keyfold.ErrNotFound
		}
		return &keyfold.Object{
			Info: keyfold.ObjectInfo{Key: key, Uploaded: info.ModTime()},
			Body: io.NopCloser(strings.NewReader("")),
		}, nil
	}

	f, err := s.root.Open(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, keyfold.ErrNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, keyfold.ErrNotFound
	}

	return &keyfold.Object{
		Info: keyfold.ObjectInfo{
			Key:         key,
			Size:        info.Size(),
			ETag:        weakETag(info),
			ContentType: detectContentType(key),
			Uploaded:    info.ModTime(),
		},
		Body: f,
	}, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// Put atomically writes content to key using a temp file and rename,
// creating intermediate directories as needed. A folder-marker key creates
// the directory itself. The content stream is never buffered whole; the
// SHA256 etag is computed on the way through.
func (s *Store) Put(ctx context.Context, key, contentType string, content io.Reader) (keyfold.PutResult, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return keyfold.PutResult{}, ctxErr
	}

	if keyfold.IsFolderKey(key) {
		if err := s.root.MkdirAll(strings.TrimSuffix(key, "/"), 0o755); err != nil {
			return keyfold.PutResult{}, fmt.Errorf("could not create folder: %w", err)
		}
		return keyfold.PutResult{BytesWritten: 0, ETag: emptyETag()}, nil
	}

	tmpFile := tmpFileName()
	t, createErr := s.root.Create(tmpFile)
	if createErr != nil {
		return keyfold.PutResult{}, fmt.Errorf("could not open temp file: %w", createErr)
	}

	success := false
	defer func() {
		if closeErr := t.Close(); closeErr != nil {
			slog.Warn("failed to close tmp file", "err", closeErr)
		}
		if !success {
			if rmErr := s.root.Remove(t.Name()); rmErr != nil {
				slog.Warn("failed to remove tmp file", "err", rmErr)
			}
		}
	}()

	h := sha256.New()
	w := io.MultiWriter(h, t)

	bytesWritten, err := io.Copy(w, &ctxReader{ctx: ctx, r: content})
	if err != nil {
		return keyfold.PutResult{}, fmt.Errorf("could not copy file contents: %w", err)
	}

	err = t.Sync()
	if err != nil {
		return keyfold.PutResult{}, fmt.Errorf("could not sync written file: %w", err)
	}

	destDir := filepath.Dir(key)
	if destDir != "." {
		if err := s.root.MkdirAll(destDir, 0o755); err != nil {
			return keyfold.PutResult{}, fmt.Errorf("could not create intermediate directories: %w", err)
		}
	}

	if renameErr := s.root.Rename(tmpFile, key); renameErr != nil {
		return keyfold.PutResult{}, fmt.Errorf("failed to rename file: %w", renameErr)
	}

	etag := hex.EncodeToString(h.Sum(nil))
	success = true

	return keyfold.PutResult{BytesWritten: bytesWritten, ETag: etag}, nil
}

// Delete removes the object at key. A folder-marker key removes the
// directory, which only succeeds when it is empty. Returns
// keyfold.ErrNotFound if the key does not exist.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := key
	if keyfold.IsFolderKey(key) {
		target = strings.TrimSuffix(key, "/")
	}

	err := s.root.Remove(target)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return keyfold.ErrNotFound
		}
		return fmt.Errorf("could not delete file: %w", err)
	}
	return nil
}

// List returns the objects and sub-prefixes one level under prefix. With an
// empty delimiter it walks the whole tree and returns a flat listing. A
// prefix that maps to no directory lists as empty rather than failing.
func (s *Store) List(ctx context.Context, prefix, delimiter string) (keyfold.Listing, error) {
	if err := ctx.Err(); err != nil {
		return keyfold.Listing{}, err
	}

	if delimiter == "" {
		var listing keyfold.Listing
		if err := s.walkDir(ctx, strings.TrimSuffix(prefix, "/"), prefix, &listing.Objects); err != nil {
			return keyfold.Listing{}, fmt.Errorf("failed to list files: %w", err)
		}
		return listing, nil
	}

	dir := strings.TrimSuffix(prefix, "/")
	if dir == "" {
		dir = "."
	}

	dirEntries, err := fs.ReadDir(s.root.FS(), dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return keyfold.Listing{}, nil
		}
		return keyfold.Listing{}, fmt.Errorf("failed to list files: %w", err)
	}

	var listing keyfold.Listing
	for _, entry := range dirEntries {
		name := entry.Name()
		if isTmpFileName(name) {
			continue
		}

		if entry.IsDir() {
			listing.Prefixes = append(listing.Prefixes, prefix+name+"/")
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return keyfold.Listing{}, fmt.Errorf("failed to list files: %w", err)
		}

		listing.Objects = append(listing.Objects, keyfold.ObjectInfo{
			Key:         prefix + name,
			Size:        info.Size(),
			ETag:        weakETag(info),
			ContentType: detectContentType(name),
			Uploaded:    info.ModTime(),
		})
	}

	return listing, nil
}

func (s *Store) walkDir(ctx context.Context, dir, prefix string, objects *[]keyfold.ObjectInfo) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if dir == "" {
		dir = "."
	}

	dirEntries, err := fs.ReadDir(s.root.FS(), dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	for _, entry := range dirEntries {
		name := entry.Name()
		if isTmpFileName(name) {
			continue
		}

		if entry.IsDir() {
			if err := s.walkDir(ctx, filepath.Join(dir, name), prefix+name+"/", objects); err != nil {
				return err
			}
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return fmt.Errorf("walk dir: %w", err)
		}

		*objects = append(*objects, keyfold.ObjectInfo{
			Key:         prefix + name,
			Size:        info.Size(),
			ETag:        weakETag(info),
			ContentType: detectContentType(name),
			Uploaded:    info.ModTime(),
		})
	}

	return nil
}

func detectContentType(name string) string {
	ext := filepath.Ext(name)
	contentType := mime.TypeByExtension(ext)

	if contentType == "" {
		return "application/octet-stream"
	}

	return contentType
}

// weakETag derives a validator from file metadata. The content hash computed
// during Put is not persisted anywhere, so reads fall back to size+mtime.
func weakETag(info fs.FileInfo) string {
	return fmt.Sprintf("%x-%x", info.ModTime().UnixNano(), info.Size())
}

func emptyETag() string {
	h := sha256.Sum256(nil)
	return hex.EncodeToString(h[:])
}

func tmpFileName() string {
	return fmt.Sprintf(".t%s", uuid.New().String())
}

func isTmpFileName(name string) bool {
	return strings.HasPrefix(name, ".t")
}
