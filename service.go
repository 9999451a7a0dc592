package keyfold

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ObjectStore defines the flat key->bytes store the virtual directory layer
// runs on. Keys are opaque strings; slashes carry no meaning to the store.
//
// All methods accept a context for cancellation and timeout control.
type ObjectStore interface {
	// Put stores content under key, overwriting any existing object.
	// Implementations must stream content rather than buffering it whole,
	// write atomically where possible, and compute a content-hash ETag.
	// A key ending in "/" with empty content is a folder marker.
	Put(ctx context.Context, key, contentType string, content io.Reader) (PutResult, error)

	// Get fetches an object by exact key. Returns ErrNotFound if absent.
	// The caller must close the returned Object's Body.
	Get(ctx context.Context, key string) (*Object, error)

	// Delete removes exactly the object at key, never descendants.
	// Returns ErrNotFound if absent.
	Delete(ctx context.Context, key string) error

	// List returns objects directly under prefix plus one-level sub-prefixes,
	// split on delimiter. An empty delimiter means a flat recursive listing.
	List(ctx context.Context, prefix, delimiter string) (Listing, error)
}

// Service is the virtual directory emulation layer: it maps the flat key
// space onto folder/file semantics. It is stateless and request-scoped; every
// call reads or writes the store live.
type Service struct {
	store ObjectStore
}

func NewService(store ObjectStore) *Service {
	return &Service{store: store}
}

// List produces a merged, typed view of the immediate children of a logical
// directory. Objects become file entries, one-level sub-prefixes become
// folder entries. No ordering is guaranteed; consumers sort client-side.
func (s *Service) List(ctx context.Context, dir string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}

	prefix := CleanDir(dir)

	listing, err := s.store.List(ctx, prefix, "/")
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", prefix, err)
	}

	entries := make([]Entry, 0, len(listing.Objects)+len(listing.Prefixes))

	for _, obj := range listing.Objects {
		name := DisplayName(obj.Key, prefix)
		if name == "" {
			// The folder marker at prefix itself is not its own child.
			continue
		}
		uploaded := obj.Uploaded
		entries = append(entries, Entry{
			Name:     name,
			Path:     obj.Key,
			Size:     obj.Size,
			Type:     EntryFile,
			Uploaded: &uploaded,
		})
	}

	for _, sub := range listing.Prefixes {
		entries = append(entries, Entry{
			Name: FolderName(sub, prefix),
			Path: sub,
			Type: EntryFolder,
		})
	}

	return entries, nil
}

// Upload streams content into the store under key. The body is handed
// straight to the store's write primitive and is never materialized in
// memory. Overwrites are last-writer-wins; there is no conflict detection.
func (s *Service) Upload(ctx context.Context, key, contentType string, content io.Reader) (PutResult, error) {
	if err := ctx.Err(); err != nil {
		return PutResult{}, fmt.Errorf("upload: %w", err)
	}

	if key == "" {
		return PutResult{}, fmt.Errorf("upload: %w: path is required", ErrInvalidInput)
	}

	res, err := s.store.Put(ctx, key, contentType, content)
	if err != nil {
		return PutResult{}, fmt.Errorf("upload %q: %w", key, err)
	}

	return res, nil
}

// CreateFolder writes a zero-byte marker object at key so an otherwise-empty
// folder shows up in listings. Keys end in "/" by convention; the convention
// is not enforced. Repeated calls overwrite the same marker, so the
// operation is idempotent.
func (s *Service) CreateFolder(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("create folder: %w", err)
	}

	if key == "" {
		return fmt.Errorf("create folder: %w: path is required", ErrInvalidInput)
	}

	if _, err := s.store.Put(ctx, key, "", emptyReader{}); err != nil {
		return fmt.Errorf("create folder %q: %w", key, err)
	}

	return nil
}

// Delete removes exactly the object at key. Deleting a folder key removes
// only its marker, never descendants. An absent key is not an error: the
// end state is the same.
func (s *Service) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	if key == "" {
		return fmt.Errorf("delete: %w: path is required", ErrInvalidInput)
	}

	err := s.store.Delete(ctx, key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete %q: %w", key, err)
	}

	return nil
}

// Download fetches an object by exact key. Returns ErrNotFound if absent;
// any other store failure propagates unchanged so callers can distinguish
// a missing object from a broken store.
func (s *Service) Download(ctx context.Context, key string) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}

	if key == "" {
		return nil, fmt.Errorf("download: %w: file path is missing", ErrInvalidInput)
	}

	obj, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("download %q: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("download %q: %w", key, err)
	}

	return obj, nil
}

type emptyReader struct{}

func (emptyReader) Read([]byte) (int, error) { return 0, io.EOF }
