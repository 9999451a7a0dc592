// Package sqlite provides the default keyfold store backend: object metadata
// in a SQLite database, object bytes in content-addressed blob files. This is
// the backend that implements the folder-marker contract exactly, since
// markers are plain rows with no blob.
package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
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
	"time"

	"github.com/google/uuid"
	"github.com/keyfold/keyfold"

	_ "modernc.org/sqlite" // SQLite driver
)

// Store implements keyfold.ObjectStore. Blobs are named by the SHA256 of
// their content, so overwrites and duplicate uploads share storage; rows
// reference blobs by name and deletes only drop rows. SweepOrphans reclaims
// unreferenced blobs.
type Store struct {
	db    *sql.DB
	blobs *os.Root
}

// Open connects to the SQLite database at dsn, runs migrations, and returns
// a Store writing blobs under the given sandboxed root.
func Open(ctx context.Context, dsn string, blobs *os.Root) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}

	return &Store{db: db, blobs: blobs}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put streams content into a temp spool file while hashing it, promotes the
// spool to a content-addressed blob, and upserts the metadata row.
// Zero-byte content (folder markers, empty files) stores no blob at all.
func (s *Store) Put(ctx context.Context, key, contentType string, content io.Reader) (keyfold.PutResult, error) {
	if err := ctx.Err(); err != nil {
		return keyfold.PutResult{}, err
	}

	tmpFile := tmpFileName()
	t, createErr := s.blobs.Create(tmpFile)
	if createErr != nil {
		return keyfold.PutResult{}, fmt.Errorf("could not open temp file: %w", createErr)
	}

	success := false
	defer func() {
		if closeErr := t.Close(); closeErr != nil {
			slog.Warn("failed to close tmp file", "err", closeErr)
		}
		if !success {
			if rmErr := s.blobs.Remove(t.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				slog.Warn("failed to remove tmp file", "err", rmErr)
			}
		}
	}()

	h := sha256.New()
	w := io.MultiWriter(h, t)

	size, err := io.Copy(w, &ctxReader{ctx: ctx, r: content})
	if err != nil {
		return keyfold.PutResult{}, fmt.Errorf("could not copy contents: %w", err)
	}

	if err := t.Sync(); err != nil {
		return keyfold.PutResult{}, fmt.Errorf("could not sync spool file: %w", err)
	}

	etag := hex.EncodeToString(h.Sum(nil))

	blobRef := ""
	if size > 0 {
		blobRef = etag
		if _, statErr := s.blobs.Stat(blobRef); statErr == nil {
			// Identical content already stored; drop the spool.
			if rmErr := s.blobs.Remove(tmpFile); rmErr != nil {
				slog.Warn("failed to remove duplicate spool", "err", rmErr)
			}
		} else if renameErr := s.blobs.Rename(tmpFile, blobRef); renameErr != nil {
			return keyfold.PutResult{}, fmt.Errorf("failed to promote blob: %w", renameErr)
		}
	} else {
		if rmErr := s.blobs.Remove(tmpFile); rmErr != nil {
			slog.Warn("failed to remove empty spool", "err", rmErr)
		}
	}
	success = true

	if contentType == "" && !keyfold.IsFolderKey(key) {
		contentType = detectContentType(key)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO objects (key, size, etag, content_type, blob_ref, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			size = excluded.size,
			etag = excluded.etag,
			content_type = excluded.content_type,
			blob_ref = excluded.blob_ref,
			uploaded_at = excluded.uploaded_at`,
		key, size, etag, contentType, blobRef, now,
	)
	if err != nil {
		return keyfold.PutResult{}, fmt.Errorf("upsert object: %w", err)
	}

	return keyfold.PutResult{BytesWritten: size, ETag: etag}, nil
}

// Get fetches the metadata row and opens the referenced blob. Returns
// keyfold.ErrNotFound if no row exists for key.
func (s *Store) Get(ctx context.Context, key string) (*keyfold.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		info       keyfold.ObjectInfo
		blobRef    string
		uploadedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT key, size, etag, content_type, blob_ref, uploaded_at FROM objects WHERE key = ?`, key,
	).Scan(&info.Key, &info.Size, &info.ETag, &info.ContentType, &blobRef, &uploadedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, keyfold.ErrNotFound
		}
		return nil, fmt.Errorf("get object: %w", err)
	}

	info.Uploaded, err = time.Parse(time.RFC3339Nano, uploadedAt)
	if err != nil {
		return nil, fmt.Errorf("get object: parse uploaded_at: %w", err)
	}

	if blobRef == "" {
		return &keyfold.Object{Info: info, Body: io.NopCloser(strings.NewReader(""))}, nil
	}

	f, err := s.blobs.Open(blobRef)
	if err != nil {
		return nil, fmt.Errorf("open blob %s: %w", blobRef, err)
	}

	return &keyfold.Object{Info: info, Body: f}, nil
}

// Delete removes the metadata row for key. The blob stays behind for
// SweepOrphans since other rows may still reference it. Returns
// keyfold.ErrNotFound if no row exists.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM objects WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	if affected == 0 {
		return keyfold.ErrNotFound
	}

	return nil
}

// List queries all keys under prefix in key order, then groups them on the
// delimiter: keys with a further delimiter collapse into one-level
// sub-prefixes, the rest are returned as objects. An empty delimiter yields
// the flat listing.
func (s *Store) List(ctx context.Context, prefix, delimiter string) (keyfold.Listing, error) {
	if err := ctx.Err(); err != nil {
		return keyfold.Listing{}, err
	}

	query := `SELECT key, size, etag, content_type, uploaded_at FROM objects`
	var args []any
	if prefix != "" {
		query += ` WHERE key LIKE ? ESCAPE '\'`
		args = append(args, keyfold.EscapeLikePattern(prefix)+"%")
	}
	query += ` ORDER BY key`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return keyfold.Listing{}, fmt.Errorf("list objects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var listing keyfold.Listing
	seenPrefixes := make(map[string]struct{})

	for rows.Next() {
		var (
			info       keyfold.ObjectInfo
			uploadedAt string
		)
		if err := rows.Scan(&info.Key, &info.Size, &info.ETag, &info.ContentType, &uploadedAt); err != nil {
			return keyfold.Listing{}, fmt.Errorf("list objects: scan: %w", err)
		}

		info.Uploaded, err = time.Parse(time.RFC3339Nano, uploadedAt)
		if err != nil {
			return keyfold.Listing{}, fmt.Errorf("list objects: parse uploaded_at: %w", err)
		}

		if delimiter == "" {
			listing.Objects = append(listing.Objects, info)
			continue
		}

		rel := strings.TrimPrefix(info.Key, prefix)
		idx := strings.Index(rel, delimiter)
		if idx < 0 {
			// Directly under the prefix. This includes the marker at exactly
			// prefix (rel == ""); the directory layer filters it out.
			listing.Objects = append(listing.Objects, info)
			continue
		}

		// Anything with a further delimiter collapses into its sub-prefix,
		// including the sub-folder's own marker key.

		sub := prefix + rel[:idx+len(delimiter)]
		if _, ok := seenPrefixes[sub]; ok {
			continue
		}
		seenPrefixes[sub] = struct{}{}
		listing.Prefixes = append(listing.Prefixes, sub)
	}

	if err := rows.Err(); err != nil {
		return keyfold.Listing{}, fmt.Errorf("list objects: %w", err)
	}

	return listing, nil
}

// SweepOrphans removes blob files no row references anymore, plus any
// abandoned temp spools. Run it offline; an in-flight Put's spool looks
// abandoned to a concurrent sweep.
func (s *Store) SweepOrphans(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT blob_ref FROM objects WHERE blob_ref != ''`)
	if err != nil {
		return 0, fmt.Errorf("sweep orphans: %w", err)
	}
	defer func() { _ = rows.Close() }()

	referenced := make(map[string]struct{})
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return 0, fmt.Errorf("sweep orphans: scan: %w", err)
		}
		referenced[ref] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("sweep orphans: %w", err)
	}

	entries, err := fs.ReadDir(s.blobs.FS(), ".")
	if err != nil {
		return 0, fmt.Errorf("sweep orphans: read blobs: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if _, ok := referenced[name]; ok {
			continue
		}
		if err := s.blobs.Remove(name); err != nil {
			return removed, fmt.Errorf("sweep orphans %q: %w", name, err)
		}
		removed++
	}

	return removed, nil
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

func detectContentType(key string) string {
	ext := filepath.Ext(key)
	contentType := mime.TypeByExtension(ext)

	if contentType == "" {
		return "application/octet-stream"
	}

	return contentType
}

func tmpFileName() string {
	return fmt.Sprintf(".t%s", uuid.New().String())
}
