package keyfold

import (
	"io"
	"time"
)

// EntryType distinguishes files from folders in a directory listing.
type EntryType string

const (
	EntryFile   EntryType = "file"
	EntryFolder EntryType = "folder"
)

// Entry is one immediate child of a virtual directory. Entries are derived
// per listing from the store's prefix+delimiter results and have no
// independent lifecycle.
type Entry struct {
	Name     string     `json:"name"`
	Path     string     `json:"path"`
	Size     int64      `json:"size,omitempty"`
	Type     EntryType  `json:"type"`
	Uploaded *time.Time `json:"uploaded,omitempty"`
}

// ObjectInfo is the store-held metadata for a single object.
type ObjectInfo struct {
	Key         string
	Size        int64
	ETag        string
	ContentType string
	Uploaded    time.Time
}

// Object is a fetched object: metadata plus its content stream.
// The caller owns Body and must close it.
type Object struct {
	Info ObjectInfo
	Body io.ReadCloser
}

// PutResult reports the outcome of a store write.
type PutResult struct {
	BytesWritten int64
	ETag         string
}

// Listing is the result of a prefix+delimiter store query: objects directly
// under the prefix plus one-level sub-prefixes. This delimiter semantics is
// what makes a flat key space behave like one directory level.
type Listing struct {
	Objects  []ObjectInfo
	Prefixes []string
}
