// Package keyfold presents a flat, key-addressed object store as a virtual
// hierarchical file system over HTTP.
//
// The store itself has no directories: slashes in keys are conventional
// separators. Keyfold projects folder semantics on top of the store's
// prefix+delimiter listing primitive, creates empty folders as zero-byte
// marker objects, and gates mutations behind a single shared secret.
//
// # Key Components
//
//   - Service: virtual directory layer over an ObjectStore (list, upload,
//     create folder, delete, download)
//   - ObjectStore: interface for store backends (filesystem, sqlite)
//   - Authorize: the shared-secret request gate
//
// # Example Usage
//
//	store, err := sqlite.Open(ctx, "keyfold.db", root)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svc := keyfold.NewService(store)
//
//	// List the immediate children of a virtual directory.
//	entries, err := svc.List(ctx, "docs/")
//
//	// Stream an upload straight into the store.
//	res, err := svc.Upload(ctx, "docs/report.pdf", "application/pdf", body)
//
// See the http package for the REST surface and the filesystem and sqlite
// packages for store backends.
package keyfold
