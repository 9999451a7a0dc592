// Package http exposes the keyfold virtual directory store over REST.
//
// # Surface
//
//	GET    /api/list?path=<dir>            JSON array of directory entries
//	POST   /api/upload?path=<key>          store the request body (201)
//	POST   /api/upload + X-Create-Folder   zero-byte folder marker (201)
//	DELETE /api/delete?path=<key>          delete exactly one key (200)
//	GET    /api/download/<key>[?inline]    object bytes with headers
//	GET    /api/check-auth                 probe the shared secret (200/401)
//
// Anything else under /api answers 404; every non-API path serves the
// embedded HTML shell.
//
// # Authentication
//
// A single shared secret is carried as the literal Authorization header
// value. Downloads and the probe are exempt; an empty configured secret
// makes the whole surface public. See keyfold.Authorize for the exact rules.
//
// # Downloads
//
// Responses carry Content-Type, Content-Length, and a quoted ETag from the
// store. The Content-Disposition is attachment with the key's basename
// unless ?inline=true was passed or the content type is an image; images
// display inline by default.
//
// # Usage
//
//	handler := http.NewHandler(&http.HandlerConfig{Secret: secret}, service)
//	srv := &nethttp.Server{Addr: ":8080", Handler: handler.Router()}
//	srv.ListenAndServe()
package http
