package http

import (
	_ "embed"
	"net/http"
)

//go:embed web/index.html
var shellHTML []byte

// handleShell serves the embedded single-page consumer for every non-API
// path. The shell is a thin client of the JSON contract; nothing in it is
// load-bearing for the store.
func (h *Handler) handleShell(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(shellHTML)
}
