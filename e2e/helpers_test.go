package e2e_test

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	keyfold "github.com/keyfold/keyfold"
	keyfoldhttp "github.com/keyfold/keyfold/http"
	"github.com/keyfold/keyfold/sqlite"
)

// startServer brings up a full server over a fresh sqlite store and
// returns its base URL. Everything is cleaned up when the test ends.
func startServer(t *testing.T, secret string) string {
	t.Helper()

	storageDir := t.TempDir()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	root, err := os.OpenRoot(storageDir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = root.Close() })

	store, err := sqlite.Open(context.Background(), dbPath, root)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	service := keyfold.NewService(store)
	handler := keyfoldhttp.NewHandler(&keyfoldhttp.HandlerConfig{Secret: secret}, service)

	server := httptest.NewServer(handler.Router())
	t.Cleanup(server.Close)

	return server.URL
}
