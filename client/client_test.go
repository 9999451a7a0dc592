package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyfold/keyfold/client"
)

func TestNew(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		cfg := &client.Config{
			Endpoint: "http://localhost:8292",
			Secret:   "test-secret",
		}

		c, err := client.New(cfg)
		require.NoError(t, err)
		assert.NotNil(t, c)
	})

	t.Run("nil config", func(t *testing.T) {
		c, err := client.New(nil)
		require.ErrorIs(t, err, client.ErrConfigRequired)
		assert.Nil(t, c)
	})

	t.Run("empty endpoint uses default", func(t *testing.T) {
		c, err := client.New(&client.Config{})
		require.NoError(t, err)
		assert.NotNil(t, c)
	})
}

func TestClient_List(t *testing.T) {
	t.Run("successful list", func(t *testing.T) {
		uploaded := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/api/list", r.URL.Path)
			assert.Equal(t, "docs/", r.URL.Query().Get("path"))
			assert.Equal(t, "test-secret", r.Header.Get("Authorization"))

			entries := []map[string]any{
				{"name": "report.pdf", "path": "docs/report.pdf", "size": 2048, "type": "file", "uploaded": uploaded.Format(time.RFC3339)},
				{"name": "archive", "path": "docs/archive/", "type": "folder"},
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(entries)
		}))
		defer server.Close()

		c, err := client.New(&client.Config{Endpoint: server.URL, Secret: "test-secret"})
		require.NoError(t, err)

		result, err := c.List(context.Background(), "docs/")
		require.NoError(t, err)
		require.Len(t, result.Entries, 2)

		assert.Equal(t, "report.pdf", result.Entries[0].Name)
		assert.False(t, result.Entries[0].IsFolder())
		assert.Equal(t, int64(2048), result.Entries[0].Size)
		assert.Equal(t, "archive", result.Entries[1].Name)
		assert.True(t, result.Entries[1].IsFolder())
		assert.Equal(t, int64(2048), result.TotalSize())
	})

	t.Run("root listing omits path param", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.False(t, r.URL.Query().Has("path"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("[]"))
		}))
		defer server.Close()

		c, err := client.New(&client.Config{Endpoint: server.URL})
		require.NoError(t, err)

		result, err := c.List(context.Background(), "")
		require.NoError(t, err)
		assert.Empty(t, result.Entries)
	})

	t.Run("unauthorized", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized","message":"unauthorized"}`))
		}))
		defer server.Close()

		c, err := client.New(&client.Config{Endpoint: server.URL, Secret: "wrong"})
		require.NoError(t, err)

		_, err = c.List(context.Background(), "")
		require.Error(t, err)
		assert.ErrorIs(t, err, client.ErrUnauthorized)
	})
}

func TestClient_Upload(t *testing.T) {
	t.Run("successful upload", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/upload", r.URL.Path)
			assert.Equal(t, "test/file.txt", r.URL.Query().Get("path"))
			assert.Equal(t, "text/plain; charset=utf-8", r.Header.Get("Content-Type"))
			assert.Equal(t, "test-secret", r.Header.Get("Authorization"))

			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			assert.Equal(t, "test content", string(body))

			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte("created"))
		}))
		defer server.Close()

		tmpDir := t.TempDir()
		localPath := filepath.Join(tmpDir, "file.txt")
		err := os.WriteFile(localPath, []byte("test content"), 0o600)
		require.NoError(t, err)

		c, err := client.New(&client.Config{Endpoint: server.URL, Secret: "test-secret"})
		require.NoError(t, err)

		results, err := c.Upload(context.Background(), client.UploadOptions{
			LocalPath:  localPath,
			RemotePath: "test/file.txt",
		})
		require.NoError(t, err)
		require.Len(t, results, 1)

		result := results[0]
		assert.Equal(t, localPath, result.LocalPath)
		assert.Equal(t, "test/file.txt", result.RemotePath)
		assert.Equal(t, int64(12), result.Size)
		assert.Nil(t, result.Err)
	})

	t.Run("empty local path", func(t *testing.T) {
		c, err := client.New(&client.Config{})
		require.NoError(t, err)

		_, err = c.Upload(context.Background(), client.UploadOptions{})
		require.ErrorIs(t, err, client.ErrEmptyPath)
	})

	t.Run("upload error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"internal_error","message":"disk on fire"}`))
		}))
		defer server.Close()

		tmpDir := t.TempDir()
		localPath := filepath.Join(tmpDir, "file.txt")
		err := os.WriteFile(localPath, []byte("x"), 0o600)
		require.NoError(t, err)

		c, err := client.New(&client.Config{Endpoint: server.URL})
		require.NoError(t, err)

		_, err = c.Upload(context.Background(), client.UploadOptions{LocalPath: localPath, RemotePath: "x"})
		require.Error(t, err)

		var apiErr *client.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
		assert.Contains(t, apiErr.Message, "disk on fire")
	})

	t.Run("recursive upload preserves relative paths", func(t *testing.T) {
		var uploaded []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uploaded = append(uploaded, r.URL.Query().Get("path"))
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte("created"))
		}))
		defer server.Close()

		tmpDir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "sub"), 0o750))
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "a.txt"), []byte("a"), 0o600))
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "sub", "b.txt"), []byte("b"), 0o600))

		c, err := client.New(&client.Config{Endpoint: server.URL})
		require.NoError(t, err)

		results, err := c.Upload(context.Background(), client.UploadOptions{
			LocalPath:  tmpDir,
			RemotePath: "backup",
			Recursive:  true,
		})
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.False(t, client.HasUploadErrors(results))
		assert.ElementsMatch(t, []string{"backup/a.txt", "backup/sub/b.txt"}, uploaded)
	})
}

func TestClient_Mkdir(t *testing.T) {
	t.Run("appends trailing slash and folder header", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/upload", r.URL.Path)
			assert.Equal(t, "reports/2025/", r.URL.Query().Get("path"))
			assert.Equal(t, "true", r.Header.Get("X-Create-Folder"))
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte("folder created"))
		}))
		defer server.Close()

		c, err := client.New(&client.Config{Endpoint: server.URL})
		require.NoError(t, err)

		require.NoError(t, c.Mkdir(context.Background(), "reports/2025"))
	})

	t.Run("empty path", func(t *testing.T) {
		c, err := client.New(&client.Config{})
		require.NoError(t, err)

		err = c.Mkdir(context.Background(), "")
		require.ErrorIs(t, err, client.ErrEmptyPath)
	})
}

func TestClient_Download(t *testing.T) {
	t.Run("download to file", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/download/docs/report.pdf", r.URL.Path)
			assert.Equal(t, "test-secret", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/pdf")
			w.Header().Set("ETag", `"abc123"`)
			_, _ = w.Write([]byte("pdf bytes"))
		}))
		defer server.Close()

		tmpDir := t.TempDir()
		localPath := filepath.Join(tmpDir, "out.pdf")

		c, err := client.New(&client.Config{Endpoint: server.URL, Secret: "test-secret"})
		require.NoError(t, err)

		result, body, err := c.Download(context.Background(), client.DownloadOptions{
			RemotePath: "docs/report.pdf",
			LocalPath:  localPath,
		})
		require.NoError(t, err)
		assert.Nil(t, body)
		assert.Equal(t, "abc123", result.ETag)
		assert.Equal(t, "application/pdf", result.ContentType)
		assert.Equal(t, int64(9), result.Size)

		data, err := os.ReadFile(localPath)
		require.NoError(t, err)
		assert.Equal(t, "pdf bytes", string(data))
	})

	t.Run("download to stdout returns body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("streamed"))
		}))
		defer server.Close()

		c, err := client.New(&client.Config{Endpoint: server.URL})
		require.NoError(t, err)

		result, body, err := c.Download(context.Background(), client.DownloadOptions{
			RemotePath: "file.txt",
			LocalPath:  "-",
		})
		require.NoError(t, err)
		require.NotNil(t, body)
		defer func() { _ = body.Close() }()

		data, err := io.ReadAll(body)
		require.NoError(t, err)
		assert.Equal(t, "streamed", string(data))
		assert.Equal(t, "-", result.LocalPath)
	})

	t.Run("not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"not_found","message":"file not found"}`))
		}))
		defer server.Close()

		c, err := client.New(&client.Config{Endpoint: server.URL})
		require.NoError(t, err)

		_, _, err = c.Download(context.Background(), client.DownloadOptions{RemotePath: "missing.txt"})
		require.Error(t, err)
		assert.ErrorIs(t, err, client.ErrNotFound)
	})

	t.Run("empty remote path", func(t *testing.T) {
		c, err := client.New(&client.Config{})
		require.NoError(t, err)

		_, _, err = c.Download(context.Background(), client.DownloadOptions{})
		require.ErrorIs(t, err, client.ErrEmptyPath)
	})
}

func TestClient_Delete(t *testing.T) {
	t.Run("deletes all paths", func(t *testing.T) {
		var deleted []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			assert.Equal(t, "/api/delete", r.URL.Path)
			deleted = append(deleted, r.URL.Query().Get("path"))
			_, _ = w.Write([]byte("deleted"))
		}))
		defer server.Close()

		c, err := client.New(&client.Config{Endpoint: server.URL})
		require.NoError(t, err)

		results, err := c.Delete(context.Background(), client.DeleteOptions{
			Paths: []string{"a.txt", "docs/b.txt"},
		})
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.False(t, client.HasDeleteErrors(results))
		assert.Equal(t, []string{"a.txt", "docs/b.txt"}, deleted)
	})

	t.Run("collects per path errors", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("path") == "bad.txt" {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte("boom"))
				return
			}
			_, _ = w.Write([]byte("deleted"))
		}))
		defer server.Close()

		c, err := client.New(&client.Config{Endpoint: server.URL})
		require.NoError(t, err)

		results, err := c.Delete(context.Background(), client.DeleteOptions{
			Paths: []string{"ok.txt", "bad.txt"},
		})
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.True(t, results[0].Deleted)
		assert.False(t, results[1].Deleted)
		assert.True(t, client.HasDeleteErrors(results))
	})

	t.Run("no paths", func(t *testing.T) {
		c, err := client.New(&client.Config{})
		require.NoError(t, err)

		_, err = c.Delete(context.Background(), client.DeleteOptions{})
		require.ErrorIs(t, err, client.ErrNoPaths)
	})
}

func TestClient_CheckAuth(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/check-auth", r.URL.Path)
			assert.Equal(t, "test-secret", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte("ok"))
		}))
		defer server.Close()

		c, err := client.New(&client.Config{Endpoint: server.URL, Secret: "test-secret"})
		require.NoError(t, err)

		require.NoError(t, c.CheckAuth(context.Background()))
	})

	t.Run("rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		c, err := client.New(&client.Config{Endpoint: server.URL, Secret: "wrong"})
		require.NoError(t, err)

		err = c.CheckAuth(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, client.ErrUnauthorized)
	})
}

func TestAPIError_Is(t *testing.T) {
	notFound := &client.APIError{StatusCode: http.StatusNotFound, Message: "gone"}
	assert.True(t, errors.Is(notFound, client.ErrNotFound))
	assert.False(t, errors.Is(notFound, client.ErrUnauthorized))
}

func TestNormalizeLocalToRemotePath(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"relative path", "foo/bar.txt", "foo/bar.txt"},
		{"leading dot slash", "./foo/bar.txt", "foo/bar.txt"},
		{"absolute path", "/abs/path/file.txt", "abs/path/file.txt"},
		{"parent traversal", "../sibling/file.txt", "sibling/file.txt"},
		{"double slashes", "foo//bar.txt", "foo/bar.txt"},
		{"just dot", ".", ""},
		{"just dotdot", "..", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, client.NormalizeLocalToRemotePath(tt.input))
		})
	}
}
