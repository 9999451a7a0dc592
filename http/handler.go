package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/keyfold/keyfold"
)

// Service is the virtual directory layer the handlers dispatch to.
type Service interface {
	List(ctx context.Context, dir string) ([]keyfold.Entry, error)
	Upload(ctx context.Context, key, contentType string, content io.Reader) (keyfold.PutResult, error)
	CreateFolder(ctx context.Context, key string) error
	Delete(ctx context.Context, key string) error
	Download(ctx context.Context, key string) (*keyfold.Object, error)
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	// Secret is the shared secret gating mutations and listing.
	// Empty disables the gate entirely.
	Secret string
	CORS   CORSConfig
}

// Handler provides the HTTP surface of the virtual directory store.
type Handler struct {
	config  HandlerConfig
	service Service
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	return &Handler{
		config:  *config,
		service: service,
	}
}

// Router returns the configured http.Handler. Everything under /api is the
// JSON/binary contract; any other path serves the embedded HTML shell.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	api := chi.NewRouter()
	api.Use(AuthMiddleware(h.config.Secret))

	api.Get("/list", h.handleList)
	api.Post("/upload", h.handleUpload)
	api.Delete("/delete", h.handleDelete)
	api.Get("/download/*", h.handleDownload)
	api.Get("/check-auth", h.handleCheckAuth)

	api.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusNotFound, "not_found", "Unknown API action")
	})
	api.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
	})

	r.Mount("/api", api)

	// Everything outside /api is the presentation shell.
	r.NotFound(h.handleShell)

	return r
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	dir := r.URL.Query().Get("path")

	entries, err := h.service.List(r.Context(), dir)
	if err != nil {
		HandleError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, entries)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("path")
	if key == "" {
		WriteError(w, http.StatusBadRequest, "missing_path", "path is required")
		return
	}

	if r.Header.Get("X-Create-Folder") == "true" {
		if err := h.service.CreateFolder(r.Context(), key); err != nil {
			HandleError(w, err)
			return
		}
		WriteText(w, http.StatusCreated, "folder created")
		return
	}

	// The request body goes straight through to the store; it is never
	// buffered here, whatever its size.
	if _, err := h.service.Upload(r.Context(), key, r.Header.Get("Content-Type"), r.Body); err != nil {
		HandleError(w, err)
		return
	}

	WriteText(w, http.StatusCreated, "created")
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("path")
	if key == "" {
		WriteError(w, http.StatusBadRequest, "missing_path", "path is required")
		return
	}

	if err := h.service.Delete(r.Context(), key); err != nil {
		HandleError(w, err)
		return
	}

	WriteText(w, http.StatusOK, "deleted")
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	key := downloadKey(r)
	if key == "" {
		WriteError(w, http.StatusBadRequest, "missing_path", "file path is missing")
		return
	}

	obj, err := h.service.Download(r.Context(), key)
	if err != nil {
		HandleError(w, err)
		return
	}
	defer func() { _ = obj.Body.Close() }()

	contentType := obj.Info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(obj.Info.Size, 10))
	if obj.Info.ETag != "" {
		w.Header().Set("ETag", `"`+obj.Info.ETag+`"`)
	}

	// Attachment unless inline was requested or the type is an image;
	// images render in the browser by default.
	inline := r.URL.Query().Get("inline") == "true"
	if !inline && !strings.HasPrefix(contentType, "image/") {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", keyfold.BaseName(key)))
	}

	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, obj.Body)
}

func (h *Handler) handleCheckAuth(w http.ResponseWriter, r *http.Request) {
	if h.config.Secret != "" && r.Header.Get("Authorization") != h.config.Secret {
		WriteError(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
		return
	}
	WriteText(w, http.StatusOK, "ok")
}

// downloadKey resolves the object key from the residual URL segment after
// the download prefix: percent-decoded, one leading separator stripped. The
// escaped path is used so keys containing encoded separators survive.
func downloadKey(r *http.Request) string {
	raw := strings.TrimPrefix(r.URL.EscapedPath(), "/api/download")
	raw = strings.TrimPrefix(raw, "/")

	key, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return key
}
