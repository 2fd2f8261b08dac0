package page

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/memewall/service/internal/gallery"
	"github.com/memewall/service/internal/media"
)

// SessionCookie names the cookie that binds a browser to its page.
const SessionCookie = "memewall_session"

// Sockets upgrades a browser's live-update connection.
type Sockets interface {
	ServeWs(w http.ResponseWriter, r *http.Request, sessionID string)
}

// Handler serves the page and turns form posts into widget events.
type Handler struct {
	registry       *Registry
	sockets        Sockets
	maxUploadBytes int64
	secureCookie   bool
	logger         *slog.Logger
}

// NewHandler creates a page Handler. sockets may be nil, in which case /ws
// answers 404.
func NewHandler(registry *Registry, sockets Sockets, maxUploadBytes int64, secureCookie bool, logger *slog.Logger) *Handler {
	return &Handler{
		registry:       registry,
		sockets:        sockets,
		maxUploadBytes: maxUploadBytes,
		secureCookie:   secureCookie,
		logger:         logger,
	}
}

// Routes mounts the page endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.With(h.session).Get("/", h.Index)

	r.Group(func(r chi.Router) {
		r.Use(h.requireSession)

		r.Post("/uploader/select", h.SelectFiles)
		r.Post("/uploader/upload", h.Upload)
		r.Get(PreviewBase+"{id}", h.Preview)
		r.Post("/gallery/sort", h.Sort)
		r.Post("/gallery/tiles/{index}", h.ActivateTile)
		r.Post("/viewer/close", h.CloseViewer)
		r.Post("/events/content-changed", h.ContentChanged)
		r.Get("/ws", h.Socket)
	})
}

type pageKey struct{}

func pageFrom(ctx context.Context) *Page {
	p, _ := ctx.Value(pageKey{}).(*Page)
	return p
}

func (h *Handler) lookup(r *http.Request) *Page {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil
	}
	p, _ := h.registry.Get(c.Value)
	return p
}

// session resolves the caller's page, creating one and setting the cookie
// when the browser is new or its page was pruned. Only the document route
// uses it.
func (h *Handler) session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := h.lookup(r)
		if p == nil {
			p = h.registry.Create(r.Context())
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    p.ID,
				Path:     "/",
				HttpOnly: true,
				Secure:   h.secureCookie,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), pageKey{}, p)))
	})
}

// requireSession serves widget routes only for a live page. Form posts from a
// browser whose page is gone are sent back to the document, which starts a new
// session; anything else is a 404.
func (h *Handler) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := h.lookup(r)
		if p == nil {
			if r.Method == http.MethodPost {
				backToPage(w, r)
				return
			}
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), pageKey{}, p)))
	})
}

func backToPage(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Index renders the whole page.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := pageFrom(r.Context()).Render(&buf); err != nil {
		h.logger.Error("render page", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

// SelectFiles replaces the uploader's selection with the posted files.
func (h *Handler) SelectFiles(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart body", http.StatusBadRequest)
		return
	}

	var files []media.File
	for _, fh := range r.MultipartForm.File["files"] {
		f, err := media.ReadMultipart(fh)
		if err != nil {
			http.Error(w, "unreadable file", http.StatusBadRequest)
			return
		}
		files = append(files, f)
	}

	pageFrom(r.Context()).Uploader.Select(files)
	backToPage(w, r)
}

// Upload sends the current selection to storage.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	pageFrom(r.Context()).Uploader.Upload(r.Context())
	backToPage(w, r)
}

// Preview serves a selected file's bytes while its selection is current.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	f, ok := pageFrom(r.Context()).Uploader.PreviewFile(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	if f.ContentType != "" {
		w.Header().Set("Content-Type", f.ContentType)
	}
	w.Header().Set("Cache-Control", "no-store")
	http.ServeContent(w, r, f.Name, time.Time{}, bytes.NewReader(f.Data))
}

// Sort switches the gallery ordering and refetches.
func (h *Handler) Sort(w http.ResponseWriter, r *http.Request) {
	policy := media.ParseSortPolicy(r.FormValue("sort"))
	pageFrom(r.Context()).Gallery.SetSort(r.Context(), policy)
	backToPage(w, r)
}

// ActivateTile opens the viewer on a gallery tile.
func (h *Handler) ActivateTile(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "invalid tile index", http.StatusBadRequest)
		return
	}

	if err := pageFrom(r.Context()).Gallery.Activate(r.Context(), index); err != nil {
		if !errors.Is(err, gallery.ErrTileNotFound) {
			h.logger.Error("activate tile", "index", index, "error", err)
		}
		// A stale tile just means the grid was replaced since it was drawn.
	}
	backToPage(w, r)
}

// CloseViewer hides the viewer.
func (h *Handler) CloseViewer(w http.ResponseWriter, r *http.Request) {
	pageFrom(r.Context()).Viewer.Close()
	backToPage(w, r)
}

// ContentChanged relays another session's upload into this page's bus.
func (h *Handler) ContentChanged(w http.ResponseWriter, r *http.Request) {
	pageFrom(r.Context()).ReceiveContentChanged(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// Socket upgrades the live-update connection.
func (h *Handler) Socket(w http.ResponseWriter, r *http.Request) {
	if h.sockets == nil {
		http.NotFound(w, r)
		return
	}
	h.sockets.ServeWs(w, r, pageFrom(r.Context()).ID)
}
