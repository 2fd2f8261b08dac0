package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/memewall/service/internal/journal"
	"github.com/memewall/service/internal/media"
	"github.com/memewall/service/internal/response"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// History reads back journaled uploads.
type History interface {
	Recent(ctx context.Context, limit int) ([]journal.Entry, error)
}

// Notifier tells connected browsers that the stored content changed. origin is
// the session that caused the change, or empty when it came from the API.
type Notifier interface {
	NotifyContentChanged(origin string)
}

// Handler holds HTTP handlers for the media API.
type Handler struct {
	gw             *Gateway
	history        History
	notifier       Notifier
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewHandler creates a new media API Handler. history may be nil when the
// journal is disabled.
func NewHandler(gw *Gateway, history History, notifier Notifier, maxUploadBytes int64, logger *slog.Logger) *Handler {
	return &Handler{
		gw:             gw,
		history:        history,
		notifier:       notifier,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// ListMedia godoc
//
//	@Summary		List media
//	@Description	Returns every stored meme with its public URL, ordered by the requested policy. Backend failures yield an empty list.
//	@Tags			media
//	@Produce		json
//	@Param			sort	query		string	false	"Sort policy"	Enums(newest, oldest, random)	default(newest)
//	@Success		200		{object}	response.Envelope{data=[]media.Item}
//	@Failure		500		{object}	response.Envelope
//	@Router			/media [get]
func (h *Handler) ListMedia(w http.ResponseWriter, r *http.Request) {
	items, err := h.gw.List(r.Context())
	if err != nil {
		h.logger.Warn("list aborted", "error", err)
		response.InternalError(w)
		return
	}

	policy := media.ParseSortPolicy(r.URL.Query().Get("sort"))
	response.OK(w, media.Sort(items, policy, nil))
}

// UploadMedia godoc
//
//	@Summary		Upload media
//	@Description	Stores one image or video under a random name that keeps its extension.
//	@Tags			media
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"Image or video"
//	@Success		201		{object}	response.Envelope{data=media.UploadOutcome}
//	@Failure		400		{object}	response.Envelope
//	@Failure		502		{object}	response.Envelope{data=media.UploadOutcome}
//	@Router			/media [post]
func (h *Handler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		response.BadRequest(w, "invalid multipart body")
		return
	}

	_, fh, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "file is required")
		return
	}

	f, err := media.ReadMultipart(fh)
	if err != nil {
		response.BadRequest(w, "unreadable file")
		return
	}

	outcome := h.gw.Upload(r.Context(), f)
	if !outcome.Success {
		response.BadGateway(w, outcome.Error, outcome)
		return
	}

	if h.notifier != nil {
		h.notifier.NotifyContentChanged("")
	}
	response.Created(w, outcome)
}

// ListUploads godoc
//
//	@Summary		Upload history
//	@Description	Returns the most recent upload attempts, newest first. Only available when the journal database is configured.
//	@Tags			media
//	@Produce		json
//	@Param			limit	query		int	false	"Maximum entries (1-100)"	default(20)
//	@Success		200		{object}	response.Envelope{data=[]journal.Entry}
//	@Failure		400		{object}	response.Envelope
//	@Failure		404		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/uploads [get]
func (h *Handler) ListUploads(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		response.NotFound(w, ErrJournalDisabled.Error())
		return
	}

	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	entries, err := h.history.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("read upload history", "error", err)
		response.InternalError(w)
		return
	}
	response.OK(w, entries)
}

// ErrJournalDisabled is reported when upload history is requested without a database.
var ErrJournalDisabled = errors.New("upload journal disabled")

func parseLimit(s string) (int, error) {
	if s == "" {
		return defaultHistoryLimit, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > maxHistoryLimit {
		return 0, errors.New("limit must be between 1 and 100")
	}
	return n, nil
}
