package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/scribe/internal/credentials"
	"github.com/JaimeStill/scribe/internal/items"
	"github.com/JaimeStill/scribe/pkg/handlers"
	"github.com/JaimeStill/scribe/pkg/routes"
)

// Handler provides HTTP endpoints over a session.
type Handler struct {
	session       *Session
	logger        *slog.Logger
	background    context.Context
	accepts       func(name string) bool
	maxUploadSize int64
}

// NewHandler creates a Handler. Batch runs and sign-in flows outlive the
// request that starts them and are bound to background instead.
func NewHandler(
	session *Session,
	logger *slog.Logger,
	background context.Context,
	accepts func(name string) bool,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		session:       session,
		logger:        logger.With("handler", "pipeline"),
		background:    background,
		accepts:       accepts,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route groups for items, batch runs and credentials.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Children: []routes.Group{
			{
				Prefix: "/items",
				Routes: []routes.Route{
					{Method: "GET", Pattern: "", Handler: h.List},
					{Method: "POST", Pattern: "", Handler: h.Upload},
					{Method: "GET", Pattern: "/{id}", Handler: h.Find},
					{Method: "GET", Pattern: "/{id}/report", Handler: h.Report},
					{Method: "POST", Pattern: "/{id}/export", Handler: h.Export},
				},
			},
			{
				Prefix: "/batch",
				Routes: []routes.Route{
					{Method: "GET", Pattern: "", Handler: h.BatchStatus},
					{Method: "POST", Pattern: "", Handler: h.RunBatch},
				},
			},
			{
				Prefix: "/credential",
				Routes: []routes.Route{
					{Method: "GET", Pattern: "", Handler: h.Credential},
					{Method: "POST", Pattern: "/sign-in", Handler: h.SignIn},
					{Method: "POST", Pattern: "/sign-out", Handler: h.SignOut},
				},
			},
		},
	}
}

// ListResponse is the item listing with per-phase counts.
type ListResponse struct {
	Items  []items.Item `json:"items"`
	Counts items.Counts `json:"counts"`
}

// List returns items in submission order, optionally filtered by
// generation and export phase.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	view, err := listView(h.session.Registry(), r.URL.Query())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	resp := ListResponse{
		Items:  make([]items.Item, 0),
		Counts: h.session.Registry().Counts(),
	}
	for it := range view {
		resp.Items = append(resp.Items, it)
	}

	handlers.RespondJSON(w, http.StatusOK, resp)
}

// Upload adds every file in the multipart field "files" as a pending item.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
			return
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %w", ErrMalformedUpload, err))
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNoItems)
		return
	}

	now := time.Now()
	sources := make([]items.Source, 0, len(headers))
	for _, header := range headers {
		if h.accepts != nil && !h.accepts(header.Filename) {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrUnsupportedFile)
			return
		}

		file, err := header.Open()
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
			return
		}

		sources = append(sources, items.BytesSource(header.Filename, now, data))
	}

	handlers.RespondJSON(w, http.StatusCreated, h.session.AddItems(sources...))
}

// Find returns a single item.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	it, err := h.session.Item(id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, it)
}

// Report returns the generated report as markdown.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	it, err := h.session.Item(id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	report, ok := it.Generation.Report()
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusConflict, ErrNotGenerated)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, report)
}

// Export publishes an item's report and returns the updated item.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	it, err := h.session.ExportItem(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, it)
}

// RunBatch starts a batch run in the background.
func (h *Handler) RunBatch(w http.ResponseWriter, r *http.Request) {
	if err := h.session.StartBatch(h.background); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusAccepted, h.session.BatchStatus())
}

// BatchStatus reports the run flag and the last run summary.
func (h *Handler) BatchStatus(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.session.BatchStatus())
}

// Credential returns the credential status.
func (h *Handler) Credential(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.session.Credential())
}

// SignIn starts an interactive grant. The response carries the device
// challenge; the grant completes in the background once the user approves.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	challenges := make(chan credentials.Challenge, 1)
	result := make(chan error, 1)

	go func() {
		result <- h.session.SignIn(h.background, func(c credentials.Challenge) {
			select {
			case challenges <- c:
			default:
			}
		})
	}()

	select {
	case c := <-challenges:
		handlers.RespondJSON(w, http.StatusAccepted, c)
	case err := <-result:
		if err != nil {
			handlers.RespondError(w, h.logger, credentials.MapHTTPStatus(err), err)
			return
		}
		handlers.RespondJSON(w, http.StatusOK, h.session.Credential())
	case <-r.Context().Done():
	}
}

// SignOut revokes the credential.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.session.SignOut(r.Context()); err != nil {
		handlers.RespondError(w, h.logger, credentials.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, h.session.Credential())
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errors.New("invalid item id"))
		return uuid.Nil, false
	}
	return id, true
}

// listView picks the registry view for the generation and export query
// filters. When both are given the export phase narrows the generation view.
func listView(reg *items.Registry, q url.Values) (iter.Seq[items.Item], error) {
	view := reg.All()

	if v := q.Get("generation"); v != "" {
		phase, err := items.ParseGenerationPhase(v)
		if err != nil {
			return nil, err
		}
		view = reg.ByGeneration(phase)
	}

	if v := q.Get("export"); v != "" {
		phase, err := items.ParseExportPhase(v)
		if err != nil {
			return nil, err
		}
		if q.Get("generation") == "" {
			return reg.ByExport(phase), nil
		}
		view = narrow(view, func(it items.Item) bool { return it.Export.Phase() == phase })
	}

	return view, nil
}

func narrow(seq iter.Seq[items.Item], keep func(items.Item) bool) iter.Seq[items.Item] {
	return func(yield func(items.Item) bool) {
		for it := range seq {
			if keep(it) && !yield(it) {
				return
			}
		}
	}
}
