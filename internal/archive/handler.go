package archive

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/JaimeStill/scribe/pkg/handlers"
	"github.com/JaimeStill/scribe/pkg/routes"
)

const defaultLimit = 50

// Handler serves the archive listing.
type Handler struct {
	recorder *Recorder
	logger   *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(recorder *Recorder, logger *slog.Logger) *Handler {
	return &Handler{recorder: recorder, logger: logger.With("handler", "archive")}
}

// Routes returns the archive route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/archive",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.Recent},
		},
	}
}

// Recent lists the latest archived reports. ?limit= defaults to 50.
func (h *Handler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidLimit)
			return
		}
		limit = n
	}

	records, err := h.recorder.Recent(r.Context(), limit)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, records)
}
