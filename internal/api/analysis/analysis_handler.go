package analysis

import (
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"geostrat/internal/api"
)

type Handler struct {
	logger  *slog.Logger
	service Service
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
	}
}

// GetSeries handles GET /analysis with timeRange and metric query filters.
func (h *Handler) GetSeries(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AnalysisHandler").Start(r.Context(), "GetSeries")
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetSeries"))

	timeRange := r.URL.Query().Get("timeRange")
	metric := r.URL.Query().Get("metric")

	points, err := h.service.Series(ctx, timeRange, metric)
	if err != nil {
		span.RecordError(err)
		switch {
		case errors.Is(err, api.ErrBadRequest):
			api.ErrorResponse(w, r, http.StatusBadRequest, "Unknown metric")
		case errors.Is(err, api.ErrNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, "No analysis data found for the specified time range")
		default:
			span.SetStatus(codes.Error, "Series failed")
			l.ErrorContext(ctx, "Failed to fetch analysis series", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to fetch analysis data")
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, points)
}
