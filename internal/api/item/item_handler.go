package item

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"geostrat/internal/api"
	"geostrat/internal/api/auth"
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

// CreateItem handles POST /items.
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItemHandler").Start(r.Context(), "CreateItem")
	defer span.End()

	l := h.logger.With(slog.String("handler", "CreateItem"))

	var payload Payload
	if err := api.DecodeJSONBody(w, r, &payload); err != nil {
		l.WarnContext(ctx, "Invalid request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	// A valid identity cookie attributes the item when the payload omits it.
	if payload.CreatedBy == "" {
		if username, ok := auth.GetUsernameFromContext(ctx); ok {
			payload.CreatedBy = username
		}
	}

	it, err := h.service.Create(ctx, payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Create failed")
		h.respondServiceError(w, r, l, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, map[string]interface{}{
		"message": "Item created",
		"item":    it,
	})
}

// ListItems handles GET /items with an optional created_by filter.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItemHandler").Start(r.Context(), "ListItems")
	defer span.End()

	l := h.logger.With(slog.String("handler", "ListItems"))

	createdBy := r.URL.Query().Get("created_by")
	items, err := h.service.List(ctx, createdBy)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "List failed")
		h.respondServiceError(w, r, l, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, items)
}

// GetItem handles GET /items/{id}.
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItemHandler").Start(r.Context(), "GetItem")
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetItem"))

	id, ok := h.itemID(w, r)
	if !ok {
		return
	}

	it, err := h.service.Get(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Get failed")
		h.respondServiceError(w, r, l, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, it)
}

// UpdateItem handles PUT /items/{id} with full-replacement semantics.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItemHandler").Start(r.Context(), "UpdateItem")
	defer span.End()

	l := h.logger.With(slog.String("handler", "UpdateItem"))

	id, ok := h.itemID(w, r)
	if !ok {
		return
	}

	var payload Payload
	if err := api.DecodeJSONBody(w, r, &payload); err != nil {
		l.WarnContext(ctx, "Invalid request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	it, err := h.service.Update(ctx, id, payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Update failed")
		h.respondServiceError(w, r, l, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"message": "Item updated",
		"item":    it,
	})
}

// DeleteItem handles DELETE /items/{id} and confirms with the deleted state.
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItemHandler").Start(r.Context(), "DeleteItem")
	defer span.End()

	l := h.logger.With(slog.String("handler", "DeleteItem"))

	id, ok := h.itemID(w, r)
	if !ok {
		return
	}

	it, err := h.service.Delete(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Delete failed")
		h.respondServiceError(w, r, l, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"message": "Item deleted",
		"item":    it,
	})
}

// ListCreators handles GET /creators.
func (h *Handler) ListCreators(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItemHandler").Start(r.Context(), "ListCreators")
	defer span.End()

	l := h.logger.With(slog.String("handler", "ListCreators"))

	creators, err := h.service.ListCreators(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "ListCreators failed")
		h.respondServiceError(w, r, l, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, creators)
}

// itemID parses the id route parameter. An unparseable id addresses no
// resource, so it reads as not found.
func (h *Handler) itemID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusNotFound, "Item not found")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, l *slog.Logger, err error) {
	var (
		ve *api.ValidationError
		ce *api.ConflictError
		re *api.ReferentialError
	)
	switch {
	case errors.As(err, &ve):
		api.ValidationErrorResponse(w, r, ve)
	case errors.As(err, &ce):
		api.ValidationErrorResponse(w, r, api.FieldViolation(ce.Field, ce.Message))
	case errors.As(err, &re):
		api.ValidationErrorResponse(w, r, api.FieldViolation(re.Field, re.Message))
	case errors.Is(err, api.ErrNotFound):
		api.ErrorResponse(w, r, http.StatusNotFound, "Item not found")
	default:
		l.ErrorContext(r.Context(), "Item operation failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to process request")
	}
}
