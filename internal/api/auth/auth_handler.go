package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"geostrat/config"
	"geostrat/internal/api"
)

type Handler struct {
	logger  *slog.Logger
	service Service
	cfg     config.AuthConfig
}

func NewHandler(service Service, cfg config.AuthConfig, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
		cfg:     cfg,
	}
}

// Login handles POST /auth/login: issues the identity cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Login")
	defer span.End()

	l := h.logger.With(slog.String("handler", "Login"))

	var req LoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	token, err := h.service.Login(ctx, req.Username)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, api.ErrBadRequest) {
			api.ErrorResponse(w, r, http.StatusBadRequest, "Username is required")
			return
		}
		l.ErrorContext(ctx, "Login failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to log in")
		return
	}

	h.setIdentityCookie(w, token)
	api.WriteJSONResponse(w, r, http.StatusOK, LoginResponse{
		Message:  "Login successful",
		Username: req.Username,
	})
}

// Logout handles POST /auth/logout. The server holds no session state, so
// logout is purely an instruction to drop the cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	_, span := otel.Tracer("AuthHandler").Start(r.Context(), "Logout")
	defer span.End()

	h.clearIdentityCookie(w)
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]string{
		"message": "Logged out",
	})
}

// Me handles GET /auth/me: hydrates the current user from the cookie.
// Any verification failure instructs the client to drop the stale cookie.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Me")
	defer span.End()

	l := h.logger.With(slog.String("handler", "Me"))

	cookie, err := r.Cookie(h.cfg.CookieName)
	if err != nil {
		h.clearIdentityCookie(w)
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}

	username, err := h.service.Verify(cookie.Value)
	if err != nil {
		span.SetStatus(codes.Error, "Token verification failed")
		l.WarnContext(ctx, "Token verification failed", slog.Any("error", err))
		h.clearIdentityCookie(w)
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid or expired session")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, MeResponse{Username: username})
}

func (h *Handler) setIdentityCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cfg.TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *Handler) clearIdentityCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}
