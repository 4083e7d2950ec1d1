package auth

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/honai-puma/honai-puma/internal/platform/httpx"
	"github.com/honai-puma/honai-puma/internal/shared"
)

// Handler wires the JSON authentication endpoints.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	sessionManager *shared.SessionManager
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager) *Handler {
	return &Handler{
		logger:         logger,
		service:        service,
		sessionManager: sessions,
		validator:      validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/auth/login", h.handleLogin)
	r.Post("/auth/logout", h.handleLogout)
	r.Get("/auth/me", h.handleMe)
}

type loginRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=8"`
}

type userView struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "body must be JSON")
		return
	}
	if err := h.validator.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "username dan password wajib diisi")
		return
	}

	user, err := h.service.Authenticate(r.Context(), payload.Username, payload.Password)
	if err != nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "username atau password tidak valid")
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logError("session missing during login", nil)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	sess.SetUser(strconv.FormatInt(user.ID, 10))

	expiresAt := time.Now().Add(h.sessionManager.TTL())
	if err := h.service.RegisterSession(r.Context(), sess.ID, user.ID, expiresAt, r.RemoteAddr, r.UserAgent()); err != nil {
		// Audit trail only; login still succeeds.
		h.logWarn("register session", err)
	}

	httpx.JSON(w, http.StatusOK, map[string]interface{}{"user": userView{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
	}})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
			h.logWarn("remove session", err)
		}
		h.sessionManager.Destroy(sess)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
		return
	}
	userID, err := strconv.ParseInt(sess.User(), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
		return
	}
	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]interface{}{"user": userView{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
	}})
}

// MountRoutesForTest returns a router with the auth routes mounted.
func (h *Handler) MountRoutesForTest() http.Handler {
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func (h *Handler) logWarn(msg string, err error) {
	if h.logger != nil {
		h.logger.Warn(msg, slog.Any("error", err))
	}
}

func (h *Handler) logError(msg string, err error) {
	if h.logger != nil {
		h.logger.Error(msg, slog.Any("error", err))
	}
}
