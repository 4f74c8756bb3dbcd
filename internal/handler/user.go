package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hpnchanel/usersvc/internal/apperr"
	"github.com/hpnchanel/usersvc/internal/handler/dto"
	"github.com/hpnchanel/usersvc/internal/metrics"
	"github.com/hpnchanel/usersvc/internal/middleware"
	"github.com/hpnchanel/usersvc/internal/service"
)

// UserHandler handles HTTP requests for user operations.
type UserHandler struct {
	svc     *service.UserService
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger, recorder metrics.Recorder) *UserHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UserHandler{
		svc:     svc,
		logger:  logger,
		metrics: recorder,
	}
}

// Routes mounts the user routes on r.
func (h *UserHandler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// Create handles POST /users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := dto.Decode(r.Body, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	user, err := h.svc.CreateUser(r.Context(), req.ToInput())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToUserResponse(user))
}

// List handles GET /users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserListResponse(users))
}

// Get handles GET /users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	user, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// Update handles PUT /users/{id}.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	var req dto.UpdateUserRequest
	if err := dto.Decode(r.Body, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	user, err := h.svc.UpdateUser(r.Context(), id, req.ToInput())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// Delete handles DELETE /users/{id}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if err := h.svc.DeleteUser(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// userID reads the {id} path segment. Non-UUID ids are a 400, not a lookup miss.
func userID(r *http.Request) (string, error) {
	id := chi.URLParam(r, "id")
	if err := service.ParseID(id); err != nil {
		return "", err
	}
	return id, nil
}

// writeServiceError renders a classified error. Only not-found and validation
// messages reach the caller; everything else is logged and replaced.
func (h *UserHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)

	h.metrics.IncErrorResponse(kind.String())
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed",
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.String("kind", kind.String()),
			slog.String("error", err.Error()),
		)
	}

	writeJSON(w, status, dto.ErrorResponse{
		Error: apperr.PublicMessage(err),
		Code:  kind.String(),
	})
}
