package handler

import (
	"errors"
	"net/http"

	"forum-server/internal/middleware"
	"forum-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *ForumHandler) createUser(c *gin.Context) {
	var input models.UserInput
	if !bindJSON(c, &input) {
		return
	}

	user, err := h.userService.Create(c.Request.Context(), input)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	registrationsTotal.Inc()
	created(c, user, "User created")
}

func (h *ForumHandler) login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		loginsTotal.WithLabelValues("failure").Inc()
		return
	}

	ctx := c.Request.Context()
	user, err := h.userService.Login(ctx, req.Username, req.Password)
	if err != nil {
		loginsTotal.WithLabelValues("failure").Inc()
		handleServiceError(c, err)
		return
	}

	result, err := h.authService.IssueAccessToken(ctx, user)
	if err != nil {
		loginsTotal.WithLabelValues("failure").Inc()
		handleServiceError(c, err)
		return
	}
	loginsTotal.WithLabelValues("success").Inc()
	respondOK(c, http.StatusOK, result, "Logged in")
}

func (h *ForumHandler) logout(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}
	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		handleServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, nil, "Logged out")
}

func (h *ForumHandler) getUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	user, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, user, "")
}

func (h *ForumHandler) updateUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	caller, ok := identity(c)
	if !ok {
		return
	}
	var patch models.UserPatch
	if !bindJSON(c, &patch) {
		return
	}

	changed, err := h.userService.Update(c.Request.Context(), id, patch, caller)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if changed {
		mutationsTotal.WithLabelValues("user", "update").Inc()
	}
	respondChanged(c, changed, "User updated")
}

func (h *ForumHandler) deleteUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	caller, ok := identity(c)
	if !ok {
		return
	}

	deleted, err := h.userService.Delete(c.Request.Context(), id, caller)
	if err != nil {
		if errors.Is(err, models.ErrForbidden) {
			h.logger.Warn("User delete denied", zap.Int64("userID", id), zap.Int64("callerID", caller.UserID))
		}
		handleServiceError(c, err)
		return
	}
	if deleted {
		mutationsTotal.WithLabelValues("user", "delete").Inc()
	}
	respondChanged(c, deleted, "User deleted")
}
