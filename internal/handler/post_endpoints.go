package handler

import (
	"net/http"

	"forum-server/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *ForumHandler) createPost(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}
	var input models.PostInput
	if !bindJSON(c, &input) {
		return
	}

	post, err := h.postService.Create(c.Request.Context(), input, caller)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	mutationsTotal.WithLabelValues("post", "create").Inc()
	created(c, post, "Post created")
}

func (h *ForumHandler) getPost(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	post, err := h.postService.GetByID(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, post, "")
}

func (h *ForumHandler) updatePost(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	caller, ok := identity(c)
	if !ok {
		return
	}
	var patch models.PostPatch
	if !bindJSON(c, &patch) {
		return
	}

	changed, err := h.postService.Update(c.Request.Context(), id, patch, caller)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if changed {
		mutationsTotal.WithLabelValues("post", "update").Inc()
	}
	respondChanged(c, changed, "Post updated")
}

func (h *ForumHandler) deletePost(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	caller, ok := identity(c)
	if !ok {
		return
	}

	deleted, err := h.postService.Delete(c.Request.Context(), id, caller)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if deleted {
		mutationsTotal.WithLabelValues("post", "delete").Inc()
	}
	respondChanged(c, deleted, "Post deleted")
}
