package handler

import (
	"net/http"
	"strconv"

	"forum-server/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *ForumHandler) createTopic(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}
	var input models.TopicInput
	if !bindJSON(c, &input) {
		return
	}

	topic, err := h.topicService.Create(c.Request.Context(), input, caller)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	mutationsTotal.WithLabelValues("topic", "create").Inc()
	created(c, topic, "Topic created")
}

func (h *ForumHandler) getTopic(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	topic, err := h.topicService.GetByID(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, topic, "")
}

func (h *ForumHandler) getLatestTopics(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			handleServiceError(c, models.InvalidInputf("limit must be an integer"))
			return
		}
		limit = parsed
	}

	topics, err := h.topicService.GetLatestTopics(c.Request.Context(), limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, topics, "")
}

// getTopicPage serves /topics/:id/page/:page. Pages are numbered from 1 in the
// URL and a missing page number means the first page.
func (h *ForumHandler) getTopicPage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	page := 1
	if raw := c.Param("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			handleServiceError(c, models.InvalidInputf("page must be a positive integer"))
			return
		}
		page = parsed
	}

	result, err := h.topicService.GetTopicPostsUsers(c.Request.Context(), id, page-1)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, result, "")
}

func (h *ForumHandler) updateTopic(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	caller, ok := identity(c)
	if !ok {
		return
	}
	var patch models.TopicPatch
	if !bindJSON(c, &patch) {
		return
	}

	changed, err := h.topicService.Update(c.Request.Context(), id, patch, caller)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if changed {
		mutationsTotal.WithLabelValues("topic", "update").Inc()
	}
	respondChanged(c, changed, "Topic updated")
}

func (h *ForumHandler) deleteTopic(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	caller, ok := identity(c)
	if !ok {
		return
	}

	deleted, err := h.topicService.Delete(c.Request.Context(), id, caller)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if deleted {
		mutationsTotal.WithLabelValues("topic", "delete").Inc()
	}
	respondChanged(c, deleted, "Topic deleted")
}
