package handler

import (
	"net/http"
	"strconv"

	"forum-server/internal/middleware"
	"forum-server/internal/models"
	"forum-server/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ForumHandler serves the REST API for users, topics and posts.
type ForumHandler struct {
	topicService service.TopicService
	postService  service.PostService
	userService  service.UserService
	authService  service.AuthService
	logger       *zap.Logger
}

// NewForumHandler creates a new ForumHandler.
func NewForumHandler(
	topicService service.TopicService,
	postService service.PostService,
	userService service.UserService,
	authService service.AuthService,
	logger *zap.Logger,
) *ForumHandler {
	return &ForumHandler{
		topicService: topicService,
		postService:  postService,
		userService:  userService,
		authService:  authService,
		logger:       logger.Named("ForumHandler"),
	}
}

// RegisterRoutes mounts the API under /api. authLimiter guards registration
// and login and may be nil.
func (h *ForumHandler) RegisterRoutes(router gin.IRouter, authLimiter gin.HandlerFunc) {
	authRequired := middleware.AuthMiddleware(h.authService.VerifyAccessToken, h.logger)
	limited := func(handlers ...gin.HandlerFunc) []gin.HandlerFunc {
		if authLimiter == nil {
			return handlers
		}
		return append([]gin.HandlerFunc{authLimiter}, handlers...)
	}

	api := router.Group("/api")

	users := api.Group("/users")
	{
		users.POST("", limited(h.createUser)...)
		users.POST("/login", limited(h.login)...)
		users.POST("/logout", authRequired, h.logout)
		users.GET("/:id", h.getUser)
		users.PUT("/:id", authRequired, h.updateUser)
		users.DELETE("/:id", authRequired, h.deleteUser)
	}

	topics := api.Group("/topics")
	{
		topics.POST("", authRequired, h.createTopic)
		topics.GET("/latest", h.getLatestTopics)
		topics.GET("/:id", h.getTopic)
		topics.PUT("/:id", authRequired, h.updateTopic)
		topics.DELETE("/:id", authRequired, h.deleteTopic)
		topics.GET("/:id/page", h.getTopicPage)
		topics.GET("/:id/page/:page", h.getTopicPage)
	}

	posts := api.Group("/posts")
	{
		posts.POST("", authRequired, h.createPost)
		posts.GET("/:id", h.getPost)
		posts.PUT("/:id", authRequired, h.updatePost)
		posts.DELETE("/:id", authRequired, h.deletePost)
	}
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		handleServiceError(c, models.InvalidInputf("%s must be a positive integer", name))
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		handleServiceError(c, models.InvalidInputf("invalid request body: %v", err))
		return false
	}
	return true
}

// identity returns the authenticated caller. Routes without AuthMiddleware never call it.
func identity(c *gin.Context) (models.UserData, bool) {
	caller, ok := middleware.IdentityFromContext(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return models.UserData{}, false
	}
	return caller, true
}

func created(c *gin.Context, data any, message string) {
	respondOK(c, http.StatusCreated, data, message)
}
