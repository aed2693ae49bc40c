package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"cms-server/internal/auth"
	"cms-server/internal/config"
	"cms-server/internal/domain"
	"cms-server/internal/service"
	"cms-server/internal/storage"
)

const archiveURLExpiry = 15 * time.Minute

// ArchiveLister exposes stored content snapshots to administrators.
type ArchiveLister interface {
	List(ctx context.Context, prefix string, expires time.Duration) ([]storage.ArchivedObject, error)
}

// Options tunes the transport layer.
type Options struct {
	Env            string
	AllowedOrigins []string
	MaxBodyBytes   int64
	Logger         logrus.FieldLogger
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	users    service.UserService
	contents service.ContentService
	tokens   *auth.TokenService
	archive  ArchiveLister
	opts     Options
	logger   logrus.FieldLogger
}

// NewHandler builds the handler; archive may be nil when object storage is disabled.
func NewHandler(users service.UserService, contents service.ContentService, tokens *auth.TokenService, archive ArchiveLister, opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}
	if opts.Env == "" {
		opts.Env = config.EnvDevelopment
	}
	return &Handler{
		users:    users,
		contents: contents,
		tokens:   tokens,
		archive:  archive,
		opts:     opts,
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(
		h.requestID(),
		h.tracing(),
		h.requestLogger(),
		h.recovery(),
		h.cors(),
		h.limitBody(),
	)

	api := router.Group("/api")
	api.GET("/health", h.health)
	api.POST("/auth/register", h.register)
	api.POST("/auth/login", h.login)

	secured := api.Group("", h.authenticate())
	{
		secured.GET("/auth/me", h.requireAuth(), h.me)

		secured.GET("/content", h.listContent)
		secured.GET("/content/:id", h.getContent)
		secured.POST("/content", h.requireAuth(), h.createContent)
		secured.PUT("/content/:id", h.requireAuth(), h.updateContent)
		secured.DELETE("/content/:id", h.requireAuth(), h.deleteContent)

		admin := secured.Group("", h.requireRole(domain.RoleAdmin))
		admin.GET("/users", h.listUsers)
		admin.PUT("/users/:id/role", h.updateUserRole)
		admin.DELETE("/users/:id", h.deleteUser)
		admin.GET("/admin/archive", h.listArchive)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"status":  "fail",
			"message": "Can't find " + c.Request.URL.RequestURI() + " on this server!",
		})
	})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"message":     "Server is running",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": h.opts.Env,
	})
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

func (h *Handler) register(c *gin.Context) {
	var req credentialsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondWithToken(c, http.StatusCreated, user)
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.respondWithToken(c, http.StatusOK, user)
}

func (h *Handler) respondWithToken(c *gin.Context, status int, user *domain.User) {
	token, err := h.tokens.Issue(domain.IdentityOf(user))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(status, authResponse{User: userToResponse(*user), Token: token})
}

func (h *Handler) me(c *gin.Context) {
	identity := auth.IdentityFromContext(c.Request.Context())
	user, err := h.users.GetByID(c.Request.Context(), identity.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(*user))
}

type contentRequest struct {
	Title  string               `json:"title"`
	Body   string               `json:"body"`
	Status domain.ContentStatus `json:"status"`
}

func (h *Handler) createContent(c *gin.Context) {
	var req contentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	content, err := h.contents.Create(c.Request.Context(), auth.IdentityFromContext(c.Request.Context()), service.CreateContentInput{
		Title:  req.Title,
		Body:   req.Body,
		Status: req.Status,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contentToResponse(*content))
}

func (h *Handler) listContent(c *gin.Context) {
	in := service.ListContentInput{Status: domain.ContentStatus(c.Query("status"))}
	if raw := c.Query("authorId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			h.respondError(c, domain.ValidationErrors{}.Add("authorId", "authorId must be a positive integer"))
			return
		}
		in.AuthorID = id
	}

	contents, err := h.contents.List(c.Request.Context(), auth.IdentityFromContext(c.Request.Context()), in)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]ContentResponse, len(contents))
	for i := range contents {
		resp[i] = contentToResponse(contents[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getContent(c *gin.Context) {
	id, ok := h.pathID(c, "Content")
	if !ok {
		return
	}

	content, err := h.contents.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contentToResponse(*content))
}

func (h *Handler) updateContent(c *gin.Context) {
	id, ok := h.pathID(c, "Content")
	if !ok {
		return
	}
	var req contentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	content, err := h.contents.Update(c.Request.Context(), auth.IdentityFromContext(c.Request.Context()), id, service.UpdateContentInput{
		Title:  req.Title,
		Body:   req.Body,
		Status: req.Status,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contentToResponse(*content))
}

func (h *Handler) deleteContent(c *gin.Context) {
	id, ok := h.pathID(c, "Content")
	if !ok {
		return
	}

	if err := h.contents.Delete(c.Request.Context(), auth.IdentityFromContext(c.Request.Context()), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Content deleted successfully"})
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context(), auth.IdentityFromContext(c.Request.Context()))
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(users[i])
	}
	c.JSON(http.StatusOK, resp)
}

type roleRequest struct {
	Role domain.Role `json:"role"`
}

func (h *Handler) updateUserRole(c *gin.Context) {
	id, ok := h.pathID(c, "User")
	if !ok {
		return
	}
	var req roleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.users.UpdateRole(c.Request.Context(), auth.IdentityFromContext(c.Request.Context()), id, req.Role)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(*user))
}

func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := h.pathID(c, "User")
	if !ok {
		return
	}

	if err := h.users.Delete(c.Request.Context(), auth.IdentityFromContext(c.Request.Context()), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

func (h *Handler) listArchive(c *gin.Context) {
	if h.archive == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "storage service not configured"})
		return
	}

	objects, err := h.archive.List(c.Request.Context(), c.Query("prefix"), archiveURLExpiry)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]ArchiveObjectResponse, len(objects))
	for i := range objects {
		resp[i] = archiveObjectToResponse(objects[i])
	}
	c.JSON(http.StatusOK, resp)
}

// pathID parses the :id parameter; an id that cannot name a row is reported as a missing what.
func (h *Handler) pathID(c *gin.Context, what string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.respondError(c, domain.NewError(domain.ErrNotFound, what+" not found"))
		return 0, false
	}
	return id, true
}
