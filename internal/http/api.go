package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"mellowmark/internal/service"
)

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	users   service.UserService
	docs    service.DocumentService
	readmes service.ReadmeService
	tokens  TokenVerifier
	logger  *logrus.Logger
}

func NewHandler(users service.UserService, docs service.DocumentService, readmes service.ReadmeService, tokens TokenVerifier, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		users:   users,
		docs:    docs,
		readmes: readmes,
		tokens:  tokens,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Backend Running......")
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})

	auth := router.Group("/auth")
	{
		auth.POST("/signup", h.signup)
		auth.POST("/login", h.login)
	}

	protected := router.Group("/", Authenticate(h.tokens, h.logger))
	{
		protected.POST("/save", h.saveDocument)
		protected.GET("/load/:title", h.loadDocument)
		protected.GET("/files", h.listDocuments)
		protected.POST("/upload", h.uploadDocument)
		protected.POST("/generate-readme", h.generateReadme)
	}
}

// NewRouter builds the complete HTTP handler: gin engine with recovery and
// request logging, wrapped in CORS handling for the browser editor.
func NewRouter(h *Handler, allowedOrigins []string) http.Handler {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(h.logger))
	h.RegisterRoutes(router)

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
	})
	return c.Handler(router)
}
