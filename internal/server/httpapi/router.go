package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter wires the API's routes. Everything under /api/v1 except auth
// requires a valid bearer token.
func NewRouter(api *API, secretKey []byte) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	public := r.Group("/api/v1/auth")
	{
		public.POST("/register", api.register)
		public.POST("/login", api.login)
	}

	protected := r.Group("/api/v1")
	protected.Use(AuthMiddleware(secretKey))
	{
		protected.POST("/parse", api.parseCapture)
		protected.GET("/expenses", api.listExpenses)
		protected.PUT("/expenses/:id", api.updateExpense)
		protected.DELETE("/expenses/:id", api.deleteExpense)
		protected.POST("/metadata/sync", api.replaceMetadata)
		protected.GET("/metadata", api.getMetadata)
		protected.POST("/audio/presign", api.presignAudio)
	}

	return r
}
