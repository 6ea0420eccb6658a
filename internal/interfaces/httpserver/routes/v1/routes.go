package v1

import (
	"github.com/gin-gonic/gin"

	"edu-resources/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates API route registration.
type Routes struct {
	handlers *handlers.Provider
}

func NewRoutes(provider *handlers.Provider) *Routes {
	return &Routes{handlers: provider}
}

// Register attaches all routes under the /api prefix.
func (r *Routes) Register(router gin.IRouter) {
	group := router.Group("/api")

	group.POST("/upload", r.handlers.Upload.Upload)
	group.GET("/upload", r.handlers.Upload.Health)

	group.GET("/resources", r.handlers.Resource.List)
	group.POST("/resources/link", r.handlers.Resource.RegisterLink)
	group.GET("/resources/export", r.handlers.Resource.Export)
	group.POST("/resources/import", r.handlers.Resource.Import)
	group.GET("/resources/stats", r.handlers.Resource.Stats)
	group.GET("/resources/:id", r.handlers.Resource.Get)
	group.DELETE("/resources/:id", r.handlers.Resource.Delete)
	group.GET("/resources/:id/download", r.handlers.Resource.Download)
}
