package http

import "github.com/gin-gonic/gin"

// Register attaches chat, project and catalog routes to the /api/v1 group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/chat", h.chat)
	rg.GET("/chat/history", h.history)

	projects := rg.Group("/projects")
	projects.POST("", h.create)
	projects.GET("", h.list)
	projects.GET("/:id", h.get)
	projects.DELETE("/:id", h.delete)
	projects.POST("/:id/resolve", h.resolve)
	projects.GET("/:id/variations", h.variations)

	rg.GET("/catalog", h.listCatalog)
}
