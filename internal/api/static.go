package api

import (
	"embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed static
var staticFS embed.FS

// SetupStaticRoutes serves the embedded chat page and the widget loader.
func SetupStaticRoutes(r *gin.Engine) {
	r.GET("/", func(c *gin.Context) {
		c.FileFromFS("static/index.html", http.FS(staticFS))
	})

	r.GET("/widget.js", func(c *gin.Context) {
		c.Header("Content-Type", "application/javascript")
		c.FileFromFS("static/widget.js", http.FS(staticFS))
	})
}
