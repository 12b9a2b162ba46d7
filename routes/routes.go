package routes

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/sanchitpandey/visitpass-api/handlers"
	"github.com/sanchitpandey/visitpass-api/middleware"
	"github.com/sanchitpandey/visitpass-api/store"
)

// Deps carries everything the route table needs.
type Deps struct {
	Secret   []byte
	Store    store.Store
	Auth     *handlers.AuthHandler
	Visitors *handlers.VisitorHandler
	Access   *handlers.AccessHandler
	Reports  *handlers.ReportHandler

	// UploadDir enables local selfie serving; empty when selfies live in a
	// cloud bucket.
	UploadDir string
}

func Setup(router *gin.Engine, d Deps) {
	protect := middleware.Protect(d.Secret, d.Store)

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register-staff", protect, middleware.AdminOnly(), d.Auth.RegisterStaff)
		auth.POST("/login", d.Auth.Login)
		auth.POST("/firebase-login", d.Auth.FirebaseLogin)
		auth.GET("/me", protect, d.Auth.Me)
	}

	visitors := api.Group("/visitors")
	{
		visitors.POST("/register", d.Visitors.Register)
		visitors.GET("/my-info", protect, middleware.VisitorOnly(), d.Visitors.MyInfo)
		visitors.GET("", protect, middleware.SecurityOnly(), d.Visitors.List)
		visitors.GET("/:id", protect, middleware.SecurityOnly(), d.Visitors.GetByID)
	}

	access := api.Group("/access")
	access.Use(protect, middleware.SecurityOnly())
	{
		access.POST("/entry", d.Access.Entry)
		access.POST("/exit", d.Access.Exit)
	}

	reports := api.Group("/reports")
	reports.Use(protect, middleware.AdminOnly())
	{
		reports.GET("/daily", d.Reports.Daily)
	}

	if d.UploadDir != "" {
		router.Static("/uploads", d.UploadDir)
		api.GET("/image/:filename", serveImage(d.UploadDir))
	}
}

func serveImage(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		filename := filepath.Base(c.Param("filename"))
		path := filepath.Join(dir, filename)
		if _, err := os.Stat(path); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Image not found"})
			return
		}
		c.File(path)
	}
}
