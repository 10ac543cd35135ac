package routes

import (
	"github.com/gin-gonic/gin"

	"go-disasterscout/db"
	"go-disasterscout/handlers"
	"go-disasterscout/processor"
)

func SetupRouter(store *db.Store, scanner *processor.Scanner, briefer *processor.Briefer) *gin.Engine {
	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "Hello, welcome to DisasterScout!",
		})
	})

	api := r.Group("/api/scout")
	{
		api.POST("/scan", func(c *gin.Context) {
			handlers.Scan(c, scanner)
		})
		api.POST("/brief", func(c *gin.Context) {
			handlers.Brief(c, briefer)
		})
		api.GET("/incidents", func(c *gin.Context) {
			handlers.Incidents(c, store)
		})
		api.GET("/near", func(c *gin.Context) {
			handlers.Near(c, store)
		})
		api.POST("/incidents/:id/verify", func(c *gin.Context) {
			handlers.Verify(c, store)
		})
	}

	return r
}
