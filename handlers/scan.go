package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-disasterscout/processor"
)

// ScanRequest triggers one ingestion pass for a region and hazard topic.
type ScanRequest struct {
	Region string `json:"region" binding:"required"`
	Topic  string `json:"topic" binding:"required"`
}

func Scan(c *gin.Context, scanner *processor.Scanner) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := scanner.ScanRegion(c.Request.Context(), req.Region, req.Topic)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

func Brief(c *gin.Context, briefer *processor.Briefer) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	brief, err := briefer.Brief(c.Request.Context(), req.Region, req.Topic)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, brief)
}
