package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"travelagent/config"
)

// Static catalog metadata served to chat-SDK clients.

func Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"env":    config.GetEnv(),
	})
}

func AssistantsSearch(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"agents": []gin.H{
			{
				"id":          "travel-agent",
				"name":        "Travel Booking Agent",
				"description": "Books flights and hotels with on-chain USDC settlement",
			},
		},
	})
}

func Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"graphs": gin.H{
			"agent": gin.H{
				"input_schema":  gin.H{"messages": "list"},
				"output_schema": gin.H{"result": "json"},
			},
		},
	})
}
