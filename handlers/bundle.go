package handlers

import "github.com/gin-gonic/gin"

// HandlerBundle groups every route handler the router needs, so route
// registration takes one argument.
type HandlerBundle struct {
	CreateThread  gin.HandlerFunc
	ThreadHistory gin.HandlerFunc
	SearchThreads gin.HandlerFunc
	StreamRun     gin.HandlerFunc

	Status           gin.HandlerFunc
	AssistantsSearch gin.HandlerFunc
	Info             gin.HandlerFunc
}
