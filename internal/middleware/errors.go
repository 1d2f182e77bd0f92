package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coinwatch/coinpulse/internal/domain/dto"
	"github.com/coinwatch/coinpulse/internal/logger"
)

// ErrorHandler is a Gin middleware that converts errors attached to the
// context (via c.Error) into a standardized JSON response.
//
// Behavior:
//   - Runs the rest of the chain first (c.Next()).
//   - If any handler attached errors, logs the last one and responds with
//     500 and a dto.ErrorResponse body, unless a response was already written.
//
// Usage:
//
//	router := gin.New()
//	router.Use(middleware.ErrorHandler)
var ErrorHandler gin.HandlerFunc = func(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 {
		return
	}

	err := c.Errors.Last().Err
	logger.L().Error().
		Err(err).
		Str("path", c.Request.URL.Path).
		Msg("unhandled request error")

	if !c.Writer.Written() {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("Internal server error", err))
	}
}

// AbortWithError stops the request chain and writes a standardized JSON
// error response with the given status code.
//
// Parameters:
//   - c (*gin.Context): The request context.
//   - status (int): HTTP status code to return.
//   - message (string): Human-readable error message.
//   - err (error): Underlying error, included as details (may be nil).
func AbortWithError(c *gin.Context, status int, message string, err error) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(message, err))
}
