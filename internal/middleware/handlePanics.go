package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// HandlePanics turns a recovered panic into a JSON 500.
func HandlePanics() gin.RecoveryFunc {
	return func(c *gin.Context, recovered any) {
		details := fmt.Sprint(recovered)
		if err, ok := recovered.(error); ok {
			details = err.Error()
		}

		log.Error().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("panic", details).
			Msg("Recovered from panic")

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "internal server error",
			"details": details,
		})
	}
}
