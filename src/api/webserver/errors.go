package webserver

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stake-plus/ideabox/src/ideas"
)

// writeError maps service errors onto HTTP responses.
func writeError(c *gin.Context, err error) {
	var verr *ideas.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid input", "errors": verr.Fields})
	case errors.Is(err, ideas.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	case errors.Is(err, ideas.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
	case errors.Is(err, ideas.ErrVotingClosed), errors.Is(err, ideas.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
	default:
		log.Printf("webserver: %s %s (request %s): %v",
			c.Request.Method, c.FullPath(), c.GetString(ctxRequestID), err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": msg})
}
