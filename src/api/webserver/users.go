package webserver

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stake-plus/ideabox/src/ideas"
)

type Users struct{ svc *ideas.Service }

func NewUsers(svc *ideas.Service) Users { return Users{svc: svc} }

func (h Users) Current(c *gin.Context) {
	c.JSON(http.StatusOK, currentActor(c))
}

// SetRole assigns a role to the web user whose email is given as username.
func (h Users) SetRole(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Role     string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	actor := currentActor(c)
	updated, err := h.svc.AssignRoleByEmail(c.Request.Context(), actor, req.Username, ideas.Role(req.Role))
	if err != nil {
		writeError(c, err)
		return
	}

	log.Printf("Admin %s set role of %s to %s", actor.ID, req.Username, updated.Role)
	c.JSON(http.StatusOK, updated)
}

func (h Users) Stats(c *gin.Context) {
	if !ideas.CanModerate(currentActor(c)) {
		writeError(c, ideas.ErrForbidden)
		return
	}
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
