package webserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stake-plus/ideabox/src/ideas"
)

type Ideas struct{ svc *ideas.Service }

func NewIdeas(svc *ideas.Service) Ideas { return Ideas{svc: svc} }

func ideaID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("ideaId"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid idea id")
		return 0, false
	}
	return id, true
}

func (h Ideas) List(c *gin.Context) {
	views, err := h.svc.ListIdeas(c.Request.Context(), currentActor(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h Ideas) Get(c *gin.Context) {
	id, ok := ideaID(c)
	if !ok {
		return
	}
	view, err := h.svc.GetIdeaView(c.Request.Context(), id, currentActor(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h Ideas) Create(c *gin.Context) {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Category    string `json:"category"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	idea, err := h.svc.CreateIdea(c.Request.Context(), currentActor(c), ideas.NewIdea{
		Title:       req.Title,
		Description: req.Description,
		Category:    ideas.Category(req.Category),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, idea)
}

// Vote toggles the caller's vote. A new vote answers 201, a flip or removal 200.
func (h Ideas) Vote(c *gin.Context) {
	id, ok := ideaID(c)
	if !ok {
		return
	}
	var req struct {
		Direction string `json:"direction"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	res, err := h.svc.ApplyVote(c.Request.Context(), id, currentActor(c).ID, ideas.Direction(req.Direction))
	if err != nil {
		writeError(c, err)
		return
	}

	status := http.StatusOK
	if res.Outcome == ideas.OutcomeCreated {
		status = http.StatusCreated
	}
	c.JSON(status, res)
}

func (h Ideas) SetStatus(c *gin.Context) {
	id, ok := ideaID(c)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	idea, err := h.svc.SetStatus(c.Request.Context(), id, ideas.Status(req.Status), currentActor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, idea)
}
