package handler

import (
	"net/http"

	"crewsheet/internal/model"
	"crewsheet/internal/service"

	"github.com/gin-gonic/gin"
)

type NotifyHandler struct{ notifier *service.Notifier }

func NewNotifyHandler(n *service.Notifier) *NotifyHandler { return &NotifyHandler{notifier: n} }

// POST /api/notify forwards a prepared message to the chat webhook.
// The relay's status is passed through as data; a failed image upload
// degrades to text-only rather than failing the request.
func (h *NotifyHandler) Send(c *gin.Context) {
	var req model.NotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	result := h.notifier.Send(c.Request.Context(), req)
	c.JSON(http.StatusOK, result)
}
