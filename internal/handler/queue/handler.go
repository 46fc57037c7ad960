package queue

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/careflowhq/frontdesk/internal/service/queuestats"
)

type Handler struct {
	service *queuestats.Service
}

func NewHandler(service *queuestats.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	queue := r.Group("/queue")
	{
		queue.GET("", h.Overview)
		queue.GET("/:departmentId", h.DepartmentStats)
	}
}

func (h *Handler) Overview(c *gin.Context) {
	stats, err := h.service.Overview(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": stats})
}

func (h *Handler) DepartmentStats(c *gin.Context) {
	stats, err := h.service.DepartmentStats(c.Request.Context(), c.Param("departmentId"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": stats})
}
