package department

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/careflowhq/frontdesk/internal/service/registry"
)

type Handler struct {
	registry *registry.Service
}

func NewHandler(reg *registry.Service) *Handler {
	return &Handler{registry: reg}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	departments := r.Group("/departments")
	{
		departments.GET("", h.ListDepartments)
		departments.GET("/:id", h.GetDepartment)
		departments.GET("/:id/practitioners", h.ListPractitioners)
	}
}

func (h *Handler) ListDepartments(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": h.registry.List()})
}

func (h *Handler) GetDepartment(c *gin.Context) {
	department, err := h.registry.Lookup(c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": department})
}

func (h *Handler) ListPractitioners(c *gin.Context) {
	departmentID := c.Param("id")
	if _, err := h.registry.Lookup(departmentID); err != nil {
		c.Error(err)
		return
	}

	all := h.registry.Practitioners()
	out := all[:0]
	for _, p := range all {
		if p.DepartmentID == departmentID {
			out = append(out, p)
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": out})
}
