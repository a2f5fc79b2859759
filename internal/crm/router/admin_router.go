package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type salesRepRequest struct {
	Name string `json:"name" binding:"required"`
}

// HandleListSalesReps handles GET /api/sales-reps requests
func (cr *CRMRouter) HandleListSalesReps(c *gin.Context) {
	c.JSON(http.StatusOK, cr.svc.SalesReps())
}

// HandleAddSalesRep handles POST /api/sales-reps requests
func (cr *CRMRouter) HandleAddSalesRep(c *gin.Context) {
	var req salesRepRequest
	if !bindJSON(c, &req) {
		return
	}
	name, err := cr.svc.AddSalesRep(c.Request.Context(), req.Name)
	if err != nil {
		writeServiceError(c, err, "add sales representative")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"name": name})
}

// HandleRemoveSalesRep handles DELETE /api/sales-reps/:name requests
func (cr *CRMRouter) HandleRemoveSalesRep(c *gin.Context) {
	name := c.Param("name")
	found, err := cr.svc.RemoveSalesRep(c.Request.Context(), name)
	if err != nil {
		writeServiceError(c, err, "remove sales representative")
		return
	}
	if !writeNotFoundUnless(c, found, "sales representative", name) {
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleStats handles GET /api/stats requests
func (cr *CRMRouter) HandleStats(c *gin.Context) {
	c.JSON(http.StatusOK, cr.svc.Stats())
}

// HandleActivity handles GET /api/activity requests
func (cr *CRMRouter) HandleActivity(c *gin.Context) {
	c.JSON(http.StatusOK, cr.svc.Activity())
}

// HandleGetPreferences handles GET /api/preferences requests
func (cr *CRMRouter) HandleGetPreferences(c *gin.Context) {
	c.JSON(http.StatusOK, cr.svc.Preferences())
}

// HandleSetPreferences handles PUT /api/preferences requests
// Body: a partial object keyed like the GET response
func (cr *CRMRouter) HandleSetPreferences(c *gin.Context) {
	var req map[string]string
	if !bindJSON(c, &req) {
		return
	}
	if err := cr.svc.SetPreferences(c.Request.Context(), req); err != nil {
		writeServiceError(c, err, "save preferences")
		return
	}
	c.JSON(http.StatusOK, cr.svc.Preferences())
}
