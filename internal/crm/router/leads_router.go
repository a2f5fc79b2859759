package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amzmarine/crm/internal/crm/model"
	"github.com/amzmarine/crm/internal/crm/service"
	"github.com/amzmarine/crm/utils"
)

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// HandleListLeads handles GET /api/leads requests
// Optional Query Filters: cargo, sales, line, offset, limit
func (cr *CRMRouter) HandleListLeads(c *gin.Context) {
	offset, limit, ok := paginationParams(c)
	if !ok {
		return
	}
	leads := service.FilterLeads(cr.svc.Leads(), service.LeadFilter{
		CargoType:    c.Query("cargo"),
		SalesRep:     c.Query("sales"),
		ShippingLine: c.Query("line"),
	})
	c.JSON(http.StatusOK, utils.Paginate(leads, offset, limit))
}

// HandleCreateLead handles POST /api/leads requests
func (cr *CRMRouter) HandleCreateLead(c *gin.Context) {
	var req model.LeadFields
	if !bindJSON(c, &req) {
		return
	}
	lead, err := cr.svc.CreateLead(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err, "create lead")
		return
	}
	c.JSON(http.StatusCreated, lead)
}

// HandleGetLead handles GET /api/leads/:id requests
func (cr *CRMRouter) HandleGetLead(c *gin.Context) {
	lead, err := cr.svc.GetLead(c.Param("id"))
	if err != nil {
		writeServiceError(c, err, "get lead")
		return
	}
	c.JSON(http.StatusOK, lead)
}

// HandleUpdateLead handles PUT /api/leads/:id requests
func (cr *CRMRouter) HandleUpdateLead(c *gin.Context) {
	id := c.Param("id")
	var req model.LeadFields
	if !bindJSON(c, &req) {
		return
	}
	found, err := cr.svc.UpdateLead(c.Request.Context(), id, req)
	if err != nil {
		writeServiceError(c, err, "update lead")
		return
	}
	if !writeNotFoundUnless(c, found, "lead", id) {
		return
	}
	cr.respondLead(c, id)
}

// HandleSetLeadStatus handles PUT /api/leads/:id/status requests
func (cr *CRMRouter) HandleSetLeadStatus(c *gin.Context) {
	id := c.Param("id")
	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}
	found, err := cr.svc.SetLeadStatus(c.Request.Context(), id, model.LeadStatus(req.Status))
	if err != nil {
		writeServiceError(c, err, "set lead status")
		return
	}
	if !writeNotFoundUnless(c, found, "lead", id) {
		return
	}
	cr.respondLead(c, id)
}

// HandleDeleteLead handles DELETE /api/leads/:id requests
func (cr *CRMRouter) HandleDeleteLead(c *gin.Context) {
	id := c.Param("id")
	found, err := cr.svc.DeleteLead(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err, "delete lead")
		return
	}
	if !writeNotFoundUnless(c, found, "lead", id) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (cr *CRMRouter) respondLead(c *gin.Context, id string) {
	lead, err := cr.svc.GetLead(id)
	if err != nil {
		writeServiceError(c, err, "get lead")
		return
	}
	c.JSON(http.StatusOK, lead)
}
