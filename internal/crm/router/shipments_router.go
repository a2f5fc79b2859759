package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amzmarine/crm/internal/crm/model"
	"github.com/amzmarine/crm/internal/crm/service"
	"github.com/amzmarine/crm/utils"
)

type customsRequest struct {
	DetailedCustomsStatus model.CustomsStatus     `json:"detailedCustomsStatus"`
	Details               *service.CustomsDetails `json:"details"`
}

type addDocumentRequest struct {
	Name string `json:"name" binding:"required"`
	Type string `json:"type"`
}

type verifyDocumentRequest struct {
	ReviewerNotes string `json:"reviewerNotes"`
}

// ShipmentResponse is a shipment together with its derived total inland cost.
type ShipmentResponse struct {
	model.Shipment
	TotalInlandCost float64 `json:"totalInlandCost"`
}

func newShipmentResponse(s model.Shipment) ShipmentResponse {
	return ShipmentResponse{Shipment: s, TotalInlandCost: s.TotalInlandCost()}
}

func newShipmentResponses(shipments []model.Shipment) []ShipmentResponse {
	out := make([]ShipmentResponse, len(shipments))
	for i, s := range shipments {
		out[i] = newShipmentResponse(s)
	}
	return out
}

// CustomsEntry is one row of the customs clearance view.
type CustomsEntry struct {
	ShipmentResponse
	NeedsAction      bool    `json:"needsAction"`
	TimelineProgress float64 `json:"timelineProgress"`
	DocsVerified     int     `json:"docsVerified"`
	DocsTotal        int     `json:"docsTotal"`
}

// HandleListShipments handles GET /api/shipments requests
// Optional Query Filters: direction, line, sales, q, priority, offset, limit
func (cr *CRMRouter) HandleListShipments(c *gin.Context) {
	offset, limit, ok := paginationParams(c)
	if !ok {
		return
	}
	shipments := service.FilterShipments(cr.svc.Shipments(), shipmentFilter(c))
	c.JSON(http.StatusOK, utils.Paginate(newShipmentResponses(shipments), offset, limit))
}

func shipmentFilter(c *gin.Context) service.ShipmentFilter {
	return service.ShipmentFilter{
		Direction:       c.Query("direction"),
		ShippingLine:    c.Query("line"),
		SalesRep:        c.Query("sales"),
		Query:           c.Query("q"),
		CustomsPriority: c.Query("priority"),
	}
}

// HandleCreateShipment handles POST /api/shipments requests
func (cr *CRMRouter) HandleCreateShipment(c *gin.Context) {
	var req model.ShipmentFields
	if !bindJSON(c, &req) {
		return
	}
	shipment, err := cr.svc.CreateShipment(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err, "create shipment")
		return
	}
	c.JSON(http.StatusCreated, newShipmentResponse(*shipment))
}

// HandleGetShipment handles GET /api/shipments/:id requests
func (cr *CRMRouter) HandleGetShipment(c *gin.Context) {
	cr.respondShipment(c, c.Param("id"))
}

// HandleTrackShipment handles GET /api/shipments/tracking/:trackingNumber requests
func (cr *CRMRouter) HandleTrackShipment(c *gin.Context) {
	shipment, err := cr.svc.FindShipmentByTrackingNumber(c.Param("trackingNumber"))
	if err != nil {
		writeServiceError(c, err, "track shipment")
		return
	}
	c.JSON(http.StatusOK, newShipmentResponse(*shipment))
}

// HandleUpdateShipment handles PUT /api/shipments/:id requests
func (cr *CRMRouter) HandleUpdateShipment(c *gin.Context) {
	id := c.Param("id")
	var req model.ShipmentFields
	if !bindJSON(c, &req) {
		return
	}
	found, err := cr.svc.UpdateShipment(c.Request.Context(), id, req)
	if err != nil {
		writeServiceError(c, err, "update shipment")
		return
	}
	if !writeNotFoundUnless(c, found, "shipment", id) {
		return
	}
	cr.respondShipment(c, id)
}

// HandleSetShipmentStatus handles PUT /api/shipments/:id/status requests
func (cr *CRMRouter) HandleSetShipmentStatus(c *gin.Context) {
	id := c.Param("id")
	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}
	found, err := cr.svc.SetShipmentStatus(c.Request.Context(), id, model.ShipmentStatus(req.Status))
	if err != nil {
		writeServiceError(c, err, "set shipment status")
		return
	}
	if !writeNotFoundUnless(c, found, "shipment", id) {
		return
	}
	cr.respondShipment(c, id)
}

// HandleUpdateCustoms handles PUT /api/shipments/:id/customs requests
// Body: detailedCustomsStatus and/or details {customsBroker, customsDeclarationNumber, customsNotes}
func (cr *CRMRouter) HandleUpdateCustoms(c *gin.Context) {
	id := c.Param("id")
	var req customsRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.DetailedCustomsStatus == "" && req.Details == nil {
		writeError(c, http.StatusBadRequest, "invalid_request", "detailedCustomsStatus or details is required")
		return
	}

	ctx := c.Request.Context()
	if req.DetailedCustomsStatus != "" {
		found, err := cr.svc.SetDetailedCustomsStatus(ctx, id, req.DetailedCustomsStatus)
		if err != nil {
			writeServiceError(c, err, "set customs status")
			return
		}
		if !writeNotFoundUnless(c, found, "shipment", id) {
			return
		}
	}
	if req.Details != nil {
		found, err := cr.svc.UpdateCustomsDetails(ctx, id, *req.Details)
		if err != nil {
			writeServiceError(c, err, "update customs details")
			return
		}
		if !writeNotFoundUnless(c, found, "shipment", id) {
			return
		}
	}
	cr.respondShipment(c, id)
}

// HandleDeleteShipment handles DELETE /api/shipments/:id requests
func (cr *CRMRouter) HandleDeleteShipment(c *gin.Context) {
	id := c.Param("id")
	found, err := cr.svc.DeleteShipment(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err, "delete shipment")
		return
	}
	if !writeNotFoundUnless(c, found, "shipment", id) {
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleAddDocument handles POST /api/shipments/:id/documents requests
func (cr *CRMRouter) HandleAddDocument(c *gin.Context) {
	var req addDocumentRequest
	if !bindJSON(c, &req) {
		return
	}
	doc, err := cr.svc.AddDocument(c.Request.Context(), c.Param("id"), req.Name, req.Type)
	if err != nil {
		writeServiceError(c, err, "add document")
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// HandleToggleDocument handles POST /api/shipments/:id/documents/:docId/toggle requests
func (cr *CRMRouter) HandleToggleDocument(c *gin.Context) {
	id, docID := c.Param("id"), c.Param("docId")
	found, err := cr.svc.ToggleDocumentStatus(c.Request.Context(), id, docID)
	if err != nil {
		writeServiceError(c, err, "toggle document")
		return
	}
	if !writeNotFoundUnless(c, found, "document", docID) {
		return
	}
	cr.respondShipment(c, id)
}

// HandleVerifyDocument handles POST /api/shipments/:id/documents/:docId/verify requests
func (cr *CRMRouter) HandleVerifyDocument(c *gin.Context) {
	id, docID := c.Param("id"), c.Param("docId")
	var req verifyDocumentRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	found, err := cr.svc.VerifyDocument(c.Request.Context(), id, docID, req.ReviewerNotes)
	if err != nil {
		writeServiceError(c, err, "verify document")
		return
	}
	if !writeNotFoundUnless(c, found, "document", docID) {
		return
	}
	cr.respondShipment(c, id)
}

// HandleCustomsView handles GET /api/customs requests
// Optional Query Filters: priority=Priority, direction, line, sales, q
func (cr *CRMRouter) HandleCustomsView(c *gin.Context) {
	shipments := service.FilterShipments(cr.svc.Shipments(), shipmentFilter(c))
	entries := make([]CustomsEntry, len(shipments))
	for i, s := range shipments {
		verified, total := service.DocumentCompliance(s)
		entries[i] = CustomsEntry{
			ShipmentResponse: newShipmentResponse(s),
			NeedsAction:      service.NeedsCustomsAction(s),
			TimelineProgress: service.TimelineProgress(s.Status),
			DocsVerified:     verified,
			DocsTotal:        total,
		}
	}
	c.JSON(http.StatusOK, entries)
}

func (cr *CRMRouter) respondShipment(c *gin.Context, id string) {
	shipment, err := cr.svc.GetShipment(id)
	if err != nil {
		writeServiceError(c, err, "get shipment")
		return
	}
	c.JSON(http.StatusOK, newShipmentResponse(*shipment))
}
