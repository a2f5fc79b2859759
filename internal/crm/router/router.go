// Package router exposes the CRM service over HTTP with gin.
package router

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/amzmarine/crm/internal/config"
	"github.com/amzmarine/crm/internal/crm/model"
	"github.com/amzmarine/crm/internal/crm/service"
	"github.com/amzmarine/crm/internal/middleware"
	"github.com/amzmarine/crm/internal/uploads"
)

// HealthFunc reports whether the backing store is reachable.
type HealthFunc func(ctx context.Context) error

type CRMRouter struct {
	svc     *service.CRMService
	uploads *uploads.HTTPHandler
	health  HealthFunc
}

func NewCRMRouter(svc *service.CRMService, uploadHandler *uploads.HTTPHandler, health HealthFunc) *CRMRouter {
	return &CRMRouter{svc: svc, uploads: uploadHandler, health: health}
}

// NewEngine builds the gin engine with CORS and every CRM route registered.
func NewEngine(cr *CRMRouter, cors *config.CORSConfig) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())
	if cors != nil {
		engine.Use(middleware.CORS(cors))
	}
	cr.Register(engine)
	return engine
}

// Register mounts the CRM routes on r.
func (cr *CRMRouter) Register(r gin.IRouter) {
	r.GET("/healthz", cr.HandleHealth)

	api := r.Group("/api")

	leads := api.Group("/leads")
	leads.GET("", cr.HandleListLeads)
	leads.POST("", cr.HandleCreateLead)
	leads.GET("/:id", cr.HandleGetLead)
	leads.PUT("/:id", cr.HandleUpdateLead)
	leads.DELETE("/:id", cr.HandleDeleteLead)
	leads.PUT("/:id/status", cr.HandleSetLeadStatus)

	shipments := api.Group("/shipments")
	shipments.GET("", cr.HandleListShipments)
	shipments.POST("", cr.HandleCreateShipment)
	shipments.POST("/import", cr.HandleImportShipment)
	shipments.GET("/tracking/:trackingNumber", cr.HandleTrackShipment)
	shipments.GET("/:id", cr.HandleGetShipment)
	shipments.PUT("/:id", cr.HandleUpdateShipment)
	shipments.DELETE("/:id", cr.HandleDeleteShipment)
	shipments.PUT("/:id/status", cr.HandleSetShipmentStatus)
	shipments.PUT("/:id/customs", cr.HandleUpdateCustoms)
	shipments.POST("/:id/documents", cr.HandleAddDocument)
	shipments.POST("/:id/documents/:docId/toggle", cr.HandleToggleDocument)
	shipments.POST("/:id/documents/:docId/verify", cr.HandleVerifyDocument)
	if cr.uploads != nil {
		shipments.POST("/:id/documents/:docId/upload", cr.uploads.UploadDocument)
		api.GET("/uploads/:key", cr.uploads.Download)
	}

	reps := api.Group("/sales-reps")
	reps.GET("", cr.HandleListSalesReps)
	reps.POST("", cr.HandleAddSalesRep)
	reps.DELETE("/:name", cr.HandleRemoveSalesRep)

	api.GET("/customs", cr.HandleCustomsView)
	api.GET("/stats", cr.HandleStats)
	api.GET("/activity", cr.HandleActivity)
	api.GET("/preferences", cr.HandleGetPreferences)
	api.PUT("/preferences", cr.HandleSetPreferences)

	ai := api.Group("/assistant")
	ai.POST("/chat", cr.HandleChat)
	ai.POST("/brief", cr.HandleBrief)
	ai.POST("/query", cr.HandleQuery)
	ai.POST("/images", cr.HandleGenerateImage)
}

// HandleHealth handles GET /healthz requests
func (cr *CRMRouter) HandleHealth(c *gin.Context) {
	if cr.health != nil {
		if err := cr.health(c.Request.Context()); err != nil {
			slog.WarnContext(c.Request.Context(), "health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		slog.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
		)
	}
}

func writeError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": code, "message": message})
}

// writeServiceError maps a service error onto an HTTP status.
func writeServiceError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		writeError(c, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, model.ErrValidation),
		errors.Is(err, model.ErrInvalidStatus),
		errors.Is(err, model.ErrUnknownSalesRep):
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, model.ErrDuplicateSalesRep),
		errors.Is(err, model.ErrInvalidDocumentTransition):
		writeError(c, http.StatusConflict, "conflict", err.Error())
	default:
		slog.ErrorContext(c.Request.Context(), "request failed", "action", action, "error", err)
		writeError(c, http.StatusInternalServerError, "internal_error", "failed to "+action)
	}
}

// writeNotFoundUnless answers 404 when a mutation found nothing to change.
func writeNotFoundUnless(c *gin.Context, found bool, what, id string) bool {
	if !found {
		writeError(c, http.StatusNotFound, "not_found", what+" "+id+" not found")
	}
	return found
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", "invalid request body: "+err.Error())
		return false
	}
	return true
}

// paginationParams reads the optional offset and limit query parameters.
func paginationParams(c *gin.Context) (offset, limit *int, ok bool) {
	parse := func(name string) (*int, bool) {
		raw := c.Query(name)
		if raw == "" {
			return nil, true
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeError(c, http.StatusBadRequest, "invalid_request",
				"invalid '"+name+"' query parameter, must be an integer")
			return nil, false
		}
		return &v, true
	}
	if offset, ok = parse("offset"); !ok {
		return nil, nil, false
	}
	if limit, ok = parse("limit"); !ok {
		return nil, nil, false
	}
	return offset, limit, true
}
