package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"order-amendment-service/internal/service"
	"order-amendment-service/internal/store"
	"order-amendment-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	amendments *service.AmendmentService
	catalog    *service.CatalogService
}

// NewHandler creates a new HTTP handler
func NewHandler(amendments *service.AmendmentService, catalog *service.CatalogService) *Handler {
	return &Handler{
		amendments: amendments,
		catalog:    catalog,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/cafes/:cafe_id/catalog", h.getCatalog)

		v1.POST("/orders/:order_id/edit-sessions", h.openSession)
		v1.GET("/orders/:order_id/edit-log", h.getEditLog)

		v1.GET("/edit-sessions/:session_id", h.getSession)
		v1.POST("/edit-sessions/:session_id/items", h.addItem)
		v1.PATCH("/edit-sessions/:session_id/lines/:handle", h.setQuantity)
		v1.DELETE("/edit-sessions/:session_id/lines/:handle", h.removeLine)
		v1.GET("/edit-sessions/:session_id/preview", h.previewSession)
		v1.POST("/edit-sessions/:session_id/commit", h.commitSession)
		v1.DELETE("/edit-sessions/:session_id", h.discardSession)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// getCatalog returns the normalized catalog for a cafe
func (h *Handler) getCatalog(c *gin.Context) {
	cafeID, err := strconv.ParseInt(c.Param("cafe_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cafe ID"})
		return
	}

	dishes, err := h.catalog.GetCatalog(c.Request.Context(), cafeID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load catalog",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"dishes": dishes})
}

// openSession opens an edit session for an order
func (h *Handler) openSession(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("order_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	var req struct {
		StaffID int64 `json:"staff_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	sess, err := h.amendments.OpenSession(c.Request.Context(), orderID, req.StaffID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sessionResponse(sess))
}

// getSession returns the current working copy of a session
func (h *Handler) getSession(c *gin.Context) {
	sess, err := h.amendments.GetSession(c.Param("session_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionResponse(sess))
}

// addItem adds one unit of a catalog row to the session
func (h *Handler) addItem(c *gin.Context) {
	var req struct {
		CatalogRowID int64 `json:"catalog_row_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	line, err := h.amendments.AddItem(c.Request.Context(), c.Param("session_id"), req.CatalogRowID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"line": line})
}

// setQuantity updates a working line's quantity
func (h *Handler) setQuantity(c *gin.Context) {
	handle, err := strconv.ParseInt(c.Param("handle"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid line handle"})
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := h.amendments.SetQuantity(c.Param("session_id"), handle, req.Quantity); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// removeLine removes a working line from the session
func (h *Handler) removeLine(c *gin.Context) {
	handle, err := strconv.ParseInt(c.Param("handle"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid line handle"})
		return
	}

	if err := h.amendments.RemoveLine(c.Param("session_id"), handle); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

// previewSession returns the pending diff counts and totals
func (h *Handler) previewSession(c *gin.Context) {
	preview, err := h.amendments.PreviewSession(c.Param("session_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, preview)
}

// commitSession applies the session's edits to persisted state
func (h *Handler) commitSession(c *gin.Context) {
	result, err := h.amendments.Commit(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// discardSession abandons a session without committing
func (h *Handler) discardSession(c *gin.Context) {
	if err := h.amendments.DiscardSession(c.Param("session_id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "discarded"})
}

// getEditLog returns the order's amendment history
func (h *Handler) getEditLog(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("order_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	entries, err := h.amendments.GetEditLog(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load edit log",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func sessionResponse(sess *service.Session) gin.H {
	return gin.H{
		"session_id": sess.ID,
		"order_id":   sess.OrderID,
		"staff_id":   sess.StaffID,
		"lines":      sess.Lines(),
		"old_total":  sess.SeededTotal(),
		"new_total":  sess.ComputeTotal(),
	}
}

// respondError maps engine errors onto HTTP statuses
func respondError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	var partialErr *store.PartialCommitError

	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrLineNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrIneligibleOrder):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrEmptySession):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":  err.Error(),
			"reseed": true,
		})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &partialErr):
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":          err.Error(),
			"partial_commit": true,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
