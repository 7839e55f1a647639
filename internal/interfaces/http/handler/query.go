package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appinventory "github.com/hestami-ai/ai-home-maintenance-sub013/internal/application/inventory"
	appprocurement "github.com/hestami-ai/ai-home-maintenance-sub013/internal/application/procurement"
	apptransfer "github.com/hestami-ai/ai-home-maintenance-sub013/internal/application/transfer"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/inventory"
)

// QueryHandler serves reads of the transaction core, plus draft-order
// deletion, the one mutation that runs outside the action pipeline
type QueryHandler struct {
	ledger    *appinventory.LedgerService
	usages    *appinventory.MaterialUsageService
	orders    *appprocurement.PurchaseOrderService
	transfers *apptransfer.TransferService
}

// NewQueryHandler creates a QueryHandler
func NewQueryHandler(
	ledger *appinventory.LedgerService,
	usages *appinventory.MaterialUsageService,
	orders *appprocurement.PurchaseOrderService,
	transfers *apptransfer.TransferService,
) *QueryHandler {
	return &QueryHandler{ledger: ledger, usages: usages, orders: orders, transfers: transfers}
}

// RegisterRoutes registers the read endpoints
func (h *QueryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/stock-levels", h.GetStockLevel)
	rg.GET("/locations/:id/stock-levels", h.ListStockByLocation)
	rg.GET("/purchase-orders/:id", h.GetPurchaseOrder)
	rg.DELETE("/purchase-orders/:id", h.DeletePurchaseOrder)
	rg.GET("/transfers/:id", h.GetTransfer)
	rg.GET("/jobs/:id/material-usages", h.ListUsagesByJob)
}

// GetStockLevel returns one ledger row identified by query parameters
func (h *QueryHandler) GetStockLevel(c *gin.Context) {
	tenantID, ok := tenantFrom(c)
	if !ok {
		return
	}
	itemID, err := uuid.Parse(c.Query("item_id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_INPUT", "item_id must be a UUID")
		return
	}
	locationID, err := uuid.Parse(c.Query("location_id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_INPUT", "location_id must be a UUID")
		return
	}

	view, err := h.ledger.GetLevel(c.Request.Context(), tenantID, inventory.StockKey{
		ItemID:       itemID,
		LocationID:   locationID,
		LotNumber:    c.Query("lot_number"),
		SerialNumber: c.Query("serial_number"),
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, view)
}

// ListStockByLocation returns every ledger row at one location
func (h *QueryHandler) ListStockByLocation(c *gin.Context) {
	tenantID, ok := tenantFrom(c)
	if !ok {
		return
	}
	locationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_INPUT", "location id must be a UUID")
		return
	}

	views, err := h.ledger.ListByLocation(c.Request.Context(), tenantID, locationID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, views)
}

// GetPurchaseOrder returns one purchase order with its lines
func (h *QueryHandler) GetPurchaseOrder(c *gin.Context) {
	tenantID, ok := tenantFrom(c)
	if !ok {
		return
	}
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_INPUT", "order id must be a UUID")
		return
	}

	view, err := h.orders.Get(c.Request.Context(), tenantID, orderID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, view)
}

// DeletePurchaseOrder hard-removes an order still in DRAFT
func (h *QueryHandler) DeletePurchaseOrder(c *gin.Context) {
	tenantID, ok := tenantFrom(c)
	if !ok {
		return
	}
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_INPUT", "order id must be a UUID")
		return
	}

	if err := h.orders.Delete(c.Request.Context(), tenantID, orderID); err != nil {
		respondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetTransfer returns one transfer with its lines
func (h *QueryHandler) GetTransfer(c *gin.Context) {
	tenantID, ok := tenantFrom(c)
	if !ok {
		return
	}
	transferID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_INPUT", "transfer id must be a UUID")
		return
	}

	view, err := h.transfers.Get(c.Request.Context(), tenantID, transferID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, view)
}

// ListUsagesByJob returns every material usage recorded against a job
func (h *QueryHandler) ListUsagesByJob(c *gin.Context) {
	tenantID, ok := tenantFrom(c)
	if !ok {
		return
	}
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_INPUT", "job id must be a UUID")
		return
	}

	views, err := h.usages.ListByJob(c.Request.Context(), tenantID, jobID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	respondOK(c, views)
}

func tenantFrom(c *gin.Context) (uuid.UUID, bool) {
	tenantID, err := uuid.Parse(c.GetHeader(HeaderTenantID))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_TENANT", "X-Tenant-ID header must be a UUID")
		return uuid.Nil, false
	}
	return tenantID, true
}
