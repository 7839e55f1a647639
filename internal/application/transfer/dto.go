package transfer

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/transfer"
)

// TransferLineInput is one requested line on a new transfer
type TransferLineInput struct {
	ItemID       uuid.UUID       `json:"item_id" binding:"required"`
	Quantity     decimal.Decimal `json:"quantity" binding:"required"`
	LotNumber    string          `json:"lot_number"`
	SerialNumber string          `json:"serial_number"`
}

// CreateTransferCommand opens a transfer in PENDING
type CreateTransferCommand struct {
	FromLocationID uuid.UUID           `json:"from_location_id" binding:"required"`
	ToLocationID   uuid.UUID           `json:"to_location_id" binding:"required"`
	Lines          []TransferLineInput `json:"lines" binding:"required,min=1,dive"`
	Notes          string              `json:"notes"`
}

// ShipTransferCommand ships a pending transfer; Lines may override quantities
type ShipTransferCommand struct {
	TransferID uuid.UUID           `json:"transfer_id" binding:"required"`
	Lines      []transfer.ShipLine `json:"lines"`
}

// ReceiveTransferCommand completes an in-transit transfer
type ReceiveTransferCommand struct {
	TransferID uuid.UUID              `json:"transfer_id" binding:"required"`
	Lines      []transfer.ReceiveLine `json:"lines"`
}

// TransferLineView is the read model for a transfer line
type TransferLineView struct {
	ID                uuid.UUID       `json:"id"`
	ItemID            uuid.UUID       `json:"item_id"`
	LotNumber         string          `json:"lot_number,omitempty"`
	SerialNumber      string          `json:"serial_number,omitempty"`
	QuantityRequested decimal.Decimal `json:"quantity_requested"`
	QuantityShipped   decimal.Decimal `json:"quantity_shipped"`
	QuantityReceived  decimal.Decimal `json:"quantity_received"`
}

// TransferView is the read model for a transfer
type TransferView struct {
	ID             uuid.UUID          `json:"id"`
	TransferNumber string             `json:"transfer_number"`
	FromLocationID uuid.UUID          `json:"from_location_id"`
	ToLocationID   uuid.UUID          `json:"to_location_id"`
	Status         string             `json:"status"`
	Lines          []TransferLineView `json:"lines"`
	Notes          string             `json:"notes,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	ShippedAt      *time.Time         `json:"shipped_at,omitempty"`
	CompletedAt    *time.Time         `json:"completed_at,omitempty"`
}

// NewTransferView builds the read model from a transfer
func NewTransferView(t *transfer.Transfer) TransferView {
	lines := make([]TransferLineView, 0, len(t.Lines))
	for _, line := range t.Lines {
		lines = append(lines, TransferLineView{
			ID:                line.ID,
			ItemID:            line.ItemID,
			LotNumber:         line.LotNumber,
			SerialNumber:      line.SerialNumber,
			QuantityRequested: line.QuantityRequested,
			QuantityShipped:   line.QuantityShipped,
			QuantityReceived:  line.QuantityReceived,
		})
	}
	return TransferView{
		ID:             t.ID,
		TransferNumber: t.TransferNumber,
		FromLocationID: t.FromLocationID,
		ToLocationID:   t.ToLocationID,
		Status:         t.Status.String(),
		Lines:          lines,
		Notes:          t.Notes,
		CreatedAt:      t.CreatedAt,
		ShippedAt:      t.ShippedAt,
		CompletedAt:    t.CompletedAt,
	}
}
