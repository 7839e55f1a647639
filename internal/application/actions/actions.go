package actions

import (
	"context"
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	appinventory "github.com/hestami-ai/ai-home-maintenance-sub013/internal/application/inventory"
	appprocurement "github.com/hestami-ai/ai-home-maintenance-sub013/internal/application/procurement"
	apptransfer "github.com/hestami-ai/ai-home-maintenance-sub013/internal/application/transfer"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/application/workflow"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/shared"
)

// Services groups the application services the workflow actions dispatch to
type Services struct {
	Ledger         *appinventory.LedgerService
	Usage          *appinventory.MaterialUsageService
	PurchaseOrders *appprocurement.PurchaseOrderService
	Transfers      *apptransfer.TransferService
}

// orderRef identifies an existing purchase order in a payload
type orderRef struct {
	OrderID uuid.UUID `json:"order_id" binding:"required"`
}

// transferRef identifies an existing transfer in a payload
type transferRef struct {
	TransferID uuid.UUID `json:"transfer_id" binding:"required"`
}

// validate enforces the binding tags on decoded payloads, the same tags gin
// uses for request binding
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	return v
}

// RegisterAll binds every business action to its handler. Payload decoding
// happens here; everything past this point works with typed commands.
func RegisterAll(executor *workflow.Executor, services Services) {
	executor.Register(workflow.ActionStockAdjust, func(ctx context.Context, cmd workflow.Command) (*workflow.Result, error) {
		var payload appinventory.AdjustStockCommand
		if err := decode(cmd.Payload, &payload); err != nil {
			return nil, err
		}
		view, err := services.Ledger.Adjust(ctx, cmd.TenantID, payload)
		if err != nil {
			return nil, err
		}
		return resultOf(view.ID, view)
	})

	executor.Register(workflow.ActionStockReserve, func(ctx context.Context, cmd workflow.Command) (*workflow.Result, error) {
		var payload appinventory.ReserveStockCommand
		if err := decode(cmd.Payload, &payload); err != nil {
			return nil, err
		}
		view, err := services.Ledger.Reserve(ctx, cmd.TenantID, payload)
		if err != nil {
			return nil, err
		}
		return resultOf(view.ID, view)
	})

	executor.Register(workflow.ActionStockRelease, func(ctx context.Context, cmd workflow.Command) (*workflow.Result, error) {
		var payload appinventory.ReleaseStockCommand
		if err := decode(cmd.Payload, &payload); err != nil {
			return nil, err
		}
		view, err := services.Ledger.Release(ctx, cmd.TenantID, payload)
		if err != nil {
			return nil, err
		}
		return resultOf(view.ID, view)
	})

	executor.Register(workflow.ActionStockCount, func(ctx context.Context, cmd workflow.Command) (*workflow.Result, error) {
		var payload appinventory.CountStockCommand
		if err := decode(cmd.Payload, &payload); err != nil {
			return nil, err
		}
		view, err := services.Ledger.RecordCount(ctx, cmd.TenantID, payload)
		if err != nil {
			return nil, err
		}
		return resultOf(view.ID, view)
	})

	executor.Register(workflow.ActionUsageRecord, func(ctx context.Context, cmd workflow.Command) (*workflow.Result, error) {
		var payload appinventory.RecordUsageCommand
		if err := decode(cmd.Payload, &payload); err != nil {
			return nil, err
		}
		view, err := services.Usage.Record(ctx, cmd.TenantID, payload)
		if err != nil {
			return nil, err
		}
		return resultOf(view.ID, view)
	})

	executor.Register(workflow.ActionUsageReverse, func(ctx context.Context, cmd workflow.Command) (*workflow.Result, error) {
		var payload appinventory.ReverseUsageCommand
		if err := decode(cmd.Payload, &payload); err != nil {
			return nil, err
		}
		view, err := services.Usage.Reverse(ctx, cmd.TenantID, payload)
		if err != nil {
			return nil, err
		}
		return resultOf(view.ID, view)
	})

	executor.Register(workflow.ActionPOCreate, func(ctx context.Context, cmd workflow.Command) (*workflow.Result, error) {
		var payload appprocurement.CreatePurchaseOrderCommand
		if err := decode(cmd.Payload, &payload); err != nil {
			return nil, err
		}
		view, err := services.PurchaseOrders.Create(ctx, cmd.TenantID, payload)
		if err != nil {
			return nil, err
		}
		return resultOf(view.ID, view)
	})

	executor.Register(workflow.ActionPOSubmit, func(ctx context.Context, cmd workflow.Command) (*workflow.Result, error) {
		var ref orderRef
		if err := decode(cmd.Payload, &ref); err != nil {
			return nil, err
		}
		view, err := services.PurchaseOrders.Submit(ctx, cmd.TenantID, ref.OrderID)
		if err != nil {
			return nil, err
		}
		return resultOf(view.ID, view)
	})

	executor.Register(workflow.ActionPOConfirm, func(ctx context.Context, cmd workflow.Command) (*workflow.Result, error) {
		var ref orderRef
		if err := decode(cmd.Payload, &ref); err != nil {
			return nil, err
		}
		view, err := services.PurchaseOrders.Confirm(ctx, cmd.TenantID, ref.OrderID)
		if err != nil {
			return nil, err
		}
		return resultOf(view.ID, view)
	})

	executor.Register(workflow.ActionPOReceive, func(ctx context.Context, cmd workflow.Command) (*workflow.Result, error) {
		var payload appprocurement.ReceiveOrderCommand
		if err := decode(cmd.Payload, &payload); err != nil {
			return nil, err
		}
		view, err := services.PurchaseOrders.Receive(ctx, cmd.TenantID, payload)
		if err != nil {
			return nil, err
		}
		return resultOf(view.ID, view)
	})

	executor.Register(workflow.ActionPOCancel, func(ctx context.Context, cmd workflow.Command) (*workflow.Result, error) {
		var ref orderRef
		if err := decode(cmd.Payload, &ref); err != nil {
			return nil, err
		}
		view, err := services.PurchaseOrders.Cancel(ctx, cmd.TenantID, ref.OrderID)
		if err != nil {
			return nil, err
		}
		return resultOf(view.ID, view)
	})

	executor.Register(workflow.ActionTransferCreate, func(ctx context.Context, cmd workflow.Command) (*workflow.Result, error) {
		var payload apptransfer.CreateTransferCommand
		if err := decode(cmd.Payload, &payload); err != nil {
			return nil, err
		}
		view, err := services.Transfers.Create(ctx, cmd.TenantID, payload)
		if err != nil {
			return nil, err
		}
		return resultOf(view.ID, view)
	})

	executor.Register(workflow.ActionTransferShip, func(ctx context.Context, cmd workflow.Command) (*workflow.Result, error) {
		var payload apptransfer.ShipTransferCommand
		if err := decode(cmd.Payload, &payload); err != nil {
			return nil, err
		}
		view, err := services.Transfers.Ship(ctx, cmd.TenantID, payload)
		if err != nil {
			return nil, err
		}
		return resultOf(view.ID, view)
	})

	executor.Register(workflow.ActionTransferReceive, func(ctx context.Context, cmd workflow.Command) (*workflow.Result, error) {
		var payload apptransfer.ReceiveTransferCommand
		if err := decode(cmd.Payload, &payload); err != nil {
			return nil, err
		}
		view, err := services.Transfers.Receive(ctx, cmd.TenantID, payload)
		if err != nil {
			return nil, err
		}
		return resultOf(view.ID, view)
	})

	executor.Register(workflow.ActionTransferCancel, func(ctx context.Context, cmd workflow.Command) (*workflow.Result, error) {
		var ref transferRef
		if err := decode(cmd.Payload, &ref); err != nil {
			return nil, err
		}
		view, err := services.Transfers.Cancel(ctx, cmd.TenantID, ref.TransferID)
		if err != nil {
			return nil, err
		}
		return resultOf(view.ID, view)
	})
}

// decode rejects malformed payloads as a permanent business failure so the
// same bad request replays the same rejection
func decode(payload json.RawMessage, target any) error {
	if len(payload) == 0 {
		return shared.NewDomainError("INVALID_PAYLOAD", "Payload is required")
	}
	if err := json.Unmarshal(payload, target); err != nil {
		return shared.NewDomainError("INVALID_PAYLOAD", "Payload does not match the action schema")
	}
	if err := validate.Struct(target); err != nil {
		return shared.NewDomainError("INVALID_PAYLOAD", "Payload failed validation: "+err.Error())
	}
	return nil
}

func resultOf(entityID uuid.UUID, view any) (*workflow.Result, error) {
	data, err := json.Marshal(view)
	if err != nil {
		return nil, err
	}
	return &workflow.Result{
		Success:  true,
		EntityID: entityID.String(),
		Data:     data,
	}, nil
}
