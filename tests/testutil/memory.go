// Package testutil provides in-memory repository and transaction scope
// implementations for application-layer tests. The scope serializes units
// with one mutex, which reproduces the exclusive row access the database
// gives via row locks.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/application/workflow"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/inventory"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/procurement"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/shared"
	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/transfer"
)

// MemoryStore holds all aggregate state behind the in-memory repositories
type MemoryStore struct {
	clock shared.Clock

	mu sync.Mutex

	items     map[uuid.UUID]inventory.InventoryItem
	locations map[uuid.UUID]inventory.InventoryLocation
	levels    map[string]inventory.StockLevel
	movements []inventory.StockMovement
	usages    map[uuid.UUID]inventory.MaterialUsage
	orders    map[uuid.UUID]procurement.PurchaseOrder
	transfers map[uuid.UUID]transfer.Transfer

	poSeq  map[uuid.UUID]int64
	trfSeq map[uuid.UUID]int64
}

// NewMemoryStore creates an empty store; the clock stamps lazily created
// ledger rows
func NewMemoryStore(clock shared.Clock) *MemoryStore {
	return &MemoryStore{
		clock:     clock,
		items:     make(map[uuid.UUID]inventory.InventoryItem),
		locations: make(map[uuid.UUID]inventory.InventoryLocation),
		levels:    make(map[string]inventory.StockLevel),
		usages:    make(map[uuid.UUID]inventory.MaterialUsage),
		orders:    make(map[uuid.UUID]procurement.PurchaseOrder),
		transfers: make(map[uuid.UUID]transfer.Transfer),
		poSeq:     make(map[uuid.UUID]int64),
		trfSeq:    make(map[uuid.UUID]int64),
	}
}

// Scope returns a TransactionScope over this store
func (s *MemoryStore) Scope() workflow.TransactionScope {
	return &memoryScope{store: s}
}

// SeedItem stores an item directly, outside any scope
func (s *MemoryStore) SeedItem(item *inventory.InventoryItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = *item
}

// SeedLocation stores a location directly, outside any scope
func (s *MemoryStore) SeedLocation(location *inventory.InventoryLocation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations[location.ID] = *location
}

// Movements returns a snapshot of the recorded audit trail
func (s *MemoryStore) Movements() []inventory.StockMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]inventory.StockMovement, len(s.movements))
	copy(out, s.movements)
	return out
}

func levelKey(tenantID uuid.UUID, key inventory.StockKey) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s", tenantID, key.ItemID, key.LocationID, key.LotNumber, key.SerialNumber)
}

// memoryScope serializes atomic units with the store mutex. Units are not
// rolled back on failure; tests assert on observable state after success
// paths and rely on domain validation running before any write.
type memoryScope struct {
	store *MemoryStore
}

func (s *memoryScope) Execute(_ context.Context, fn func(repos workflow.Repositories) error) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	return fn(&memoryRepos{store: s.store})
}

type memoryRepos struct {
	store *MemoryStore
}

func (r *memoryRepos) Items() inventory.ItemRepository { return (*memoryItemRepo)(r) }

func (r *memoryRepos) Locations() inventory.LocationRepository { return (*memoryLocationRepo)(r) }

func (r *memoryRepos) StockLevels() inventory.StockLevelRepository { return (*memoryLevelRepo)(r) }

func (r *memoryRepos) Movements() inventory.StockMovementRepository { return (*memoryMovementRepo)(r) }

func (r *memoryRepos) Usages() inventory.MaterialUsageRepository { return (*memoryUsageRepo)(r) }

func (r *memoryRepos) PurchaseOrders() procurement.PurchaseOrderRepository {
	return (*memoryOrderRepo)(r)
}

func (r *memoryRepos) Transfers() transfer.TransferRepository { return (*memoryTransferRepo)(r) }

type memoryItemRepo memoryRepos

func (r *memoryItemRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*inventory.InventoryItem, error) {
	item, ok := r.store.items[id]
	if !ok || item.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	out := item
	return &out, nil
}

func (r *memoryItemRepo) FindBySKU(_ context.Context, tenantID uuid.UUID, sku string) (*inventory.InventoryItem, error) {
	for _, item := range r.store.items {
		if item.TenantID == tenantID && item.SKU == sku {
			out := item
			return &out, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryItemRepo) Save(_ context.Context, item *inventory.InventoryItem) error {
	r.store.items[item.ID] = *item
	return nil
}

type memoryLocationRepo memoryRepos

func (r *memoryLocationRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*inventory.InventoryLocation, error) {
	location, ok := r.store.locations[id]
	if !ok || location.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	out := location
	return &out, nil
}

func (r *memoryLocationRepo) Save(_ context.Context, location *inventory.InventoryLocation) error {
	r.store.locations[location.ID] = *location
	return nil
}

type memoryLevelRepo memoryRepos

func (r *memoryLevelRepo) FindByKey(_ context.Context, tenantID uuid.UUID, key inventory.StockKey) (*inventory.StockLevel, error) {
	level, ok := r.store.levels[levelKey(tenantID, key)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	out := level
	return &out, nil
}

func (r *memoryLevelRepo) GetOrCreateForUpdate(_ context.Context, tenantID uuid.UUID, key inventory.StockKey) (*inventory.StockLevel, error) {
	if level, ok := r.store.levels[levelKey(tenantID, key)]; ok {
		out := level
		return &out, nil
	}
	level, err := inventory.NewStockLevel(tenantID, key, r.store.clock.Now())
	if err != nil {
		return nil, err
	}
	r.store.levels[levelKey(tenantID, key)] = *level
	out := *level
	return &out, nil
}

func (r *memoryLevelRepo) FindByLocation(_ context.Context, tenantID, locationID uuid.UUID) ([]inventory.StockLevel, error) {
	var out []inventory.StockLevel
	for _, level := range r.store.levels {
		if level.TenantID == tenantID && level.LocationID == locationID {
			out = append(out, level)
		}
	}
	return out, nil
}

func (r *memoryLevelRepo) Save(_ context.Context, level *inventory.StockLevel) error {
	r.store.levels[levelKey(level.TenantID, level.Key())] = *level
	return nil
}

type memoryMovementRepo memoryRepos

func (r *memoryMovementRepo) Create(_ context.Context, movement *inventory.StockMovement) error {
	r.store.movements = append(r.store.movements, *movement)
	return nil
}

func (r *memoryMovementRepo) FindBySource(_ context.Context, tenantID uuid.UUID, sourceType, sourceID string) ([]inventory.StockMovement, error) {
	var out []inventory.StockMovement
	for _, m := range r.store.movements {
		if m.TenantID == tenantID && m.SourceType == sourceType && m.SourceID == sourceID {
			out = append(out, m)
		}
	}
	return out, nil
}

type memoryUsageRepo memoryRepos

func (r *memoryUsageRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*inventory.MaterialUsage, error) {
	usage, ok := r.store.usages[id]
	if !ok || usage.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	out := usage
	return &out, nil
}

func (r *memoryUsageRepo) FindByJob(_ context.Context, tenantID, jobID uuid.UUID) ([]inventory.MaterialUsage, error) {
	var out []inventory.MaterialUsage
	for _, usage := range r.store.usages {
		if usage.TenantID == tenantID && usage.JobID == jobID {
			out = append(out, usage)
		}
	}
	return out, nil
}

func (r *memoryUsageRepo) Create(_ context.Context, usage *inventory.MaterialUsage) error {
	if _, exists := r.store.usages[usage.ID]; exists {
		return shared.ErrAlreadyExists
	}
	r.store.usages[usage.ID] = *usage
	return nil
}

func (r *memoryUsageRepo) Save(_ context.Context, usage *inventory.MaterialUsage) error {
	r.store.usages[usage.ID] = *usage
	return nil
}

type memoryOrderRepo memoryRepos

func (r *memoryOrderRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*procurement.PurchaseOrder, error) {
	order, ok := r.store.orders[id]
	if !ok || order.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return copyOrder(order), nil
}

func (r *memoryOrderRepo) FindByNumber(_ context.Context, tenantID uuid.UUID, poNumber string) (*procurement.PurchaseOrder, error) {
	for _, order := range r.store.orders {
		if order.TenantID == tenantID && order.PONumber == poNumber {
			return copyOrder(order), nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryOrderRepo) FindByStatus(_ context.Context, tenantID uuid.UUID, status procurement.PurchaseOrderStatus) ([]procurement.PurchaseOrder, error) {
	var out []procurement.PurchaseOrder
	for _, order := range r.store.orders {
		if order.TenantID == tenantID && order.Status == status {
			out = append(out, *copyOrder(order))
		}
	}
	return out, nil
}

func (r *memoryOrderRepo) Save(_ context.Context, order *procurement.PurchaseOrder) error {
	r.store.orders[order.ID] = *copyOrder(*order)
	return nil
}

func (r *memoryOrderRepo) Delete(_ context.Context, tenantID, id uuid.UUID) error {
	order, ok := r.store.orders[id]
	if !ok || order.TenantID != tenantID {
		return shared.ErrNotFound
	}
	delete(r.store.orders, id)
	return nil
}

func (r *memoryOrderRepo) NextSequence(_ context.Context, tenantID uuid.UUID) (int64, error) {
	r.store.poSeq[tenantID]++
	return r.store.poSeq[tenantID], nil
}

type memoryTransferRepo memoryRepos

func (r *memoryTransferRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*transfer.Transfer, error) {
	t, ok := r.store.transfers[id]
	if !ok || t.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return copyTransfer(t), nil
}

func (r *memoryTransferRepo) FindByNumber(_ context.Context, tenantID uuid.UUID, transferNumber string) (*transfer.Transfer, error) {
	for _, t := range r.store.transfers {
		if t.TenantID == tenantID && t.TransferNumber == transferNumber {
			return copyTransfer(t), nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryTransferRepo) FindByStatus(_ context.Context, tenantID uuid.UUID, status transfer.TransferStatus) ([]transfer.Transfer, error) {
	var out []transfer.Transfer
	for _, t := range r.store.transfers {
		if t.TenantID == tenantID && t.Status == status {
			out = append(out, *copyTransfer(t))
		}
	}
	return out, nil
}

func (r *memoryTransferRepo) Save(_ context.Context, t *transfer.Transfer) error {
	r.store.transfers[t.ID] = *copyTransfer(*t)
	return nil
}

func (r *memoryTransferRepo) NextSequence(_ context.Context, tenantID uuid.UUID) (int64, error) {
	r.store.trfSeq[tenantID]++
	return r.store.trfSeq[tenantID], nil
}

func copyOrder(order procurement.PurchaseOrder) *procurement.PurchaseOrder {
	out := order
	out.Lines = make([]procurement.PurchaseOrderLine, len(order.Lines))
	copy(out.Lines, order.Lines)
	return &out
}

func copyTransfer(t transfer.Transfer) *transfer.Transfer {
	out := t
	out.Lines = make([]transfer.TransferLine, len(t.Lines))
	copy(out.Lines, t.Lines)
	return &out
}
