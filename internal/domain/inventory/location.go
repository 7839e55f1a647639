package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/hestami-ai/ai-home-maintenance-sub013/internal/domain/shared"
)

// LocationType classifies a stock point
type LocationType string

const (
	// LocationTypeWarehouse is a fixed branch warehouse
	LocationTypeWarehouse LocationType = "WAREHOUSE"
	// LocationTypeTruck is a technician vehicle carrying stock
	LocationTypeTruck LocationType = "TRUCK"
	// LocationTypeJobsite is a temporary stock point at a job
	LocationTypeJobsite LocationType = "JOBSITE"
	// LocationTypeVirtual is a logical stock point (e.g., in-transit shelf)
	LocationTypeVirtual LocationType = "VIRTUAL"
)

// IsValid returns true if the location type is a known value
func (t LocationType) IsValid() bool {
	switch t {
	case LocationTypeWarehouse, LocationTypeTruck, LocationTypeJobsite, LocationTypeVirtual:
		return true
	}
	return false
}

// String returns the string representation of LocationType
func (t LocationType) String() string {
	return string(t)
}

// InventoryLocation is a physical or virtual stock point within a tenant
type InventoryLocation struct {
	shared.TenantAggregateRoot
	Name         string       `gorm:"type:varchar(200);not null"`
	Type         LocationType `gorm:"type:varchar(20);not null"`
	TechnicianID *uuid.UUID   `gorm:"type:uuid;index"`
	BranchID     *uuid.UUID   `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (InventoryLocation) TableName() string {
	return "inventory_locations"
}

// NewInventoryLocation creates a new stock point
func NewInventoryLocation(tenantID uuid.UUID, name string, locType LocationType, now time.Time) (*InventoryLocation, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Location name cannot be empty")
	}
	if !locType.IsValid() {
		return nil, shared.NewDomainError("INVALID_LOCATION_TYPE", "Unknown location type")
	}

	return &InventoryLocation{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID, now),
		Name:                name,
		Type:                locType,
	}, nil
}

// AssignTechnician binds a truck location to a technician
func (l *InventoryLocation) AssignTechnician(technicianID uuid.UUID, now time.Time) error {
	if l.Type != LocationTypeTruck {
		return shared.NewDomainError("INVALID_LOCATION_TYPE", "Only truck locations can be assigned a technician")
	}
	l.TechnicianID = &technicianID
	l.UpdatedAt = now
	l.IncrementVersion()
	return nil
}
