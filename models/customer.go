package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Customer struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	ShopID          uuid.UUID `gorm:"type:uuid;not null;index;index:idx_shop_e164,priority:1;index:idx_shop_last10,priority:1"`
	CreatedByUserID uuid.UUID `gorm:"type:uuid;index"`

	Name string `gorm:"not null"`
	// Phone keeps the number as the customer typed it; PhoneE164 and
	// PhoneLast10 are the canonical match keys derived from it.
	Phone       string `gorm:"not null"`
	PhoneE164   string `gorm:"index:idx_shop_e164,priority:2"`
	PhoneLast10 string `gorm:"not null;index:idx_shop_last10,priority:2"`
	Email       string
	Address1    string
	Address2    string
	City        string
	State       string
	Zip         string

	CustomerType string

	// Job-history aggregates. Imports may only raise these, never lower them.
	TotalVisits     int             `gorm:"default:0"`
	LifetimeValue   decimal.Decimal `gorm:"type:decimal(12,2);default:0.0"`
	FirstVisitAt    *time.Time
	LastCompletedAt *time.Time

	IsActive bool `gorm:"default:true"`

	// Extra holds imported extension data (location, technician, flags,
	// service names) that has no dedicated column.
	Extra JSONB `gorm:"type:jsonb;default:'{}'"`

	Vehicles []CustomerVehicle `gorm:"foreignKey:CustomerID"`
	Notes    []CustomerNote    `gorm:"foreignKey:CustomerID"`

	gorm.Model
}

type CustomerVehicle struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	CustomerID uuid.UUID `gorm:"type:uuid;index;not null"`
	Label      string    `gorm:"not null"`
	Position   int       `gorm:"default:0"`

	gorm.Model
}

func (v *CustomerVehicle) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return
}

// CustomerNote is append-only: imports and the app add notes, edits go
// through the single-note endpoints, nothing overwrites the collection.
type CustomerNote struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	CustomerID uuid.UUID `gorm:"type:uuid;index;not null"`
	Body       string    `gorm:"type:text;not null"`
	Source     string    `gorm:"type:varchar(20);default:'manual'"` // manual, import

	gorm.Model
}

func (n *CustomerNote) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return
}
