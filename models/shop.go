package models

import (
	"github.com/google/uuid"
)

type Shop struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	Name         string    `gorm:"not null"`
	Address      string
	WorkingHours JSONB `gorm:"type:jsonb;default:'{}'"`
	// Region is the shop's home country (ISO 3166-1 alpha-2), used when
	// inferring country codes for phone numbers without one.
	Region                string `gorm:"type:varchar(2);default:'US'"`
	ServiceDueReminders   bool   `gorm:"default:true"`
	WhatsAppNotifications bool   `gorm:"default:false"`
	SMSNotifications      bool   `gorm:"default:false"`

	Users             []User             `gorm:"foreignKey:ShopID"`
	Customers         []Customer         `gorm:"foreignKey:ShopID"`
	ReminderTemplates []ReminderTemplate `gorm:"foreignKey:ShopID"`
}
