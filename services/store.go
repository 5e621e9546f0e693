package services

import (
	"context"

	"detailpro-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CustomerStore is the persistence surface the import pipeline works
// against. The gorm implementation below backs production; tests use an
// in-memory stub.
type CustomerStore interface {
	// FindByE164 returns the most-recently-updated customer with this exact
	// E.164 key, or nil when there is none.
	FindByE164(ctx context.Context, shopID uuid.UUID, e164 string) (*models.Customer, error)
	// FindByLast10 returns all customers sharing this last-10 key, most
	// recently updated first, so the matcher can apply its tie-break.
	FindByLast10(ctx context.Context, shopID uuid.UUID, last10 string) ([]*models.Customer, error)
	Create(ctx context.Context, customer *models.Customer) error
	// Save persists scalar changes plus any newly appended vehicles and
	// notes (those with a zero ID), all inside one transaction so a row's
	// upsert is atomic.
	Save(ctx context.Context, customer *models.Customer) error
}

type GormCustomerStore struct {
	db *gorm.DB
}

func NewGormCustomerStore(db *gorm.DB) *GormCustomerStore {
	return &GormCustomerStore{db: db}
}

func (s *GormCustomerStore) FindByE164(ctx context.Context, shopID uuid.UUID, e164 string) (*models.Customer, error) {
	var customers []*models.Customer
	err := s.db.WithContext(ctx).
		Preload("Vehicles", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Notes").
		Where("shop_id = ? AND phone_e164 = ?", shopID, e164).
		Order("updated_at DESC").
		Limit(1).
		Find(&customers).Error
	if err != nil {
		return nil, err
	}
	if len(customers) == 0 {
		return nil, nil
	}
	return customers[0], nil
}

func (s *GormCustomerStore) FindByLast10(ctx context.Context, shopID uuid.UUID, last10 string) ([]*models.Customer, error) {
	var customers []*models.Customer
	err := s.db.WithContext(ctx).
		Preload("Vehicles", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Notes").
		Where("shop_id = ? AND phone_last10 = ?", shopID, last10).
		Order("updated_at DESC").
		Find(&customers).Error
	return customers, err
}

func (s *GormCustomerStore) Create(ctx context.Context, customer *models.Customer) error {
	return s.db.WithContext(ctx).Create(customer).Error
}

func (s *GormCustomerStore) Save(ctx context.Context, customer *models.Customer) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(customer).Error; err != nil {
			return err
		}
		for i := range customer.Vehicles {
			if customer.Vehicles[i].ID != uuid.Nil {
				continue
			}
			customer.Vehicles[i].CustomerID = customer.ID
			if err := tx.Create(&customer.Vehicles[i]).Error; err != nil {
				return err
			}
		}
		for i := range customer.Notes {
			if customer.Notes[i].ID != uuid.Nil {
				continue
			}
			customer.Notes[i].CustomerID = customer.ID
			if err := tx.Create(&customer.Notes[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
