package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"detailpro-backend/models"

	"github.com/google/uuid"
)

// memStore is an in-memory CustomerStore for pipeline tests. It mimics the
// gorm store's contract: ordered last-10 candidates, ID assignment for new
// vehicles/notes, updated_at bumps on save.
type memStore struct {
	customers []*models.Customer
	clock     time.Time
	// failOn makes Create/Save fail for customers with this last-10 key,
	// to exercise row-level persistence failures.
	failOn map[string]bool
}

func newMemStore() *memStore {
	return &memStore{
		clock:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		failOn: map[string]bool{},
	}
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *memStore) FindByE164(_ context.Context, shopID uuid.UUID, e164 string) (*models.Customer, error) {
	var best *models.Customer
	for _, c := range s.customers {
		if c.ShopID != shopID || c.PhoneE164 != e164 {
			continue
		}
		if best == nil || c.UpdatedAt.After(best.UpdatedAt) {
			best = c
		}
	}
	return best, nil
}

func (s *memStore) FindByLast10(_ context.Context, shopID uuid.UUID, last10 string) ([]*models.Customer, error) {
	var out []*models.Customer
	for _, c := range s.customers {
		if c.ShopID == shopID && c.PhoneLast10 == last10 {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (s *memStore) Create(_ context.Context, customer *models.Customer) error {
	if s.failOn[customer.PhoneLast10] {
		return fmt.Errorf("storage unavailable")
	}
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	now := s.tick()
	customer.CreatedAt = now
	customer.UpdatedAt = now
	s.assignChildIDs(customer)
	s.customers = append(s.customers, customer)
	return nil
}

func (s *memStore) Save(_ context.Context, customer *models.Customer) error {
	if s.failOn[customer.PhoneLast10] {
		return fmt.Errorf("storage unavailable")
	}
	customer.UpdatedAt = s.tick()
	s.assignChildIDs(customer)
	for i, existing := range s.customers {
		if existing.ID == customer.ID {
			s.customers[i] = customer
			return nil
		}
	}
	return fmt.Errorf("customer %s not found", customer.ID)
}

func (s *memStore) assignChildIDs(customer *models.Customer) {
	for i := range customer.Vehicles {
		if customer.Vehicles[i].ID == uuid.Nil {
			customer.Vehicles[i].ID = uuid.New()
			customer.Vehicles[i].CustomerID = customer.ID
			customer.Vehicles[i].CreatedAt = s.clock
		}
	}
	for i := range customer.Notes {
		if customer.Notes[i].ID == uuid.Nil {
			customer.Notes[i].ID = uuid.New()
			customer.Notes[i].CustomerID = customer.ID
			customer.Notes[i].CreatedAt = s.clock
		}
	}
}
