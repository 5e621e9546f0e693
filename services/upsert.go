package services

import (
	"context"

	"detailpro-backend/models"

	"github.com/google/uuid"
)

// UpsertEngine merges one parsed row into the customer store: create on a
// new identity, field-by-field merge on a match. Import data is treated as a
// possibly stale snapshot, so it never blanks an existing field and never
// lowers an aggregate.
type UpsertEngine struct {
	store   CustomerStore
	matcher *Matcher
}

func NewUpsertEngine(store CustomerStore) *UpsertEngine {
	return &UpsertEngine{
		store:   store,
		matcher: NewMatcher(store),
	}
}

type UpsertResult struct {
	Customer *models.Customer
	Created  bool
	Matched  MatchStrategy
}

func (e *UpsertEngine) Apply(ctx context.Context, shopID, userID uuid.UUID, row *ImportRow) (*UpsertResult, error) {
	existing, matched, err := e.matcher.Match(ctx, shopID, row.Identity)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		customer := e.buildCustomer(shopID, userID, row)
		if err := e.store.Create(ctx, customer); err != nil {
			return nil, err
		}
		return &UpsertResult{Customer: customer, Created: true}, nil
	}

	e.merge(existing, row)
	if err := e.store.Save(ctx, existing); err != nil {
		return nil, err
	}
	return &UpsertResult{Customer: existing, Matched: matched}, nil
}

func (e *UpsertEngine) buildCustomer(shopID, userID uuid.UUID, row *ImportRow) *models.Customer {
	customer := &models.Customer{
		ID:              uuid.New(),
		ShopID:          shopID,
		CreatedByUserID: userID,
		Name:            row.Name,
		Phone:           row.Phone,
		PhoneE164:       row.Identity.E164,
		PhoneLast10:     row.Identity.Last10,
		Email:           row.Email,
		Address1:        row.Address1,
		Address2:        row.Address2,
		City:            row.City,
		State:           row.State,
		Zip:             row.Zip,
		CustomerType:    row.CustomerType,
		TotalVisits:     row.Visits,
		LifetimeValue:   row.LifetimeValue,
		FirstVisitAt:    row.FirstVisit,
		LastCompletedAt: row.LastVisit,
		IsActive:        true,
		Extra:           models.JSONB{},
	}

	for i, label := range row.Vehicles {
		customer.Vehicles = append(customer.Vehicles, models.CustomerVehicle{
			Label:    label,
			Position: i,
		})
	}
	if row.Notes != "" {
		customer.Notes = append(customer.Notes, models.CustomerNote{
			Body:   row.Notes,
			Source: "import",
		})
	}

	applyExtras(customer, row)
	return customer
}

// merge applies the row onto an existing record. Scalars only move on a
// non-empty import value, vehicles union in order, the row note appends, and
// counters take the larger side.
func (e *UpsertEngine) merge(customer *models.Customer, row *ImportRow) {
	setIfPresent(&customer.Name, row.Name)
	setIfPresent(&customer.Email, row.Email)
	setIfPresent(&customer.Address1, row.Address1)
	setIfPresent(&customer.Address2, row.Address2)
	setIfPresent(&customer.City, row.City)
	setIfPresent(&customer.State, row.State)
	setIfPresent(&customer.Zip, row.Zip)
	setIfPresent(&customer.CustomerType, row.CustomerType)

	// A row that parsed to a full E.164 upgrades a record that matched on
	// last-10 only, so future imports match on the stronger key.
	if customer.PhoneE164 == "" && row.Identity.E164 != "" {
		customer.PhoneE164 = row.Identity.E164
	}

	existing := make(map[string]bool, len(customer.Vehicles))
	for _, v := range customer.Vehicles {
		existing[v.Label] = true
	}
	pos := len(customer.Vehicles)
	for _, label := range row.Vehicles {
		if existing[label] {
			continue
		}
		customer.Vehicles = append(customer.Vehicles, models.CustomerVehicle{
			Label:    label,
			Position: pos,
		})
		pos++
	}

	// Notes are append-only; re-importing the same text appends again.
	if row.Notes != "" {
		customer.Notes = append(customer.Notes, models.CustomerNote{
			Body:   row.Notes,
			Source: "import",
		})
	}

	if row.Visits > customer.TotalVisits {
		customer.TotalVisits = row.Visits
	}
	if row.LifetimeValue.GreaterThan(customer.LifetimeValue) {
		customer.LifetimeValue = row.LifetimeValue
	}
	if row.FirstVisit != nil && (customer.FirstVisitAt == nil || row.FirstVisit.Before(*customer.FirstVisitAt)) {
		customer.FirstVisitAt = row.FirstVisit
	}
	if row.LastVisit != nil && (customer.LastCompletedAt == nil || row.LastVisit.After(*customer.LastCompletedAt)) {
		customer.LastCompletedAt = row.LastVisit
	}

	applyExtras(customer, row)
}

func applyExtras(customer *models.Customer, row *ImportRow) {
	if customer.Extra == nil {
		customer.Extra = models.JSONB{}
	}
	if row.Location != "" {
		customer.Extra["location"] = row.Location
	}
	if row.Technician != "" {
		customer.Extra["technician"] = row.Technician
	}
	if row.HasPets != nil {
		customer.Extra["has_pets"] = *row.HasPets
	}
	if row.HasKids != nil {
		customer.Extra["has_kids"] = *row.HasKids
	}
	if row.StateValid != nil {
		customer.Extra["state_valid"] = *row.StateValid
	}
	if len(row.Services) > 0 {
		customer.Extra["services"] = unionStrings(extraStrings(customer.Extra, "services"), row.Services)
	}
}

func setIfPresent(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func extraStrings(extra models.JSONB, key string) []string {
	raw, ok := extra[key]
	if !ok {
		return nil
	}
	switch vals := raw.(type) {
	case []string:
		return vals
	case []interface{}: // JSONB round-trips arrays as []interface{}
		out := make([]string, 0, len(vals))
		for _, v := range vals {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func unionStrings(existing, incoming []string) []string {
	seen := make(map[string]bool, len(existing))
	out := make([]string, 0, len(existing)+len(incoming))
	for _, s := range existing {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range incoming {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
