package services

import (
	"context"

	"detailpro-backend/models"
	"detailpro-backend/utils"

	"github.com/google/uuid"
)

// MatchStrategy names one identity-matching rule. The matcher runs its
// strategies in declared order and the first hit wins, so the precedence
// lives here instead of being re-derived from branch order every time a new
// rule is added.
type MatchStrategy string

const (
	MatchByE164   MatchStrategy = "e164"
	MatchByLast10 MatchStrategy = "last10"
	MatchNone     MatchStrategy = ""
)

type Matcher struct {
	store CustomerStore
}

func NewMatcher(store CustomerStore) *Matcher {
	return &Matcher{store: store}
}

type matchRule struct {
	name   MatchStrategy
	lookup func(ctx context.Context, shopID uuid.UUID, identity utils.CanonicalPhone) (*models.Customer, error)
}

func (m *Matcher) rules() []matchRule {
	return []matchRule{
		// E.164 equality first: it disambiguates country and area code.
		{name: MatchByE164, lookup: m.byE164},
		// Last-10 fallback for records stored before normalization existed
		// or numbers that never parsed to a valid E.164.
		{name: MatchByLast10, lookup: m.byLast10},
	}
}

// Match finds zero-or-one existing customer for the identity. When several
// records share a last-10 key the most-recently-updated one wins; that
// tie-break is a product decision made explicit here, not behavior anyone
// should rely on for merge correctness without sign-off.
func (m *Matcher) Match(ctx context.Context, shopID uuid.UUID, identity utils.CanonicalPhone) (*models.Customer, MatchStrategy, error) {
	for _, rule := range m.rules() {
		customer, err := rule.lookup(ctx, shopID, identity)
		if err != nil {
			return nil, MatchNone, err
		}
		if customer != nil {
			return customer, rule.name, nil
		}
	}
	return nil, MatchNone, nil
}

func (m *Matcher) byE164(ctx context.Context, shopID uuid.UUID, identity utils.CanonicalPhone) (*models.Customer, error) {
	if identity.E164 == "" {
		return nil, nil
	}
	return m.store.FindByE164(ctx, shopID, identity.E164)
}

func (m *Matcher) byLast10(ctx context.Context, shopID uuid.UUID, identity utils.CanonicalPhone) (*models.Customer, error) {
	if identity.Last10 == "" {
		return nil, nil
	}
	candidates, err := m.store.FindByLast10(ctx, shopID, identity.Last10)
	if err != nil {
		return nil, err
	}
	for _, c := range candidates {
		// Two records that both carry an E.164 but disagree on it are
		// different numbers that happen to share trailing digits.
		if c.PhoneE164 != "" && identity.E164 != "" && c.PhoneE164 != identity.E164 {
			continue
		}
		return c, nil
	}
	return nil, nil
}
