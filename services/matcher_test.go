package services

import (
	"context"
	"testing"

	"detailpro-backend/models"
	"detailpro-backend/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCustomer(t *testing.T, store *memStore, shopID uuid.UUID, name, phone string) *models.Customer {
	t.Helper()
	identity := utils.NormalizePhone(phone)
	c := &models.Customer{
		ShopID:      shopID,
		Name:        name,
		Phone:       phone,
		PhoneE164:   identity.E164,
		PhoneLast10: identity.Last10,
		IsActive:    true,
	}
	require.NoError(t, store.Create(context.Background(), c))
	return c
}

func TestMatcherPrecedence(t *testing.T) {
	store := newMemStore()
	shopID := uuid.New()
	ctx := context.Background()

	// Legacy record stored before normalization: last-10 key only.
	legacy := seedCustomer(t, store, shopID, "Legacy", "2128675309")
	legacy.PhoneE164 = ""
	require.NoError(t, store.Save(ctx, legacy))
	full := seedCustomer(t, store, shopID, "Full", "(212) 867-5309")
	// Touch the legacy record again so recency favors it.
	require.NoError(t, store.Save(ctx, legacy))

	m := NewMatcher(store)

	// Both records share the last-10 key; the E.164 rule runs first and the
	// legacy record was updated more recently, so precedence, not recency,
	// must pick the winner.
	got, strategy, err := m.Match(ctx, shopID, utils.NormalizePhone("+1 212 867 5309"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, full.ID, got.ID)
	assert.Equal(t, MatchByE164, strategy)
}

func TestMatcherLast10Fallback(t *testing.T) {
	store := newMemStore()
	shopID := uuid.New()
	ctx := context.Background()

	legacy := seedCustomer(t, store, shopID, "Legacy", "2128675309")
	legacy.PhoneE164 = ""
	require.NoError(t, store.Save(ctx, legacy))

	m := NewMatcher(store)

	// Incoming identity has an E.164 but the stored record doesn't: the
	// fallback still links them.
	got, strategy, err := m.Match(ctx, shopID, utils.NormalizePhone("(212) 867-5309"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, legacy.ID, got.ID)
	assert.Equal(t, MatchByLast10, strategy)
}

func TestMatcherTieBreakMostRecentlyUpdated(t *testing.T) {
	store := newMemStore()
	shopID := uuid.New()
	ctx := context.Background()

	older := seedCustomer(t, store, shopID, "Older", "2128675309")
	older.PhoneE164 = ""
	require.NoError(t, store.Save(ctx, older))
	newer := seedCustomer(t, store, shopID, "Newer", "2128675309")
	newer.PhoneE164 = ""
	require.NoError(t, store.Save(ctx, newer))

	m := NewMatcher(store)

	got, _, err := m.Match(ctx, shopID, utils.CanonicalPhone{Last10: "2128675309"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, newer.ID, got.ID)
}

func TestMatcherConflictingE164NotLinked(t *testing.T) {
	store := newMemStore()
	shopID := uuid.New()
	ctx := context.Background()

	// UK number sharing its trailing digits with a valid US number.
	uk := seedCustomer(t, store, shopID, "UK", "+44 20 7946 0958")
	require.Equal(t, "+442079460958", uk.PhoneE164)

	m := NewMatcher(store)

	got, strategy, err := m.Match(ctx, shopID, utils.NormalizePhone("(207) 946-0958"))
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, MatchNone, strategy)
}

func TestMatcherScopedToShop(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	seedCustomer(t, store, uuid.New(), "Elsewhere", "(212) 867-5309")

	m := NewMatcher(store)
	got, _, err := m.Match(ctx, uuid.New(), utils.NormalizePhone("(212) 867-5309"))
	require.NoError(t, err)
	assert.Nil(t, got)
}
