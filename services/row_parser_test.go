package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var templateHeader = []string{
	"Name", "Phone", "Email", "Address 1", "Address 2", "City", "State",
	"Zip Code", "Vehicles", "Services", "Customer Type", "First Visit",
	"Last Visit", "Visits", "Lifetime Value", "Location", "Technician",
	"Notes", "Pets", "Kids", "State Valid",
}

func templateRecord(overrides map[string]string) []string {
	values := map[string]string{
		"Name":           "John Doe",
		"Phone":          "(212) 867-5309",
		"Email":          "john@example.com",
		"Address 1":      "1 Main St",
		"Address 2":      "",
		"City":           "Springfield",
		"State":          "IL",
		"Zip Code":       "62704",
		"Vehicles":       "Toyota Camry 2020; Honda Civic 2018",
		"Services":       "Full Detail; Wax",
		"Customer Type":  "Residential",
		"First Visit":    "3/15/2023",
		"Last Visit":     "2024-06-01",
		"Visits":         "7",
		"Lifetime Value": "$1,272.00",
		"Location":       "Downtown",
		"Technician":     "Alex",
		"Notes":          "Prefers morning slots",
		"Pets":           "TRUE",
		"Kids":           "No",
		"State Valid":    "1",
	}
	for k, v := range overrides {
		values[k] = v
	}
	record := make([]string, len(templateHeader))
	for i, h := range templateHeader {
		record[i] = values[h]
	}
	return record
}

func TestParseRowFull(t *testing.T) {
	idx := HeaderIndex(templateHeader)
	row, rerr := ParseRow(templateRecord(nil), idx, 2, "US")
	require.Nil(t, rerr)

	assert.Equal(t, "John Doe", row.Name)
	assert.Equal(t, "(212) 867-5309", row.Phone)
	assert.Equal(t, "2128675309", row.Identity.Last10)
	assert.Equal(t, "+12128675309", row.Identity.E164)
	assert.Equal(t, []string{"Toyota Camry 2020", "Honda Civic 2018"}, row.Vehicles)
	assert.Equal(t, []string{"Full Detail", "Wax"}, row.Services)
	assert.Equal(t, "Residential", row.CustomerType)
	assert.Equal(t, 7, row.Visits)
	assert.True(t, row.LifetimeValue.Equal(decimal.RequireFromString("1272.00")))
	assert.Equal(t, "Prefers morning slots", row.Notes)

	require.NotNil(t, row.FirstVisit)
	assert.Equal(t, time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC), *row.FirstVisit)
	require.NotNil(t, row.LastVisit)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), *row.LastVisit)

	require.NotNil(t, row.HasPets)
	assert.True(t, *row.HasPets)
	require.NotNil(t, row.HasKids)
	assert.False(t, *row.HasKids)
	require.NotNil(t, row.StateValid)
	assert.True(t, *row.StateValid)
}

func TestParseRowHeaderOrderIndependent(t *testing.T) {
	header := []string{"phone", "NAME", "Lifetime Value"}
	idx := HeaderIndex(header)
	row, rerr := ParseRow([]string{"2128675309", "Jane", "$50"}, idx, 2, "US")
	require.Nil(t, rerr)
	assert.Equal(t, "Jane", row.Name)
	assert.Equal(t, "2128675309", row.Identity.Last10)
	assert.True(t, row.LifetimeValue.Equal(decimal.RequireFromString("50")))
}

func TestParseRowRegionInference(t *testing.T) {
	idx := HeaderIndex(templateHeader)
	record := templateRecord(map[string]string{"Phone": "020 7946 0958"})

	// A UK local number only yields an E.164 key when parsed in the shop's
	// home country; the last-10 fallback key is digit-based either way.
	row, rerr := ParseRow(record, idx, 2, "GB")
	require.Nil(t, rerr)
	assert.Equal(t, "+442079460958", row.Identity.E164)
	assert.Equal(t, "2079460958", row.Identity.Last10)

	row, rerr = ParseRow(record, idx, 2, "US")
	require.Nil(t, rerr)
	assert.Empty(t, row.Identity.E164)
	assert.Equal(t, "2079460958", row.Identity.Last10)
}

func TestParseRowMissingPhone(t *testing.T) {
	idx := HeaderIndex(templateHeader)

	_, rerr := ParseRow(templateRecord(map[string]string{"Phone": ""}), idx, 7, "US")
	require.NotNil(t, rerr)
	assert.Equal(t, RowErrMissingIdentity, rerr.Kind)
	assert.Equal(t, 7, rerr.Row)

	// A phone that can't yield a last-10 key is the same failure.
	_, rerr = ParseRow(templateRecord(map[string]string{"Phone": "867-5309"}), idx, 9, "US")
	require.NotNil(t, rerr)
	assert.Equal(t, RowErrMissingIdentity, rerr.Kind)
	assert.Equal(t, 9, rerr.Row)
}

func TestParseRowLenientCoercion(t *testing.T) {
	idx := HeaderIndex(templateHeader)
	row, rerr := ParseRow(templateRecord(map[string]string{
		"Lifetime Value": "not money",
		"First Visit":    "someday",
		"Visits":         "lots",
		"Pets":           "maybe",
	}), idx, 2, "US")
	require.Nil(t, rerr)

	// Advisory fields degrade to zero values instead of failing the row.
	assert.True(t, row.LifetimeValue.IsZero())
	assert.Nil(t, row.FirstVisit)
	assert.Equal(t, 0, row.Visits)
	assert.Nil(t, row.HasPets)
}

func TestParseRowShortRecord(t *testing.T) {
	// Trailing cells beyond the record's length read as empty.
	idx := HeaderIndex(templateHeader)
	row, rerr := ParseRow([]string{"Jane", "2128675309"}, idx, 2, "US")
	require.Nil(t, rerr)
	assert.Equal(t, "Jane", row.Name)
	assert.Empty(t, row.Email)
	assert.Empty(t, row.Vehicles)
}
