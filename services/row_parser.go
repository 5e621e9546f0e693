package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"detailpro-backend/utils"

	"github.com/shopspring/decimal"
)

// Template column names, matched case-insensitively and order-independently
// against the header row.
const (
	colName          = "name"
	colPhone         = "phone"
	colEmail         = "email"
	colAddress1      = "address 1"
	colAddress2      = "address 2"
	colCity          = "city"
	colState         = "state"
	colZip           = "zip code"
	colVehicles      = "vehicles"
	colServices      = "services"
	colCustomerType  = "customer type"
	colFirstVisit    = "first visit"
	colLastVisit     = "last visit"
	colVisits        = "visits"
	colLifetimeValue = "lifetime value"
	colLocation      = "location"
	colTechnician    = "technician"
	colNotes         = "notes"
	colPets          = "pets"
	colKids          = "kids"
	colStateValid    = "state valid"
)

// ImportRow is one typed spreadsheet record after per-column coercion.
type ImportRow struct {
	Name     string
	Phone    string
	Identity utils.CanonicalPhone
	Email    string
	Address1 string
	Address2 string
	City     string
	State    string
	Zip      string

	Vehicles []string
	Services []string

	CustomerType  string
	FirstVisit    *time.Time
	LastVisit     *time.Time
	Visits        int
	LifetimeValue decimal.Decimal

	Location   string
	Technician string
	Notes      string

	HasPets    *bool
	HasKids    *bool
	StateValid *bool
}

// HeaderIndex maps normalized column names to their position in the header
// row, so the template columns can appear in any order.
func HeaderIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

// ParseRow coerces one record into an ImportRow. rowNum is the spreadsheet
// row number used in error reports; region is the shop's home country for
// country-code inference. The phone cell is the row's identity: missing or
// too short to yield a last-10 key rejects the row; everything else is
// advisory and coerces leniently.
func ParseRow(record []string, idx map[string]int, rowNum int, region string) (*ImportRow, *RowError) {
	phone := pick(record, idx, colPhone)
	if phone == "" {
		return nil, missingIdentityErr(rowNum, "row has no phone number")
	}

	identity := utils.NormalizePhoneInRegion(phone, region)
	if identity.Last10 == "" {
		return nil, missingIdentityErr(rowNum, fmt.Sprintf("phone %q has fewer than 10 digits", phone))
	}

	row := &ImportRow{
		Name:     pick(record, idx, colName),
		Phone:    phone,
		Identity: identity,
		Email:    pick(record, idx, colEmail),
		Address1: pick(record, idx, colAddress1),
		Address2: pick(record, idx, colAddress2),
		City:     pick(record, idx, colCity),
		State:    pick(record, idx, colState),
		Zip:      pick(record, idx, colZip),

		Vehicles: utils.CanonicalizeMultiValue(pick(record, idx, colVehicles), ";"),
		Services: utils.CanonicalizeMultiValue(pick(record, idx, colServices), ";"),

		CustomerType:  pick(record, idx, colCustomerType),
		FirstVisit:    utils.ParseFlexibleDate(pick(record, idx, colFirstVisit)),
		LastVisit:     utils.ParseFlexibleDate(pick(record, idx, colLastVisit)),
		Visits:        parseCount(pick(record, idx, colVisits)),
		LifetimeValue: parseCurrency(pick(record, idx, colLifetimeValue)),

		Location:   pick(record, idx, colLocation),
		Technician: pick(record, idx, colTechnician),
		Notes:      pick(record, idx, colNotes),

		HasPets:    parseBool(pick(record, idx, colPets)),
		HasKids:    parseBool(pick(record, idx, colKids)),
		StateValid: parseBool(pick(record, idx, colStateValid)),
	}

	return row, nil
}

func pick(record []string, idx map[string]int, key string) string {
	pos, ok := idx[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

// parseCurrency strips currency formatting ("$1,272.00") and coerces to a
// decimal. Lifetime value is advisory data, so a bad cell means zero, not a
// row error.
func parseCurrency(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseCount(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// parseBool normalizes boolean-ish cells case-insensitively. Anything
// unrecognized means "not supplied".
func parseBool(s string) *bool {
	v := true
	f := false
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1":
		return &v
	case "false", "no", "n", "0":
		return &f
	default:
		return nil
	}
}
