package services

import (
	"sort"
	"strings"
	"time"

	"detailpro-backend/models"
	"detailpro-backend/utils"
)

// LinkedEvents partitions a customer's calendar events around "now":
// upcoming soonest-first, past most-recent-first.
type LinkedEvents struct {
	Upcoming []models.CalendarEvent `json:"upcoming"`
	Past     []models.CalendarEvent `json:"past"`
}

// LinkCustomerEvents filters caller-supplied calendar events to those whose
// phone matches the customer's canonical identity, under the same precedence
// the import matcher uses. region is the shop's home country for parsing
// event phones typed without a country code. Cancelled events are never
// linked. Events with no dedicated phone field fall back to a "Phone:" line
// in the description.
func LinkCustomerEvents(identity utils.CanonicalPhone, region string, events []models.CalendarEvent, now time.Time) LinkedEvents {
	linked := LinkedEvents{
		Upcoming: []models.CalendarEvent{},
		Past:     []models.CalendarEvent{},
	}
	if identity.IsZero() {
		return linked
	}

	for _, ev := range events {
		if strings.EqualFold(ev.Status, models.EventStatusCancelled) {
			continue
		}

		phone := ev.Phone
		if phone == "" {
			phone = utils.ExtractEmbeddedPhone(ev.Description)
		}
		if phone == "" {
			continue
		}

		if !identity.Matches(utils.NormalizePhoneInRegion(phone, region)) {
			continue
		}

		if ev.StartAt.Before(now) {
			linked.Past = append(linked.Past, ev)
		} else {
			linked.Upcoming = append(linked.Upcoming, ev)
		}
	}

	sort.Slice(linked.Upcoming, func(i, j int) bool {
		return linked.Upcoming[i].StartAt.Before(linked.Upcoming[j].StartAt)
	})
	sort.Slice(linked.Past, func(i, j int) bool {
		return linked.Past[i].StartAt.After(linked.Past[j].StartAt)
	})

	return linked
}
