package models

import "time"

// Calendar events come from the external booking system; this backend only
// reads them to link jobs to a customer, it never stores or mutates them.

const EventStatusCancelled = "cancelled"

type CalendarEvent struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	// Phone is the booking's dedicated phone field. Some sources leave it
	// empty and bury the number in the description as a "Phone:" line.
	Phone       string    `json:"phone"`
	Description string    `json:"description"`
	StartAt     time.Time `json:"startAt"`
	Status      string    `json:"status"`
}
