package service

import "time"

// DefaultHoldDays applies when the seller has no valid hold override.
const DefaultHoldDays = 5

// ComputeExpiry returns when a reservation placed at now lapses. The
// draw date caps the hold: a reservation never outlives the raffle.
func ComputeExpiry(now time.Time, holdDays int, drawDate *time.Time) time.Time {
	if holdDays <= 0 {
		holdDays = DefaultHoldDays
	}
	candidate := now.AddDate(0, 0, holdDays)
	if drawDate != nil && !drawDate.IsZero() && candidate.After(*drawDate) {
		return *drawDate
	}
	return candidate
}
