package service

import apperrors "raffle-tool-backend/internal/common/errors"

// ValidateQuota is the early, user-facing quota check against a
// snapshot the caller already holds. The authoritative re-check runs
// inside the write transaction; this one only exists to reject hopeless
// requests before any work is done.
func ValidateQuota(sellerID string, soldCount, additional, maxAllowed int) error {
	if soldCount+additional > maxAllowed {
		return apperrors.NewQuotaExceededError(sellerID, soldCount, additional, maxAllowed)
	}
	return nil
}
