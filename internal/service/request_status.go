package service

import (
	apperrors "canteen/internal/errors"
	"canteen/internal/model"
)

// transition checks a request status change. It reports whether anything
// changes; repeating the current status is allowed and changes nothing.
func transition(current, next model.RequestStatus) (bool, error) {
	if !next.Valid() {
		return false, apperrors.ErrInvalidStatus
	}
	if current == next {
		return false, nil
	}
	if current.Terminal() {
		return false, apperrors.ErrRequestFinalized
	}
	return true, nil
}
