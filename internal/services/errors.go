package services

import (
	"errors"

	"go-shop/internal/apperr"
	"go-shop/internal/store"
)

// storeErr classifies a store failure: missing rows become NotFound with
// notFoundMsg, anything unexpected becomes Internal.
func storeErr(op string, err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) && notFoundMsg != "" {
		return apperr.NotFound("%s", notFoundMsg)
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperr.Internal(op, err)
}
