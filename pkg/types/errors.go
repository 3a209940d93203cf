package types

import "errors"

// Domain errors for type validation
var (
	ErrInvalidListingID  = errors.New("invalid listing ID")
	ErrInvalidDealerID   = errors.New("invalid dealer ID")
	ErrInvalidStatus     = errors.New("invalid listing status")
	ErrInconsistentPrice = errors.New("normalized price without original price")
)
