package homeplug

import "errors"

var (
	// ErrInvalidInstance is returned for service instance numbers below 1
	ErrInvalidInstance = errors.New("homeplug: service instance must be >= 1")

	// ErrNegativeIndex is returned for device indices below 0
	ErrNegativeIndex = errors.New("homeplug: device index must be >= 0")
)
