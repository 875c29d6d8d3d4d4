package pricing

import "errors"

var (
	ErrTierNotFound = errors.New("price tier not found")
	ErrRuleNotFound = errors.New("pricing rule not found")
	ErrNoPrice      = errors.New("seat has neither a price override nor a price tier")
	ErrBadParams    = errors.New("invalid strategy params")
)
