package errors

import "errors"

var (
	// ErrNoActiveSubscription indicates that the user has no active subscription
	ErrNoActiveSubscription = errors.New("no active subscription found")

	// ErrPlanNotFound indicates that the named plan is not in the catalog
	ErrPlanNotFound = errors.New("plan not found")
)
