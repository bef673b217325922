package errors

import "errors"

var (
	// ErrWebhookNotConfigured indicates that no webhook signing secret is set
	ErrWebhookNotConfigured = errors.New("webhook secret not configured")

	// ErrInvalidSignature indicates that the payload failed signature verification
	ErrInvalidSignature = errors.New("webhook signature verification failed")

	// ErrDuplicateEvent indicates that an event with the same provider
	// event id has already been recorded
	ErrDuplicateEvent = errors.New("webhook event already recorded")
)
