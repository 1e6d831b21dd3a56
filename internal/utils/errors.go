package utils

import "errors"

// Common application errors used across services.
var (
	ErrMissingCredentials = errors.New("MISSING_CREDENTIALS")
	ErrAuthentication     = errors.New("AUTHENTICATION_FAILED")
	ErrFetch              = errors.New("FETCH_FAILED")
	ErrPageLimitExceeded  = errors.New("PAGE_LIMIT_EXCEEDED")
	ErrTransform          = errors.New("TRANSFORM_FAILED")
	ErrCommit             = errors.New("COMMIT_FAILED")
	ErrSyncInProgress     = errors.New("SYNC_IN_PROGRESS")
	ErrSyncLockLost       = errors.New("SYNC_LOCK_LOST")
	ErrJobNotFound        = errors.New("JOB_NOT_FOUND")
	ErrProductNotFound    = errors.New("PRODUCT_NOT_FOUND")
	ErrUpstream           = errors.New("UPSTREAM_ERROR")
	ErrInvalidCredentials = errors.New("INVALID_CREDENTIALS")
	ErrInvalidToken       = errors.New("INVALID_TOKEN")
)
