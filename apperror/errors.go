package apperror

import "errors"

var (
	ErrInvalidState    = errors.New("invalid state parameter")
	ErrMissingClientID = errors.New("client id not found")

	ErrCredentialNotFound = errors.New("credential not found")

	ErrExchangeFailed   = errors.New("oauth code exchange failed")
	ErrStoreUnavailable = errors.New("credential store unavailable")
)
