package domain

import "errors"

var (
	ErrUnauthenticated    = errors.New("not_authenticated")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrAccountInactive    = errors.New("account_inactive")
	ErrGoogleOnly         = errors.New("google_sign_in_only")
	ErrNoInvitedAccount   = errors.New("no_invited_account")
	ErrEmailTaken         = errors.New("email_taken")
	ErrInvalidRole        = errors.New("invalid_role")
	ErrTokenInvalid       = errors.New("token_invalid_or_expired")
	ErrPasswordTooShort   = errors.New("password_too_short")
	ErrUserNotFound       = errors.New("user_not_found")
)
