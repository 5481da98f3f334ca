package accounts

import (
	goerrors "github.com/goliatone/go-errors"
)

// Text codes for the closed error taxonomy. Callers branch on these,
// never on human-readable messages.
const (
	TextCodeAccountExists         = "ACCOUNT_EXISTS"
	TextCodeUserNotFound          = "USER_NOT_FOUND"
	TextCodeEmailNotVerified      = "EMAIL_NOT_VERIFIED"
	TextCodeWrongPassword         = "WRONG_PASSWORD"
	TextCodeWrongCurrentPassword  = "WRONG_CURRENT_PASSWORD"
	TextCodeInvalidOrExpiredCode  = "INVALID_OR_EXPIRED_CODE"
	TextCodeInvalidOrExpiredToken = "INVALID_OR_EXPIRED_TOKEN"
	TextCodeValidationFailed      = "VALIDATION_FAILED"
	TextCodeStoreUnavailable      = "STORE_UNAVAILABLE"
	TextCodeTokenInvalid          = "TOKEN_INVALID"
	TextCodeTokenExpired          = "TOKEN_EXPIRED"
	TextCodeForbidden             = "FORBIDDEN"
)

// ErrAccountExists is returned when registering an email that already
// belongs to a verified account.
var ErrAccountExists = goerrors.New("an active account already exists for this email", goerrors.CategoryConflict).
	WithTextCode(TextCodeAccountExists).
	WithCode(goerrors.CodeConflict)

// ErrUserNotFound is returned when no account matches the identifier.
var ErrUserNotFound = goerrors.New("user not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrEmailNotVerified is returned on login against a pending account. A
// fresh verification code has already been issued as a side effect.
var ErrEmailNotVerified = goerrors.New("email address has not been verified", goerrors.CategoryAuth).
	WithTextCode(TextCodeEmailNotVerified).
	WithCode(goerrors.CodeUnauthorized)

// ErrWrongPassword is returned when login credentials do not match.
var ErrWrongPassword = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeWrongPassword).
	WithCode(goerrors.CodeUnauthorized)

// ErrWrongCurrentPassword is returned by ChangePassword when the current
// password does not match the stored hash.
var ErrWrongCurrentPassword = goerrors.New("current password is incorrect", goerrors.CategoryAuth).
	WithTextCode(TextCodeWrongCurrentPassword).
	WithCode(goerrors.CodeUnauthorized)

// ErrInvalidOrExpiredCode is returned when an email verification code does
// not match or its challenge window has elapsed.
var ErrInvalidOrExpiredCode = goerrors.New("verification code is invalid or expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidOrExpiredCode).
	WithCode(goerrors.CodeUnauthorized)

// ErrInvalidOrExpiredToken is returned when a password reset token does not
// match any live challenge.
var ErrInvalidOrExpiredToken = goerrors.New("reset token is invalid or expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidOrExpiredToken).
	WithCode(goerrors.CodeUnauthorized)

// ErrStoreUnavailable normalizes credential store faults. Retrying is at the
// caller's discretion; the core does not retry internally.
var ErrStoreUnavailable = goerrors.New("credential store unavailable", goerrors.CategoryInternal).
	WithTextCode(TextCodeStoreUnavailable).
	WithCode(goerrors.CodeInternal)

// ErrTokenInvalid is returned for malformed or badly signed bearer tokens.
var ErrTokenInvalid = goerrors.New("bearer token is invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenInvalid).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenExpired is returned for bearer tokens past their absolute expiry.
var ErrTokenExpired = goerrors.New("bearer token is expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrForbidden is returned when a valid credential lacks the role a route
// requires. Distinct from the token kinds: the token itself checked out.
var ErrForbidden = goerrors.New("insufficient role for this resource", goerrors.CategoryAuth).
	WithTextCode(TextCodeForbidden).
	WithCode(goerrors.CodeForbidden)

// ValidationFailed builds a field-scoped validation error.
func ValidationFailed(field, reason string) *goerrors.Error {
	return goerrors.New("validation failed: "+field, goerrors.CategoryValidation).
		WithTextCode(TextCodeValidationFailed).
		WithCode(goerrors.CodeBadRequest).
		WithMetadata(map[string]any{
			"field":  field,
			"reason": reason,
		})
}

// TextCode extracts the taxonomy code from an error, or "" when the error
// does not carry one.
func TextCode(err error) string {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich.TextCode
	}
	return ""
}

func isKind(err error, code string) bool {
	return err != nil && TextCode(err) == code
}

// IsAccountExists reports whether err is the AccountExists failure kind.
func IsAccountExists(err error) bool { return isKind(err, TextCodeAccountExists) }

// IsUserNotFound reports whether err is the UserNotFound failure kind.
func IsUserNotFound(err error) bool { return isKind(err, TextCodeUserNotFound) }

// IsEmailNotVerified reports whether err is the EmailNotVerified failure kind.
func IsEmailNotVerified(err error) bool { return isKind(err, TextCodeEmailNotVerified) }

// IsWrongPassword reports whether err is the WrongPassword failure kind.
func IsWrongPassword(err error) bool { return isKind(err, TextCodeWrongPassword) }

// IsWrongCurrentPassword reports whether err is the WrongCurrentPassword failure kind.
func IsWrongCurrentPassword(err error) bool { return isKind(err, TextCodeWrongCurrentPassword) }

// IsInvalidOrExpiredCode reports whether err is the InvalidOrExpiredCode failure kind.
func IsInvalidOrExpiredCode(err error) bool { return isKind(err, TextCodeInvalidOrExpiredCode) }

// IsInvalidOrExpiredToken reports whether err is the InvalidOrExpiredToken failure kind.
func IsInvalidOrExpiredToken(err error) bool { return isKind(err, TextCodeInvalidOrExpiredToken) }

// IsValidationFailed reports whether err is the ValidationFailed failure kind.
func IsValidationFailed(err error) bool { return isKind(err, TextCodeValidationFailed) }

// IsStoreUnavailable reports whether err is the StoreUnavailable failure kind.
func IsStoreUnavailable(err error) bool { return isKind(err, TextCodeStoreUnavailable) }

// IsTokenInvalid reports whether err is the TokenInvalid failure kind.
func IsTokenInvalid(err error) bool { return isKind(err, TextCodeTokenInvalid) }

// IsTokenExpired reports whether err is the TokenExpired failure kind.
func IsTokenExpired(err error) bool { return isKind(err, TextCodeTokenExpired) }

// IsForbidden reports whether err is the Forbidden failure kind.
func IsForbidden(err error) bool { return isKind(err, TextCodeForbidden) }

// storeFault wraps an infrastructure error from the credential store into
// the StoreUnavailable kind, preserving the cause for logs.
func storeFault(err error) error {
	if err == nil {
		return nil
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, "credential store unavailable").
		WithTextCode(TextCodeStoreUnavailable).
		WithCode(goerrors.CodeInternal)
}
