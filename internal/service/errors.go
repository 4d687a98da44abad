package service

import "errors"

// Messages double as the response body, so they are written for end users.
var (
	ErrEmailTaken         = errors.New("Email already registered")
	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrGoogleAccount      = errors.New("Use Google Sign-In for this account.")
	ErrBanned             = errors.New("Account is banned")
	ErrInactive           = errors.New("Account is deactivated")
	ErrUserNotFound       = errors.New("User not found")
	ErrInvalidResetToken  = errors.New("Invalid or expired token")
	ErrGoogleOnlyUser     = errors.New("User uses Google Sign-In. Cannot reset password.")
	ErrSuperadminOnly     = errors.New("Only a superadmin can grant or revoke superadmin")

	ErrInvalidToken = errors.New("Invalid or expired token")

	ErrGoogleNotConfigured = errors.New("Google OAuth not configured")
	ErrMissingCode         = errors.New("Missing code")
	ErrInvalidState        = errors.New("Invalid state")
	ErrGoogleProfile       = errors.New("Invalid Google profile")
	ErrGoogleExchange      = errors.New("Google OAuth failed")

	ErrInvalidID          = errors.New("Invalid id")
	ErrQuestionNotFound   = errors.New("Question not found")
	ErrDuplicateQuestion  = errors.New("Question id already exists")
	ErrExpectedArray      = errors.New("Expected an array of questions")
	ErrStorageDisabled    = errors.New("Image uploads are not configured")
	ErrUnsupportedImage   = errors.New("Unsupported image type")
	ErrImageTooLarge      = errors.New("Image is too large")
	ErrMissingImage       = errors.New("Missing image file")
	ErrInvalidImageFilter = errors.New("Invalid imageFilter (must be all, images, or text)")

	ErrExamConfigNotFound = errors.New("Exam config not found")
	ErrInvalidIncrement   = errors.New("Invalid increment (must be 1, 2, or 3)")
	ErrInvalidName        = errors.New("Invalid name")
)

// Issue is one schema failure. Path holds field names and array indexes.
type Issue struct {
	Path    []any  `json:"path"`
	Message string `json:"message"`
}

type ValidationError struct {
	Message string
	Issues  []Issue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return e.Message
	}
	return e.Message + ": " + e.Issues[0].Message
}

// IsValidation reports whether err carries an issue list.
func IsValidation(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
