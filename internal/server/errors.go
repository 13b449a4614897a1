package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	accountdomain "github.com/agencydesk/agencydesk/internal/account/domain"
	authdomain "github.com/agencydesk/agencydesk/internal/auth/domain"
	"github.com/agencydesk/agencydesk/internal/authz"
	campaigndomain "github.com/agencydesk/agencydesk/internal/campaign/domain"
	changelogdomain "github.com/agencydesk/agencydesk/internal/changelog/domain"
	clientdomain "github.com/agencydesk/agencydesk/internal/client/domain"
	notifdomain "github.com/agencydesk/agencydesk/internal/notification/domain"
	settingsdomain "github.com/agencydesk/agencydesk/internal/settings/domain"
	timeentrydomain "github.com/agencydesk/agencydesk/internal/timeentry/domain"
	userdomain "github.com/agencydesk/agencydesk/internal/user/domain"
	websitedomain "github.com/agencydesk/agencydesk/internal/website/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrConflict       = errors.New("conflict")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	switch {
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	case isUnauthorizedError(err):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case isForbiddenError(err):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, authdomain.ErrInvalidRole),
		errors.Is(err, authdomain.ErrPasswordTooShort),
		errors.Is(err, clientdomain.ErrInvalidName),
		errors.Is(err, clientdomain.ErrInvalidStatus),
		errors.Is(err, clientdomain.ErrNotManager),
		errors.Is(err, accountdomain.ErrInvalidName),
		errors.Is(err, accountdomain.ErrInvalidClient),
		errors.Is(err, websitedomain.ErrInvalidName),
		errors.Is(err, websitedomain.ErrInvalidAccount),
		errors.Is(err, websitedomain.ErrInvalidStatus),
		errors.Is(err, campaigndomain.ErrInvalidName),
		errors.Is(err, campaigndomain.ErrInvalidWebsite),
		errors.Is(err, campaigndomain.ErrInvalidStatus),
		errors.Is(err, campaigndomain.ErrNotContributor),
		errors.Is(err, timeentrydomain.ErrInvalidHours),
		errors.Is(err, timeentrydomain.ErrDescriptionTooShort),
		errors.Is(err, timeentrydomain.ErrInvalidDate),
		errors.Is(err, timeentrydomain.ErrFutureDate),
		errors.Is(err, timeentrydomain.ErrCampaignCompleted),
		errors.Is(err, changelogdomain.ErrInvalidEntity),
		errors.Is(err, changelogdomain.ErrInvalidTitle),
		errors.Is(err, changelogdomain.ErrInvalidBody),
		errors.Is(err, userdomain.ErrInvalidRole),
		errors.Is(err, userdomain.ErrInvalidStatus),
		errors.Is(err, userdomain.ErrClientRequired),
		errors.Is(err, settingsdomain.ErrInvalidName):
		return true
	}
	return false
}

func isUnauthorizedError(err error) bool {
	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrUnauthenticated),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrAccountInactive),
		errors.Is(err, authdomain.ErrGoogleOnly),
		errors.Is(err, authdomain.ErrNoInvitedAccount),
		errors.Is(err, authdomain.ErrTokenInvalid):
		return true
	}
	return false
}

func isForbiddenError(err error) bool {
	switch {
	case errors.Is(err, authz.ErrForbidden),
		errors.Is(err, timeentrydomain.ErrNotEditable),
		errors.Is(err, timeentrydomain.ErrEditWindowClosed),
		errors.Is(err, userdomain.ErrSelfDemotion),
		errors.Is(err, userdomain.ErrSelfDeletion):
		return true
	}
	return false
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, authdomain.ErrEmailTaken),
		errors.Is(err, clientdomain.ErrSlugTaken),
		errors.Is(err, userdomain.ErrLastOwner):
		return true
	}
	return false
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, authdomain.ErrUserNotFound),
		errors.Is(err, clientdomain.ErrNotFound),
		errors.Is(err, accountdomain.ErrNotFound),
		errors.Is(err, websitedomain.ErrNotFound),
		errors.Is(err, campaigndomain.ErrNotFound),
		errors.Is(err, timeentrydomain.ErrNotFound),
		errors.Is(err, timeentrydomain.ErrCampaignNotFound),
		errors.Is(err, changelogdomain.ErrNotFound),
		errors.Is(err, notifdomain.ErrNotFound),
		errors.Is(err, userdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	}
	return false
}
