package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ironforge/gym-admin-backend/internal/access"
	"github.com/ironforge/gym-admin-backend/internal/middleware"
	"github.com/ironforge/gym-admin-backend/internal/services"
	"github.com/ironforge/gym-admin-backend/pkg/billing"
	"github.com/ironforge/gym-admin-backend/pkg/validator"
	"github.com/sirupsen/logrus"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error         string      `json:"error"`
	Message       string      `json:"message"`
	Code          string      `json:"code,omitempty"`
	Details       interface{} `json:"details,omitempty"`
	CorrelationID string      `json:"correlation_id,omitempty"`
}

// base carries what every handler needs to turn requests into service calls
type base struct {
	policy *access.Policy
	logger *logrus.Logger
}

func newBase(policy *access.Policy, logger *logrus.Logger) base {
	if policy == nil {
		policy = access.DefaultPolicy()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return base{policy: policy, logger: logger}
}

// respondError writes the HTTP rendition of a service error
func (b base) respondError(c *gin.Context, err error) {
	var (
		validationErr *validator.ValidationError
		domainErr     *billing.DomainError
		authnErr      *services.AuthenticationError
		authzErr      *services.AuthorizationError
		notFoundErr   *services.NotFoundError
		conflictErr   *services.ConflictError
		rateLimitErr  *services.RateLimitError
		storageErr    *services.StorageError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Request validation failed",
			Code:    "VALIDATION_FAILED",
			Details: validationErr.Errors,
		})
	case errors.As(err, &domainErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "domain_error",
			Message: domainErr.Error(),
			Code:    "INVALID_VALUE",
			Details: gin.H{"field": domainErr.Field},
		})
	case errors.As(err, &authnErr):
		code := "INVALID_TOKEN"
		switch authnErr.Reason {
		case services.AuthInvalidCredentials:
			code = "INVALID_CREDENTIALS"
		case services.AuthExpired:
			code = "TOKEN_EXPIRED"
		}
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: authnErr.Error(),
			Code:    code,
		})
	case errors.As(err, &authzErr):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: authzErr.Reason,
			Code:    "INSUFFICIENT_PERMISSIONS",
		})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: notFoundErr.Error(),
			Code:    "NOT_FOUND",
		})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "conflict",
			Message: conflictErr.Message,
			Code:    "DUPLICATE_VALUE",
			Details: gin.H{"field": conflictErr.Field},
		})
	case errors.As(err, &rateLimitErr):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       "rate_limit_exceeded",
			"message":     rateLimitErr.Message,
			"retry_after": rateLimitErr.RetryAfter,
			"type":        rateLimitErr.Type,
		})
	case errors.Is(err, services.ErrStorageDisabled):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:   "storage_disabled",
			Message: "Photo storage is not configured",
			Code:    "STORAGE_DISABLED",
		})
	case errors.As(err, &storageErr):
		// Details were logged with the correlation id when the error was built
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:         "internal_error",
			Message:       "An unexpected error occurred. Please try again later.",
			Code:          "STORAGE_FAILURE",
			CorrelationID: storageErr.CorrelationID,
		})
	default:
		correlationID := uuid.NewString()
		b.logger.WithFields(logrus.Fields{
			"path":           c.Request.URL.Path,
			"correlation_id": correlationID,
		}).WithError(err).Error("Unhandled error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:         "internal_error",
			Message:       "An unexpected error occurred. Please try again later.",
			CorrelationID: correlationID,
		})
	}
}

// denied reports whether the caller may not perform action on resource at all.
// Malformed input is only reported to callers who would otherwise be allowed in.
func (b base) denied(c *gin.Context, identity access.Identity, resource access.Resource, action access.Action) bool {
	decision := b.policy.Authorize(identity, resource, action)
	if decision.Allowed {
		return false
	}
	b.respondError(c, &services.AuthorizationError{Resource: resource, Action: action, Reason: decision.Reason})
	return true
}

// bindPayload reads the JSON body into a generic map for the service layer to validate
func (b base) bindPayload(c *gin.Context, identity access.Identity, resource access.Resource, action access.Action) (map[string]interface{}, bool) {
	var payload map[string]interface{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		if b.denied(c, identity, resource, action) {
			return nil, false
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
			Code:    "MALFORMED_JSON",
		})
		return nil, false
	}
	return payload, true
}

// pathID parses the :name route parameter as a UUID
func (b base) pathID(c *gin.Context, name string, identity access.Identity, resource access.Resource, action access.Action) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		if b.denied(c, identity, resource, action) {
			return uuid.Nil, false
		}
		b.respondError(c, validator.NewValidationError(validator.FieldError{
			Field:   name,
			Reason:  validator.ReasonInvalidUUID,
			Message: "must be a valid UUID",
		}))
		return uuid.Nil, false
	}
	return id, true
}

// queryMap collects the named query parameters that are present
func queryMap(c *gin.Context, names ...string) map[string]interface{} {
	query := make(map[string]interface{}, len(names))
	for _, name := range names {
		if value, ok := c.GetQuery(name); ok {
			query[name] = value
		}
	}
	return query
}

func identityOf(c *gin.Context) access.Identity {
	return middleware.MustGetIdentity(c)
}
