package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/wildwatch/sightings/internal/datastore"
	"github.com/wildwatch/sightings/internal/errors"
	"github.com/wildwatch/sightings/internal/geo"
	"github.com/wildwatch/sightings/internal/legacy"
	"github.com/wildwatch/sightings/internal/logger"
	"github.com/wildwatch/sightings/internal/sighting"
	"github.com/wildwatch/sightings/internal/species"
)

// ErrorResponse represents a standard error response structure
type ErrorResponse struct {
	Error         string         `json:"error"`
	Message       string         `json:"message"`
	Code          int            `json:"code"`
	CorrelationID string         `json:"correlation_id"` // equals the X-Request-ID of the request
	Details       map[string]any `json:"details,omitempty"`
}

// NewErrorResponse creates a new API error response
func NewErrorResponse(err error, message string, code int, correlationID string) *ErrorResponse {
	errorStr := message
	if err != nil {
		errorStr = err.Error()
	}

	return &ErrorResponse{
		Error:         errorStr,
		Message:       message,
		Code:          code,
		CorrelationID: correlationID,
	}
}

// problem is the client facing classification of an error.
type problem struct {
	code    int
	message string
	kind    string // error_type label for metrics
	details map[string]any
	expose  bool // whether the raw error text may reach the client
}

// classify maps domain errors to HTTP statuses.
func classify(err error) problem {
	var fe *sighting.FieldError
	var he *echo.HTTPError

	switch {
	case errors.As(err, &fe):
		return problem{
			code:    http.StatusBadRequest,
			message: fe.Error(),
			kind:    "validation",
			details: map[string]any{"field": fe.Field, "constraint": fe.Constraint},
			expose:  true,
		}
	case errors.Is(err, geo.ErrInvalidDistance):
		return problem{code: http.StatusBadRequest, message: "invalid distance", kind: "validation", details: fieldDetails(err), expose: true}
	case errors.Is(err, geo.ErrInvalidCoordinateFormat),
		errors.Is(err, geo.ErrCoordinateOutOfRange):
		return problem{code: http.StatusBadRequest, message: "invalid coordinates", kind: "validation", details: fieldDetails(err), expose: true}
	case errors.Is(err, species.ErrMissingSpeciesReference):
		return problem{code: http.StatusBadRequest, message: "species or speciesId is required", kind: "validation", expose: true}
	case errors.Is(err, datastore.ErrLocationWriteFailed):
		return problem{code: http.StatusBadRequest, message: "location could not be stored", kind: "validation", expose: true}
	case errors.Is(err, species.ErrSpeciesNotFound):
		return problem{code: http.StatusNotFound, message: species.NotFoundMessage(err), kind: "not_found", expose: true}
	case errors.Is(err, legacy.ErrLegacyMirror):
		return problem{code: http.StatusBadGateway, message: "legacy service request failed", kind: "upstream", expose: true}
	case errors.As(err, &he):
		msg, ok := he.Message.(string)
		if !ok {
			msg = http.StatusText(he.Code)
		}
		return problem{code: he.Code, message: msg, kind: "http", expose: true}
	default:
		return problem{code: http.StatusInternalServerError, message: "internal server error", kind: "system"}
	}
}

// fieldDetails lifts the field and constraint context of a validation error.
func fieldDetails(err error) map[string]any {
	var ee *errors.EnhancedError
	if !errors.As(err, &ee) {
		return nil
	}
	details := make(map[string]any, 2)
	for _, key := range []string{"field", "constraint"} {
		if v, ok := ee.ContextValue(key); ok {
			details[key] = v
		}
	}
	if len(details) == 0 {
		return nil
	}
	return details
}

// HandleError logs err and writes the matching ErrorResponse.
func (c *Controller) HandleError(ctx echo.Context, err error) error {
	p := classify(err)
	correlationID := requestID(ctx)

	resp := NewErrorResponse(nil, p.message, p.code, correlationID)
	if p.expose {
		resp.Error = err.Error()
	}
	resp.Details = p.details

	// expose the classification to the request logging middleware
	ctx.Set(errorTypeKey, p.kind)

	fields := []logger.Field{
		logger.String("correlation_id", correlationID),
		logger.String("method", ctx.Request().Method),
		logger.String("path", ctx.Path()),
		logger.String("ip", ctx.RealIP()),
		logger.Int("code", p.code),
		logger.Error(err),
	}
	var ee *errors.EnhancedError
	if errors.As(err, &ee) {
		fields = append(fields,
			logger.String("component", ee.GetComponent()),
			logger.String("category", ee.GetCategory()))
		if errCtx := ee.GetContext(); len(errCtx) > 0 {
			fields = append(fields, logger.Any("error_context", errCtx))
		}
	}
	if p.code >= http.StatusInternalServerError {
		c.logger.WithContext(ctx.Request().Context()).Error("API error", fields...)
	} else {
		c.logger.WithContext(ctx.Request().Context()).Debug("API request rejected", fields...)
	}

	return ctx.JSON(p.code, resp)
}

// errorTypeKey is the echo context key carrying the error classification.
const errorTypeKey = "api_error_type"

// ErrorType returns the classification HandleError stored on ctx, if any.
func ErrorType(ctx echo.Context) string {
	kind, _ := ctx.Get(errorTypeKey).(string)
	return kind
}

func requestID(ctx echo.Context) string {
	if id := ctx.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	if id := ctx.Request().Header.Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return uuid.NewString()
}
