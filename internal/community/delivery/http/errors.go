package http

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"golang-stock-circle/pkg/apperror"
	"golang-stock-circle/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var kindStatus = map[apperror.Kind]int{
	apperror.KindValidation:   http.StatusBadRequest,
	apperror.KindUnauthorized: http.StatusUnauthorized,
	apperror.KindPermission:   http.StatusForbidden,
	apperror.KindNotMutual:    http.StatusForbidden,
	apperror.KindNotFound:     http.StatusNotFound,
	apperror.KindConflict:     http.StatusConflict,
	apperror.KindUpstream:     http.StatusBadGateway,
}

// ErrorHandler writes every handler error as {"error": "..."} with a status derived from its kind.
// Errors without a kind are logged and reported as a generic 500.
func ErrorHandler(log *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, msg := statusOf(err)
		if status == http.StatusInternalServerError {
			log.ErrorContext(c.Request().Context(), "Unhandled request error", logger.ErrorField(err),
				logger.StringField("path", c.Path()))
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, echo.Map{"error": msg})
		}
		if err != nil {
			log.Error("Failed to write error response", logger.ErrorField(err))
		}
	}
}

func statusOf(err error) (int, string) {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		if status, ok := kindStatus[appErr.Kind]; ok {
			if appErr.Kind == apperror.KindUpstream {
				// upstream causes may carry provider details
				return status, appErr.Message
			}
			return status, appErr.Error()
		}
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code, fmt.Sprint(httpErr.Message)
	}
	return http.StatusInternalServerError, "internal server error"
}

// RequestValidator adapts go-playground/validator to echo.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			if name, _, _ := strings.Cut(fld.Tag.Get(tag), ","); name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})
	return &RequestValidator{validate: v}
}

func (v *RequestValidator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperror.Validation("invalid request")
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return apperror.Validation("%s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "url":
		return field + " must be a URL"
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

// bind decodes the request into req and validates it.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperror.Validation("invalid request payload")
	}
	return c.Validate(req)
}
