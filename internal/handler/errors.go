package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/Nabhonil04/stockpredict/internal/database/models"
	"github.com/Nabhonil04/stockpredict/internal/database/service"
)

// RegisterValidators installs the custom binding rules and makes validation
// messages use JSON/form field names. Call once before serving.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected binding validator engine")
	}

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name, _, _ := strings.Cut(field.Tag.Get(tag), ",")
			if name != "" && name != "-" {
				return name
			}
		}
		return field.Name
	})

	return v.RegisterValidation("ticker", func(fl validator.FieldLevel) bool {
		return models.ValidTicker(models.NormalizeTicker(fl.Field().String()))
	})
}

func errorResponse(c *gin.Context, status int, detail string) {
	c.JSON(status, gin.H{"detail": detail})
}

// bindingError answers a request whose body failed to bind with 422.
func bindingError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errorResponse(c, http.StatusUnprocessableEntity, "Malformed request body")
		return
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, fieldMessage(fe))
	}
	errorResponse(c, http.StatusUnprocessableEntity, strings.Join(messages, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s: field required", fe.Field())
	case "email":
		return fmt.Sprintf("%s: value is not a valid email address", fe.Field())
	case "max":
		return fmt.Sprintf("%s: must be at most %s characters", fe.Field(), fe.Param())
	case "ticker":
		return fmt.Sprintf("%s: not a valid ticker symbol", fe.Field())
	default:
		return fmt.Sprintf("%s: failed %q validation", fe.Field(), fe.Tag())
	}
}

// serviceError maps service errors to HTTP responses
func serviceError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		errorResponse(c, http.StatusUnprocessableEntity, strings.TrimPrefix(err.Error(), service.ErrValidation.Error()+": "))
	case errors.Is(err, service.ErrEmailAlreadyExists):
		errorResponse(c, http.StatusBadRequest, "Email already registered")
	case errors.Is(err, service.ErrTickerAlreadyWatched):
		errorResponse(c, http.StatusBadRequest, "Stock already in watchlist")
	case errors.Is(err, service.ErrInvalidCredentials):
		c.Header("WWW-Authenticate", "Bearer")
		errorResponse(c, http.StatusUnauthorized, "Incorrect email or password")
	case errors.Is(err, service.ErrUnauthenticated), errors.Is(err, service.ErrUserNotFound):
		c.Header("WWW-Authenticate", "Bearer")
		errorResponse(c, http.StatusUnauthorized, "Could not validate credentials")
	case errors.Is(err, service.ErrInactiveUser):
		errorResponse(c, http.StatusForbidden, "Inactive user")
	case errors.Is(err, service.ErrTickerNotWatched):
		errorResponse(c, http.StatusNotFound, "Stock not found in watchlist")
	default:
		logger.Error("❌ [Handler] Unexpected error", "path", c.FullPath(), "error", err)
		errorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
}
