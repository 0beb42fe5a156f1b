package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"tillpos/internal/apierror"
	"tillpos/internal/money"
	"tillpos/internal/service"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal and money.Money as numeric types so that
	// validator tags like min=0, gt=0, required work without panicking
	// ("Bad field type").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(money.Money); ok {
			f, _ := v.Decimal().Float64()
			return f
		}
		return nil
	}, money.Money{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// writeServiceError maps domain errors to HTTP statuses:
// caller contract violations → 400/422, illegal state transitions → 409,
// store failures → 503 (retryable).
func writeServiceError(c *gin.Context, err error) {
	var mismatch *service.PaymentMismatchError
	var persistence *service.PersistenceError

	switch {
	case errors.As(err, &mismatch):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"detail":   mismatch.Error(),
			"expected": mismatch.Expected,
			"actual":   mismatch.Actual,
		})
	case errors.As(err, &persistence):
		c.JSON(http.StatusServiceUnavailable, apierror.New(persistence.Error()))
	case errors.Is(err, service.ErrRegisterClosed),
		errors.Is(err, service.ErrNoOpenRegister),
		errors.Is(err, service.ErrRegisterAlreadyOpen):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	default:
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	}
}
