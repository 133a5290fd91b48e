package http

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/Sa-tya/shelf-manager/internal/entities"
)

var registerOnce sync.Once

// registerValidators adds the classlabel rule to gin's validator and makes
// field errors report JSON names.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("classlabel", func(fl validator.FieldLevel) bool {
			class := fl.Field().String()
			return class == "" || entities.IsValidClass(class)
		})
	})
}

// FieldError describes one failed rule.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// bindJSON binds the request body. On failure it answers 400 with message, or
// with "invalid class" when a class label is the only problem.
func bindJSON(c *gin.Context, req any, message string) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		respondBadRequest(c, message)
		return false
	}

	details := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, FieldError{Field: fe.Field(), Rule: fe.Tag()})
	}
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: validationMessage(verrs, message), Code: "validation_failed", Details: details})
	return false
}

// bindForm binds an urlencoded form post into req.
func bindForm(c *gin.Context, req any, message string) error {
	err := c.ShouldBindWith(req, binding.Form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		message = validationMessage(verrs, message)
	}
	return badRequestError(message)
}

func validationMessage(verrs validator.ValidationErrors, message string) string {
	for _, fe := range verrs {
		if fe.Tag() != "classlabel" {
			return message
		}
	}
	return "invalid class"
}
