package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"go-shop/internal/apperr"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator. It reads the same `binding` tags
// gin evaluates on bind and reports fields by their JSON names.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.SetTagName("binding")
		validate.RegisterTagNameFunc(JSONFieldName)
		_ = validate.RegisterValidation("cents", func(fl validator.FieldLevel) bool {
			return HasCents(fl.Field().Float())
		})
	})
	return validate
}

// HasCents reports whether v has at most two decimal places.
func HasCents(v float64) bool {
	return decimal.NewFromFloat(v).Exponent() >= -2
}

// JSONFieldName reports a struct field by its JSON name so validation
// messages use the names clients send.
func JSONFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return f.Name
	}
	return name
}

// Validate checks req against its binding tags and returns a Validation
// error describing the first failing field.
func Validate(req any) error {
	err := Validator().Struct(req)
	if err == nil {
		return nil
	}
	return ValidationError(err)
}

// ValidationError converts a validator or bind error into a Validation
// failure with a client-safe message.
func ValidationError(err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Wrap(apperr.KindValidation, "malformed request body", err)
	}
	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return apperr.Validation("%s is required", field)
	case "email":
		return apperr.Validation("%s must be a valid email address", field)
	case "min":
		if fe.Kind() == reflect.String {
			return apperr.Validation("%s must be at least %s characters", field, fe.Param())
		}
		return apperr.Validation("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return apperr.Validation("%s must be at most %s characters", field, fe.Param())
		}
		return apperr.Validation("%s must be at most %s", field, fe.Param())
	case "cents":
		return apperr.Validation("%s must have at most 2 decimal places", field)
	case "gt":
		return apperr.Validation("%s must be greater than %s", field, fe.Param())
	default:
		return apperr.Validation("%s is invalid", field)
	}
}

// Normalize trims surrounding whitespace from free-text fields.
func (r *RegisterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *CreateProductRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Code = strings.TrimSpace(r.Code)
	r.Description = strings.TrimSpace(r.Description)
	r.Category = strings.TrimSpace(r.Category)
	if r.Category == "" {
		r.Category = DefaultCategory
	}
}

// Apply copies the supplied fields of r onto p. Omitted fields are left
// unchanged; supplied text fields are trimmed and must not be blank.
func (r *UpdateProductRequest) Apply(p *Product) error {
	if r.Name != nil {
		v := strings.TrimSpace(*r.Name)
		if v == "" {
			return apperr.Validation("name must not be empty")
		}
		p.Name = v
	}
	if r.Code != nil {
		v := strings.TrimSpace(*r.Code)
		if v == "" {
			return apperr.Validation("code must not be empty")
		}
		p.Code = v
	}
	if r.Price != nil {
		if *r.Price <= 0 {
			return apperr.Validation("price must be greater than 0")
		}
		if !HasCents(*r.Price) {
			return apperr.Validation("price must have at most 2 decimal places")
		}
		p.Price = *r.Price
	}
	if r.Description != nil {
		v := strings.TrimSpace(*r.Description)
		if v == "" {
			return apperr.Validation("description must not be empty")
		}
		p.Description = v
	}
	if r.Category != nil {
		v := strings.TrimSpace(*r.Category)
		if v == "" {
			v = DefaultCategory
		}
		p.Category = v
	}
	if r.ImageURL != nil {
		p.ImageURL = strings.TrimSpace(*r.ImageURL)
	}
	return nil
}

func (i Identity) String() string {
	return fmt.Sprintf("%d/%s", i.UserID, i.Role)
}
