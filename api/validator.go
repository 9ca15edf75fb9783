package api

import (
	"github.com/gin-gonic/gin/binding"

	"go-shop/internal/models"
)

type normalizer interface {
	Normalize()
}

// requestValidator replaces gin's bind-time validator. Requests are
// normalized before their binding tags are checked, and tags are checked
// by the same validator the services use.
type requestValidator struct{}

var _ binding.StructValidator = requestValidator{}

func (requestValidator) ValidateStruct(obj any) error {
	if n, ok := obj.(normalizer); ok {
		n.Normalize()
	}
	return models.Validate(obj)
}

func (requestValidator) Engine() any {
	return models.Validator()
}
