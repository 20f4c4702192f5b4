package controllers

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/yashrajoria/lezzetli-admin/common/errors"
)

// Allowed image types, detected from the uploaded bytes.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// companyForm carries the company fields whose format is checked before the
// service sees them. Presence rules live in the service.
type companyForm struct {
	Email       string `form:"email" validate:"omitempty,email"`
	Phone       string `form:"phone" validate:"omitempty,max=32"`
	CompanyCode string `form:"company_code" validate:"omitempty,max=32"`
}

type menuItemForm struct {
	Name  string `form:"name" validate:"omitempty,max=120"`
	Price string `form:"price" validate:"omitempty,numeric"`
}

// validateForm returns a validation error naming the first bad field.
func validateForm(form interface{}) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return apperrors.Validation("Invalid " + strings.ReplaceAll(fieldErrs[0].Field(), "_", " "))
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}
