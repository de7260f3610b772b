package colony

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var validatorOnce sync.Once
var validate *validator.Validate

// Validator returns the shared validator configured for record tags.
func Validator() *validator.Validate {
	validatorOnce.Do(func() {
		validate = validator.New()
		validate.SetTagName("binding")

		if err := validate.RegisterValidation("statecode", stateCode); err != nil {
			panic(err)
		}

		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// stateCode accepts any two or three letter code. Aggregate rows such as
// "Other States" (OT) or national totals (US) carry codes outside the state
// table.
func stateCode(fl validator.FieldLevel) bool {
	return isRegionCode(fl.Field().String())
}

// ValidateRecord checks the structural constraints of a record and returns
// the first offending field name with the validation error.
func ValidateRecord(r Record) (string, error) {
	err := Validator().Struct(r)
	if err == nil {
		return "", nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Field(), verrs[0]
	}
	return "", err
}
