package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/bestworkers-api/internal/domain"
)

var (
	mobileRe = regexp.MustCompile(`^\d{10}$`)
	pinRe    = regexp.MustCompile(`^\d{4}$`)
)

// v is the package-level singleton validator. Custom rules are registered in
// init() before the first call to Struct.
var v = validator.New()

func init() {
	_ = v.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
		return mobileRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("pin", func(fl validator.FieldLevel) bool {
		return pinRe.MatchString(fl.Field().String())
	})
}

// Struct validates the given struct using its validate tags.
// Failures come back as a domain.ErrValidation error with a readable message.
func Struct(s interface{}) error {
	if err := v.Struct(s); err != nil {
		ve, ok := err.(validator.ValidationErrors)
		if !ok {
			return domain.NewError(domain.ErrValidation, "invalid request")
		}
		var msgs []string
		for _, fe := range ve {
			msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s'", fe.Field(), fe.Tag()))
		}
		return domain.NewError(domain.ErrValidation, strings.Join(msgs, "; "))
	}
	return nil
}
