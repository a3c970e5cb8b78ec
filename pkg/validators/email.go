// Package validators contains validators found throughout the application
// that have been abstracted away from the main code
package validators

import (
	"errors"
	"net/mail"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// EmailTag is the binding tag backed by EmailValidator
const EmailTag = "mailaddr"

var (
	ErrEmailEmpty   = errors.New("no email address provided")
	ErrEmailInvalid = errors.New("invalid email address provided")
)

var (
	registerOnce sync.Once
	registerErr  error
)

// EmailValidator accepts a bare address only. Display names, comments and
// quoted local parts that net/mail would rewrite are rejected.
func EmailValidator(e string) error {
	if e == "" {
		return ErrEmailEmpty
	}

	a, err := mail.ParseAddress(e)
	if err != nil || a.Address != e {
		return ErrEmailInvalid
	}

	return nil
}

// RegisterBindings adds the custom tags to gin's form validator. Safe to
// call more than once.
func RegisterBindings() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("gin binding engine is not go-playground/validator")
			return
		}

		registerErr = v.RegisterValidation(EmailTag, func(fl validator.FieldLevel) bool {
			return EmailValidator(fl.Field().String()) == nil
		})
	})

	return registerErr
}
