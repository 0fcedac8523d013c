package validate

import (
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	gameIDPattern   = regexp.MustCompile(`^00[1-9]\d{7}$`)
	seasonPattern   = regexp.MustCompile(`^\d{4}-\d{2}$`)
	clockMMSS       = regexp.MustCompile(`^\d{1,2}:[0-5]\d(\.\d{1,3})?$`)
	clockISO        = regexp.MustCompile(`^PT\d+M\d+(\.\d{1,3})?S$`)
	registerOnce    sync.Once
	sharedValidator *validator.Validate
)

// Struct validates a tagged struct with the shared validator. Custom rules:
// nbagameid (10-char zero-padded game ID), nbaseason (YYYY-YY), nbaclock
// (MM:SS[.fff] or PT{m}M{s}[.fff]S).
func Struct(v any) error {
	return instance().Struct(v)
}

// GameID reports whether v is a well-formed 10-char game ID.
func GameID(v string) bool {
	return gameIDPattern.MatchString(v)
}

// Season reports whether v looks like "2023-24".
func Season(v string) bool {
	return seasonPattern.MatchString(v)
}

// Clock reports whether v is a parseable game clock string.
func Clock(v string) bool {
	return clockMMSS.MatchString(v) || clockISO.MatchString(v)
}

func instance() *validator.Validate {
	registerOnce.Do(func() {
		sharedValidator = validator.New(validator.WithRequiredStructEnabled())
		mustRegister("nbagameid", func(fl validator.FieldLevel) bool {
			return GameID(fl.Field().String())
		})
		mustRegister("nbaseason", func(fl validator.FieldLevel) bool {
			return Season(fl.Field().String())
		})
		mustRegister("nbaclock", func(fl validator.FieldLevel) bool {
			return Clock(fl.Field().String())
		})
	})
	return sharedValidator
}

func mustRegister(tag string, fn validator.Func) {
	if err := sharedValidator.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}
