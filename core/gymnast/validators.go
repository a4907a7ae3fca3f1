package gymnast

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/gymleague/core"
)

var (
	levelTag  = "gymlevel"
	levelText = "{0} must be one of pre-team, 3, 4, 5, 6, 7, 8, 9, 10"

	typeTag  = "gymnasttype"
	typeText = "{0} must be one of team, pre-team, non-team"

	birthDateTag  = "birthdate"
	birthDateText = "{0} must be a valid past date (YYYY-MM-DD)"

	minBirthDate = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(levelTag, levelValidation)
	core.RegisterCustomTranslation(validate, translator, levelTag, levelText)

	_ = validate.RegisterValidation(typeTag, typeValidation)
	core.RegisterCustomTranslation(validate, translator, typeTag, typeText)

	_ = validate.RegisterValidation(birthDateTag, birthDateValidation)
	core.RegisterCustomTranslation(validate, translator, birthDateTag, birthDateText)
}

func IsValidLevel(level string) bool {
	return contains(Levels, level)
}

func levelValidation(fl validator.FieldLevel) bool {
	return IsValidLevel(fl.Field().String())
}

func typeValidation(fl validator.FieldLevel) bool {
	return contains(Types, fl.Field().String())
}

// birthDateValidation accepts YYYY-MM-DD dates between 1900-01-01 and today.
func birthDateValidation(fl validator.FieldLevel) bool {
	d, err := core.ParseDate(fl.Field().String())
	if err != nil {
		return false
	}
	return !d.Before(minBirthDate) && !d.After(time.Now().UTC())
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
