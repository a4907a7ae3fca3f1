package core

import (
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func newValidator(t *testing.T) (*validator.Validate, ut.Translator) {
	t.Helper()
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	InitValidators(validate, translator)
	return validate, translator
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2024-02-29 ")
	assert.NoError(t, err)
	assert.Equal(t, "2024-02-29", d.Format(DateLayout))

	for _, s := range []string{"", "2023-02-29", "29/02/2024", "2024-2-9"} {
		_, err := ParseDate(s)
		assert.Error(t, err, s)
	}
}

func TestErrorMessage(t *testing.T) {
	validate, translator := newValidator(t)

	type payload struct {
		Name string `json:"name" validate:"required,notblank"`
		Day  string `json:"day" validate:"date"`
	}

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "required", err: validate.Struct(payload{}), want: "name: this field is required"},
		{name: "blank", err: validate.Struct(payload{Name: "  "}), want: "name: this field cannot be blank"},
		{name: "date", err: validate.Struct(payload{Name: "x", Day: "tomorrow"}), want: "day must be a valid date (YYYY-MM-DD)"},
		{
			name: "fields",
			err:  NewValidationError(nil, FieldError{Field: "points", Error: "insufficient points"}, FieldError{Field: "level", Error: "level is unknown"}),
			want: "points: insufficient points; level is unknown",
		},
		{name: "wrapped conflict", err: errors.Wrap(NewConflictError("email", "already taken"), "creating"), want: "email: already taken"},
		{name: "plain", err: errors.New("boom"), want: "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorMessage(tt.err, translator))
		})
	}
}
