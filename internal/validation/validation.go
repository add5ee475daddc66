// Package validation checks submitted user forms against a fixed list of
// field rules. Every rule runs independently; failures accumulate in rule order.
package validation

import (
	"regexp"
	"strings"

	validator "github.com/go-playground/validator/v10"

	"github.com/patric-chuzhbe/usersweb/internal/models"
)

const (
	MsgNameRequired     = "El nombre es requerido"
	MsgNameSpecialChars = "El nombre no debe contener caracteres especiales"
	MsgEmailInvalid     = "El email no es válido"
	MsgPasswordTooShort = "La contraseña debe tener al menos 6 caracteres"
)

// \s plus the vertical tab and Unicode space separators browsers count as whitespace.
var lettersAndSpaces = regexp.MustCompile(`^[a-zA-Z\s\v\p{Zs}\x{FEFF}\x{2028}\x{2029}]*$`)

var topLevelDomain = regexp.MustCompile(
	`(?i)^([a-z\x{00A1}-\x{00A8}\x{00AA}-\x{D7FF}\x{F900}-\x{FDCF}\x{FDF0}-\x{FFEF}]{2,}|xn[a-z0-9-]{2,})$`,
)

type rule struct {
	field string
	tag   string
	msg   string
	value func(form models.UserForm) string
}

func nameOf(form models.UserForm) string     { return form.Name }
func emailOf(form models.UserForm) string    { return form.Email }
func passwordOf(form models.UserForm) string { return form.Password }

var createUserRules = []rule{
	{field: "name", tag: "required", msg: MsgNameRequired, value: nameOf},
	{field: "name", tag: "lettersspaces", msg: MsgNameSpecialChars, value: nameOf},
	{field: "email", tag: "email,emaildomain", msg: MsgEmailInvalid, value: emailOf},
	{field: "password", tag: "min=6", msg: MsgPasswordTooShort, value: passwordOf},
}

// Validator runs the create-user rule list.
type Validator struct {
	validate *validator.Validate
}

func validateLettersAndSpaces(fieldLevel validator.FieldLevel) bool {
	return lettersAndSpaces.MatchString(fieldLevel.Field().String())
}

// validateEmailDomain requires a dotted domain without a trailing dot whose
// last label is alphabetic and at least two characters long.
func validateEmailDomain(fieldLevel validator.FieldLevel) bool {
	email := fieldLevel.Field().String()
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}

	labels := strings.Split(email[at+1:], ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if label == "" {
			return false
		}
	}

	return topLevelDomain.MatchString(labels[len(labels)-1])
}

// New builds a Validator with the custom `lettersspaces` and `emaildomain` rules registered.
func New() (*Validator, error) {
	validate := validator.New()

	err := validate.RegisterValidation("lettersspaces", validateLettersAndSpaces)
	if err != nil {
		return nil, err
	}

	err = validate.RegisterValidation("emaildomain", validateEmailDomain)
	if err != nil {
		return nil, err
	}

	return &Validator{validate: validate}, nil
}

// ValidateUserForm returns one entry per failed rule. An empty result means the form is valid.
func (v *Validator) ValidateUserForm(form models.UserForm) []models.ValidationError {
	var result []models.ValidationError
	for _, r := range createUserRules {
		if err := v.validate.Var(r.value(form), r.tag); err != nil {
			result = append(result, models.ValidationError{Field: r.field, Msg: r.msg})
		}
	}

	return result
}
