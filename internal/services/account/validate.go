package account

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/user-accounts/internal/models"
)

// messages тексты ошибок по паре поле/правило.
var messages = map[string]string{
	"username.required":        "Enter username",
	"username.min":             "Username must not be empty",
	"email.required":           "Enter a valid email",
	"email.email":              "Enter a valid email",
	"password.required":        "Password must be at least 6 characters long",
	"password.min":             "Password must be at least 6 characters long",
	"password.maxbytes":        "Password must be at most 72 bytes long",
	"gender.required":          "Gender is required",
	"gender.min":               "Gender must not be empty",
	"usernameOrEmail.required": "Enter username or email",
}

type loginInput struct {
	UsernameOrEmail string `json:"usernameOrEmail" validate:"required"`
	Password        string `json:"password" validate:"required"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	// max у строк считает руны, а bcrypt ограничивает длину в байтах
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= limit
	})
	return v
}

// validateStruct проверяет структуру и превращает ошибки валидатора в ValidationError.
func validateStruct(v *validator.Validate, s any) *ValidationError {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return &ValidationError{Fields: []FieldError{{Message: err.Error()}}}
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		field := fe.Field()
		msg, found := messages[field+"."+fe.Tag()]
		if !found {
			msg = fmt.Sprintf("field %s is not valid", field)
		}
		out.Fields = append(out.Fields, FieldError{Field: field, Message: msg})
	}
	return out
}

// validateFiles проверяет количество вложений.
func validateFiles(files Files) []FieldError {
	var errs []FieldError
	if len(files.ProfilePic) > 1 {
		errs = append(errs, FieldError{Field: "profilePic", Message: "Only one profile picture is allowed"})
	}
	if len(files.Documents) > models.MaxDocuments {
		errs = append(errs, FieldError{
			Field:   "documents",
			Message: fmt.Sprintf("At most %d documents are allowed", models.MaxDocuments),
		})
	}
	return errs
}

// normalizeUpdate отбрасывает пустые строки: незаполненное поле не меняется.
func normalizeUpdate(upd models.UserUpdate) models.UserUpdate {
	drop := func(p *string) *string {
		if p == nil || *p == "" {
			return nil
		}
		return p
	}
	return models.UserUpdate{
		Username: drop(upd.Username),
		Email:    drop(upd.Email),
		Gender:   drop(upd.Gender),
		Password: drop(upd.Password),
	}
}
