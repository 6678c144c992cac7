// internal/validator/validator.go
package validator

import (
	"card-advisor/internal/domain"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var Validate *validator.Validate

var (
	nonSpace = regexp.MustCompile(`\S`)
	e164     = regexp.MustCompile(`^\+[1-9]\d{6,14}$`)
)

func init() {
	Validate = validator.New()

	// имена полей в ошибках берём из json-тегов
	Validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	// Регистрируем валидацию: строка не пустая и не только пробелы
	_ = Validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return nonSpace.MatchString(fl.Field().String())
	})

	// пусто или одна из известных выгод после нормализации
	_ = Validate.RegisterValidation("benefit", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return strings.TrimSpace(s) == "" || domain.ParseBenefit(s).Known()
	})

	// номер в формате E.164, допускается префикс "whatsapp:"
	_ = Validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		s := strings.TrimPrefix(strings.TrimSpace(fl.Field().String()), "whatsapp:")
		return e164.MatchString(s)
	})
}
