package api

import (
	"errors"
	"fmt"
	"path"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("image", func(fl validator.FieldLevel) bool {
		ext := strings.ToLower(path.Ext(fl.Field().String()))
		return imageExtensions[ext]
	})
	return v
}

// Validate checks payload against its `validate` tags and returns a
// message listing every failing field.
func Validate(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return err
	}
	msgs := make([]string, 0, len(vErrs))
	for _, vErr := range vErrs {
		msgs = append(msgs, fieldMessage(vErr))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "image":
		return fmt.Sprintf("%s must reference a jpg, png, gif or webp file", fe.Field())
	}
	return fmt.Sprintf("%s failed validation on '%s'", fe.Field(), fe.Tag())
}
