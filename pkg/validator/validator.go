package validator

import (
	"log"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// ActivationCodeTag validates a six digit activation code.
const ActivationCodeTag = "activationcode"

const (
	activationCodeMin = 100000
	activationCodeMax = 999999
)

func RegisterGinValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		Register(v)
	}
}

// Register installs the json tag name func and custom validations on v.
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	err := v.RegisterValidation(ActivationCodeTag, activationCodeValidator)
	if err != nil {
		log.Fatal("register activationcode validator failed")
	}
}

var activationCodeValidator validator.Func = func(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		code := fl.Field().Int()
		return code >= activationCodeMin && code <= activationCodeMax
	default:
		return false
	}
}
