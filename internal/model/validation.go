package model

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidations installs custom binding validations on gin's
// validator engine. Call once at startup before serving requests.
func RegisterValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	v.RegisterValidation("weekdays", func(fl validator.FieldLevel) bool {
		days, ok := fl.Field().Interface().(WeekdayList)
		if !ok {
			return false
		}
		return days.Validate() == nil
	})
}
