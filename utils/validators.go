package utils

import (
	"execpanel/model"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var Validate *validator.Validate

// InitValidator registers the panel's fixed-enum validators on gin's
// binding engine so dto tags can use them directly.
func InitValidator() {
	Validate = validator.New()
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		registerEnumValidators(v)
	}
	registerEnumValidators(Validate)
}

func registerEnumValidators(v *validator.Validate) {
	v.RegisterValidation("tasktype", ValidateTaskTypeRule)
	v.RegisterValidation("importance", ValidateImportanceRule)
	v.RegisterValidation("failreason", ValidateFailReasonRule)
	v.RegisterValidation("selfcompare", ValidateSelfCompareRule)
}

func ValidateTaskTypeRule(fl validator.FieldLevel) bool {
	switch model.TaskType(fl.Field().String()) {
	case model.TaskTypeDeep, model.TaskTypeRepeat, model.TaskTypeLight, "":
		return true
	}
	return false
}

func ValidateImportanceRule(fl validator.FieldLevel) bool {
	switch model.Importance(fl.Field().String()) {
	case model.ImportanceNormal, model.ImportanceUrgent, "":
		return true
	}
	return false
}

func ValidateFailReasonRule(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return model.ValidFailReason(model.FailReason(value))
}

func ValidateSelfCompareRule(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return model.ValidSelfCompare(model.SelfCompare(value))
}
