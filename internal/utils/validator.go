package utils

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/matelog-ae/course-service/internal/models"
)

// Validator wraps go-playground/validator with the domain's custom rules.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	validate := validator.New()
	RegisterCustomValidators(validate)
	return &Validator{validate: validate}
}

// Validate checks struct tags on the given value.
func (v *Validator) Validate(s interface{}) error {
	return v.validate.Struct(s)
}

// Validation support helpers

func oneOfStrings(fl validator.FieldLevel, valid ...string) bool {
	value := fl.Field().String()
	for _, candidate := range valid {
		if candidate == value {
			return true
		}
	}
	return false
}

func ValidateExerciseKind(fl validator.FieldLevel) bool {
	return oneOfStrings(fl,
		string(models.ExerciseOpen),
		string(models.ExerciseMultipleChoice),
	)
}

func ValidateDifficultyLevel(fl validator.FieldLevel) bool {
	return oneOfStrings(fl,
		string(models.DifficultyEasy),
		string(models.DifficultyMedium),
		string(models.DifficultyHard),
	)
}

func ValidateContentKind(fl validator.FieldLevel) bool {
	return oneOfStrings(fl,
		string(models.ContentTheory),
		string(models.ContentExample),
		string(models.ContentExtraExample),
		string(models.ContentSummary),
	)
}

func ValidateLearnerGroup(fl validator.FieldLevel) bool {
	return oneOfStrings(fl,
		string(models.GroupControl),
		string(models.GroupExperimental),
	)
}

func ValidateEfficacyClass(fl validator.FieldLevel) bool {
	return oneOfStrings(fl,
		string(models.EfficacyHigh),
		string(models.EfficacyMedium),
		string(models.EfficacyLow),
	)
}

func ValidateOptionLabel(fl validator.FieldLevel) bool {
	return oneOfStrings(fl, models.OptionLabels...)
}

func ValidateScreenKind(fl validator.FieldLevel) bool {
	return oneOfStrings(fl,
		string(models.ScreenTheory),
		string(models.ScreenExample),
		string(models.ScreenExercise),
	)
}

func ValidateButtonKind(fl validator.FieldLevel) bool {
	return oneOfStrings(fl,
		string(models.ButtonBack),
		string(models.ButtonGoExercises),
		string(models.ButtonReturn),
		string(models.ButtonExtraExample),
		string(models.ButtonHelp),
	)
}

// RegisterCustomValidators registers all custom validators
func RegisterCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("exercise_kind", ValidateExerciseKind)
	validate.RegisterValidation("difficulty_level", ValidateDifficultyLevel)
	validate.RegisterValidation("content_kind", ValidateContentKind)
	validate.RegisterValidation("learner_group", ValidateLearnerGroup)
	validate.RegisterValidation("efficacy_class", ValidateEfficacyClass)
	validate.RegisterValidation("option_label", ValidateOptionLabel)
	validate.RegisterValidation("screen_kind", ValidateScreenKind)
	validate.RegisterValidation("button_kind", ValidateButtonKind)

	// Register custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}
