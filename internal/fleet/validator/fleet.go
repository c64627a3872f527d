package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"flightline/pkg/logger"
	"flightline/pkg/model"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type FleetValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewFleetValidator(log *logger.Logger) *FleetValidator {
	log.Info("Fleet validator initialized successfully")
	return &FleetValidator{
		validate: validator.New(),
		logger:   log,
	}
}

func (v *FleetValidator) ValidateAircraft(a *model.Aircraft) error {
	return v.translate(v.validate.Struct(a))
}

func (v *FleetValidator) ValidateAircraftUpdate(u *model.AircraftUpdate) error {
	if u == nil || (u.TailNumber == "" && u.MakeModel == "" && u.Type == "") {
		return ValidationErrors{{Field: "update", Message: "at least one field must be provided"}}
	}
	return v.translate(v.validate.Struct(u))
}

func (v *FleetValidator) ValidateInstructor(i *model.Instructor) error {
	return v.translate(v.validate.Struct(i))
}

func (v *FleetValidator) ValidateInstructorUpdate(u *model.InstructorUpdate) error {
	if u == nil || (u.Name == "" && u.Email == "" && u.Phone == nil && u.Ratings == nil) {
		return ValidationErrors{{Field: "update", Message: "at least one field must be provided"}}
	}
	return v.translate(v.validate.Struct(u))
}

func (v *FleetValidator) translate(err error) error {
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	var out ValidationErrors
	for _, fieldErr := range validationErrs {
		message := fieldErr.Error()

		switch fieldErr.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", fieldErr.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", fieldErr.Field(), fieldErr.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", fieldErr.Field(), fieldErr.Param())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", fieldErr.Field())
		case "e164":
			message = fmt.Sprintf("%s must be an E.164 phone number", fieldErr.Field())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid object ID", fieldErr.Field())
		}

		out = append(out, ValidationError{Field: fieldErr.Field(), Message: message})
	}

	return out
}
