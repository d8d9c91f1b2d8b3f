package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"jobscout/pkg/models"
)

// JobIDPattern matches provider job ids, which are opaque base64-ish tokens
var JobIDPattern = regexp.MustCompile(`^[A-Za-z0-9_\-=+/.:]{1,256}$`)

var (
	datePostedValues = map[string]bool{
		string(models.DatePostedAll):   true,
		string(models.DatePostedToday): true,
		string(models.DatePosted3Days): true,
		string(models.DatePostedWeek):  true,
		string(models.DatePostedMonth): true,
	}
	employmentTypeValues = map[string]bool{
		models.EmploymentFullTime:   true,
		models.EmploymentPartTime:   true,
		models.EmploymentContractor: true,
		models.EmploymentIntern:     true,
	}
	requirementValues = map[string]bool{
		models.RequirementUnder3Years: true,
		models.RequirementOver3Years:  true,
		models.RequirementNoExp:       true,
		models.RequirementNoDegree:    true,
	}
)

// ValidateJobID checks the job id format
func ValidateJobID(fl validator.FieldLevel) bool {
	return JobIDPattern.MatchString(fl.Field().String())
}

// ValidateDatePosted accepts the provider's posting-age values
func ValidateDatePosted(fl validator.FieldLevel) bool {
	return datePostedValues[fl.Field().String()]
}

// ValidateEmploymentTypes accepts a comma separated list of employment types
func ValidateEmploymentTypes(fl validator.FieldLevel) bool {
	return commaList(fl.Field().String(), employmentTypeValues)
}

// ValidateJobRequirements accepts a comma separated list of requirement tokens
func ValidateJobRequirements(fl validator.FieldLevel) bool {
	return commaList(fl.Field().String(), requirementValues)
}

func commaList(s string, allowed map[string]bool) bool {
	if s == "" {
		return false
	}
	for _, part := range strings.Split(s, ",") {
		if !allowed[strings.TrimSpace(part)] {
			return false
		}
	}
	return true
}

// RegisterValidators registers the search-related custom validators
func RegisterValidators(v *validator.Validate) {
	v.RegisterValidation("job_id", ValidateJobID)
	v.RegisterValidation("date_posted", ValidateDatePosted)
	v.RegisterValidation("employment_types", ValidateEmploymentTypes)
	v.RegisterValidation("job_requirements", ValidateJobRequirements)
}

// Validator adapts validator.Validate to echo.Validator
type Validator struct {
	validate *validator.Validate
}

// New returns a Validator with the custom rules registered
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	RegisterValidators(v)
	return &Validator{validate: v}
}

// Validate implements echo.Validator
func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// Describe renders validation failures as one readable line
func Describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), firstSegment(fe.Namespace()))
		if field == "" {
			field = fe.Field()
		}
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", field, fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

// firstSegment is the struct name prefix of a namespace, including its dot
func firstSegment(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[:i+1]
	}
	return ""
}
