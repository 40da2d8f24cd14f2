package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	tagNameValidate   = "validate"
	tagValueRequired  = "required"
	tagValueMax       = "max"
	tagValueRegexp    = "regexp"
	tagValueDate      = "date"
	validatorsDivider = "|"
)

var (
	ErrIncorrectTagValue      = errors.New("incorrect tag value")
	ErrIncorrectTag           = errors.New("incorrect tag")
	ErrIncorrectStruct        = errors.New("incorrect struct")
	ErrValidateRequired       = errors.New("value is required")
	ErrValidateTooLong        = errors.New("value is too long")
	ErrValidateNotMatchRegexp = errors.New("does not match regexp")
	ErrValidateIncorrectDate  = errors.New("incorrect date")
)

type ValidationError struct {
	Field string
	Err   error
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	sort.Slice(v, func(i, j int) bool {
		if v[i].Field == v[j].Field {
			return v[i].Err.Error() < v[j].Err.Error()
		}
		return v[i].Field < v[j].Field
	})
	b := strings.Builder{}
	for _, validationError := range v {
		b.WriteString(fmt.Sprintf("{name: %s, error: %s}", validationError.Field, validationError.Err.Error()))
	}
	return b.String()
}

// Is reports whether any of the validation errors matches target.
func (v ValidationErrors) Is(target error) bool {
	for _, validationError := range v {
		if errors.Is(validationError.Err, target) {
			return true
		}
	}
	return false
}

type rule struct {
	name  string
	value string
	re    *regexp.Regexp
	max   int
}

// Validate checks string fields of struct v (or pointer to it) against their "validate" tags.
// Rules are divided by "|": required, max:<length>, regexp:<expression>, date:<layout>.
// The regexp rule must be the last one: the rest of the tag, "|" included, is its expression,
// and the whole value has to match it.
// Violations are returned as ValidationErrors, malformed tags as other errors.
func Validate(v interface{}) error {
	if v == nil {
		return ErrIncorrectStruct
	}
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Struct {
		return ErrIncorrectStruct
	}
	t := rv.Type()

	var validationErrors ValidationErrors
	for i := 0; i < rv.NumField(); i++ {
		rules, err := parseValidateTag(t.Field(i).Tag)
		if err != nil {
			return fmt.Errorf("field %s: %w", t.Field(i).Name, err)
		}
		if len(rules) == 0 {
			continue
		}

		value, ok := stringValue(rv.Field(i))
		if !ok {
			return fmt.Errorf("field %s is not a string: %w", t.Field(i).Name, ErrIncorrectStruct)
		}
		for _, r := range rules {
			if err := validateValue(r, value); err != nil {
				validationErrors = append(validationErrors, ValidationError{Field: t.Field(i).Name, Err: err})
			}
		}
	}

	if len(validationErrors) == 0 {
		return nil
	}
	return validationErrors
}

// Nil string pointers are validated as empty strings.
func stringValue(field reflect.Value) (string, bool) {
	if field.Kind() == reflect.Ptr {
		if field.Type().Elem().Kind() != reflect.String {
			return "", false
		}
		if field.IsNil() {
			return "", true
		}
		field = field.Elem()
	}
	if field.Kind() != reflect.String {
		return "", false
	}
	return field.String(), true
}

func validateValue(r rule, value string) error {
	switch r.name {
	case tagValueRequired:
		if strings.TrimSpace(value) == "" {
			return ErrValidateRequired
		}
	case tagValueMax:
		if utf8.RuneCountInString(value) > r.max {
			return ErrValidateTooLong
		}
	case tagValueRegexp:
		if value == "" {
			return nil
		}
		if !r.re.MatchString(value) {
			return ErrValidateNotMatchRegexp
		}
	case tagValueDate:
		if value == "" {
			return nil
		}
		if _, err := time.Parse(r.value, value); err != nil {
			return ErrValidateIncorrectDate
		}
	}
	return nil
}

func parseValidateTag(tag reflect.StructTag) ([]rule, error) {
	val := tag.Get(tagNameValidate)
	if val == "" {
		return nil, nil
	}

	validators := strings.Split(val, validatorsDivider)
	rules := make([]rule, 0, len(validators))
	for i, validator := range validators {
		parts := strings.SplitN(validator, ":", 2)
		r := rule{name: parts[0]}
		if len(parts) == 2 {
			r.value = parts[1]
		}

		switch r.name {
		case tagValueRequired:
			if len(parts) != 1 {
				return nil, ErrIncorrectTag
			}
		case tagValueMax:
			max, err := strconv.Atoi(r.value)
			if err != nil || max < 0 {
				return nil, ErrIncorrectTagValue
			}
			r.max = max
		case tagValueRegexp:
			r.value = strings.Join(append([]string{r.value}, validators[i+1:]...), validatorsDivider)
			re, err := regexp.Compile("^(?:" + r.value + ")$")
			if err != nil || r.value == "" {
				return nil, ErrIncorrectTagValue
			}
			r.re = re
			return append(rules, r), nil
		case tagValueDate:
			if r.value == "" {
				return nil, ErrIncorrectTagValue
			}
		default:
			return nil, ErrIncorrectTag
		}
		rules = append(rules, r)
	}
	return rules, nil
}
