package mapping

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"cartridge-engine/internal/common"
	"cartridge-engine/internal/diagnostic"
)

// Validate runs the plan's validations against input and returns the first
// failure as a FUNCTIONAL error with step VALIDATION.
func (p *Plan) Validate(input any) error {
	for i := range p.validations {
		cv := &p.validations[i]

		if !cv.guard(input) {
			continue
		}

		err := cv.walk(input, 0, "")
		if err != nil {
			return err
		}
	}

	return nil
}

// guard reports whether the rule applies to input.
func (cv *compiledValidation) guard(input any) bool {
	r := cv.rule
	if !r.HasGuard() {
		return true
	}

	if r.WhenExists == nil && r.WhenEquals == nil {
		return true
	}

	v := cv.when.Eval(input)

	// Either condition is enough.
	if r.WhenExists != nil && *r.WhenExists != common.IsMissing(v) {
		return true
	}

	return r.WhenEquals != nil && v != nil && common.Stringify(v) == *r.WhenEquals
}

// walk evaluates level depth against node. Intermediate levels address lists
// whose elements are visited in order; the last level addresses the value.
func (cv *compiledValidation) walk(node any, depth int, prefix string) error {
	lvl := cv.levels[depth]

	field := lvl.Raw
	if depth > 0 {
		field = prefix + strings.TrimPrefix(lvl.Raw, "$")
	}

	v := lvl.Eval(node)

	if depth == len(cv.levels)-1 {
		return cv.check(v, field)
	}

	list, _ := v.([]any)
	if len(list) == 0 {
		if cv.rule.Required {
			return fail(diagnostic.CodeValidationRequired, field,
				"Validation failed: required list missing or empty at %s", field)
		}

		return nil
	}

	for i, elem := range list {
		err := cv.walk(elem, depth+1, field+"["+strconv.Itoa(i)+"]")
		if err != nil {
			return err
		}
	}

	return nil
}

// check applies the rule's checks to a single value.
func (cv *compiledValidation) check(v any, field string) error {
	r := cv.rule

	if r.Required && common.IsMissing(v) {
		return fail(diagnostic.CodeValidationRequired, field,
			"Validation failed: required field missing at %s", field)
	}

	if v == nil {
		return nil
	}

	s := common.Stringify(v)

	if r.Equals != nil && s != *r.Equals {
		return fail(diagnostic.CodeValidationEquals, field,
			"Validation failed: %s must equal '%s' but was '%s'", field, *r.Equals, s)
	}

	if r.MinLength != nil || r.MaxLength != nil {
		n := utf8.RuneCountInString(s)

		if r.MinLength != nil && n < *r.MinLength {
			return fail(diagnostic.CodeValidationMinLength, field,
				"Validation failed: %s length must be >= %d", field, *r.MinLength)
		}

		if r.MaxLength != nil && n > *r.MaxLength {
			return fail(diagnostic.CodeValidationMaxLength, field,
				"Validation failed: %s length must be <= %d", field, *r.MaxLength)
		}
	}

	if cv.pattern != nil && !cv.pattern.MatchString(s) {
		return fail(diagnostic.CodeValidationPattern, field,
			"Validation failed: %s must match pattern %s", field, r.Pattern)
	}

	if r.Min != nil || r.Max != nil {
		n, ok := common.ToNumber(v)
		if !ok {
			return fail(diagnostic.CodeValidationNumber, field,
				"Validation failed: %s must be a number", field)
		}

		if r.Min != nil && n < *r.Min {
			return fail(diagnostic.CodeValidationMin, field,
				"Validation failed: %s must be >= %s", field, common.Stringify(*r.Min))
		}

		if r.Max != nil && n > *r.Max {
			return fail(diagnostic.CodeValidationMax, field,
				"Validation failed: %s must be <= %s", field, common.Stringify(*r.Max))
		}
	}

	return nil
}

func fail(code diagnostic.Code, field, format string, args ...any) *diagnostic.Error {
	return diagnostic.Functional(code, diagnostic.StepValidation, field, format, args...)
}
