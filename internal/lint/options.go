package lint

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	optionStringTypeErrorTemplateConstant  = "option %s must be a string"
	optionIntegerTypeErrorTemplateConstant = "option %s must be an integer"
	optionBooleanTypeErrorTemplateConstant = "option %s must be a boolean"
)

// Options carries declarative per-linter settings decoded from configuration.
type Options map[string]any

func (options Options) lookup(key string) (any, bool) {
	if len(options) == 0 {
		return nil, false
	}
	if value, exists := options[key]; exists {
		return value, true
	}
	for candidateKey, value := range options {
		if strings.EqualFold(strings.TrimSpace(candidateKey), key) {
			return value, true
		}
	}
	return nil, false
}

// String reads a string option, reporting whether it was present.
func (options Options) String(key string) (string, bool, error) {
	rawValue, exists := options.lookup(key)
	if !exists || rawValue == nil {
		return "", false, nil
	}
	switch typedValue := rawValue.(type) {
	case string:
		return strings.TrimSpace(typedValue), true, nil
	case fmt.Stringer:
		return strings.TrimSpace(typedValue.String()), true, nil
	default:
		return "", true, fmt.Errorf(optionStringTypeErrorTemplateConstant, key)
	}
}

// Int reads an integer option, accepting numeric strings and integral floats.
func (options Options) Int(key string) (int, bool, error) {
	rawValue, exists := options.lookup(key)
	if !exists || rawValue == nil {
		return 0, false, nil
	}
	switch typedValue := rawValue.(type) {
	case int:
		return typedValue, true, nil
	case int64:
		return int(typedValue), true, nil
	case int32:
		return int(typedValue), true, nil
	case uint:
		return int(typedValue), true, nil
	case uint64:
		return int(typedValue), true, nil
	case float64:
		if typedValue != math.Trunc(typedValue) {
			return 0, true, fmt.Errorf(optionIntegerTypeErrorTemplateConstant, key)
		}
		return int(typedValue), true, nil
	case string:
		parsedValue, parseError := strconv.Atoi(strings.TrimSpace(typedValue))
		if parseError != nil {
			return 0, true, fmt.Errorf(optionIntegerTypeErrorTemplateConstant, key)
		}
		return parsedValue, true, nil
	default:
		return 0, true, fmt.Errorf(optionIntegerTypeErrorTemplateConstant, key)
	}
}

// Bool reads a boolean option, accepting boolean strings.
func (options Options) Bool(key string) (bool, bool, error) {
	rawValue, exists := options.lookup(key)
	if !exists || rawValue == nil {
		return false, false, nil
	}
	switch typedValue := rawValue.(type) {
	case bool:
		return typedValue, true, nil
	case string:
		parsedValue, parseError := strconv.ParseBool(strings.TrimSpace(typedValue))
		if parseError != nil {
			return false, true, fmt.Errorf(optionBooleanTypeErrorTemplateConstant, key)
		}
		return parsedValue, true, nil
	default:
		return false, true, fmt.Errorf(optionBooleanTypeErrorTemplateConstant, key)
	}
}
