package flags

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/pflag"
)

const (
	toggleTrueCanonicalValue               = "true"
	toggleFalseCanonicalValue              = "false"
	toggleParseErrorTemplate               = "invalid toggle value %q"
	toggleArgumentTruePlaceholderConstant  = "<YES|no>"
	toggleArgumentFalsePlaceholderConstant = "<yes|NO>"
	toggleUsageEmptyTemplate               = "`%s`"
	toggleUsageFullTemplate                = "`%s` %s"
	toggleTypeNameConstant                 = "bool"
	longFlagPrefixConstant                 = "--"
	shortFlagPrefixConstant                = "-"
	flagValueSeparatorConstant             = "="
)

var toggleLiterals = map[string]bool{
	"true":  true,
	"yes":   true,
	"on":    true,
	"1":     true,
	"t":     true,
	"y":     true,
	"false": false,
	"no":    false,
	"off":   false,
	"0":     false,
	"f":     false,
	"n":     false,
}

// ToggleSet registers boolean flags that accept yes/no style values and rewrites
// "--flag value" arguments into "--flag=value" so pflag can parse them.
type ToggleSet struct {
	mutex      sync.RWMutex
	names      map[string]struct{}
	shorthands map[string]struct{}
}

// NewToggleSet creates an empty toggle set.
func NewToggleSet() *ToggleSet {
	return &ToggleSet{names: map[string]struct{}{}, shorthands: map[string]struct{}{}}
}

// Add registers a toggle flag on the flag set and records it for argument normalization.
func (toggleSet *ToggleSet) Add(flagSet *pflag.FlagSet, target *bool, name string, shorthand string, defaultValue bool, usage string) {
	if flagSet == nil || len(name) == 0 {
		return
	}

	value := &toggleValue{target: target}
	value.assign(defaultValue)
	flag := flagSet.VarPF(value, name, shorthand, formatToggleUsage(usage, defaultValue))
	flag.NoOptDefVal = toggleTrueCanonicalValue

	toggleSet.mutex.Lock()
	defer toggleSet.mutex.Unlock()
	toggleSet.names[name] = struct{}{}
	if len(shorthand) > 0 {
		toggleSet.shorthands[shorthand] = struct{}{}
	}
}

// NormalizeArguments joins registered toggle flags with a following value argument.
// Everything after "--" is passed through untouched.
func (toggleSet *ToggleSet) NormalizeArguments(arguments []string) []string {
	if len(arguments) == 0 {
		return nil
	}

	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		current := arguments[index]
		if current == longFlagPrefixConstant {
			normalized = append(normalized, arguments[index:]...)
			break
		}
		if toggleSet.expectsValue(current) && index+1 < len(arguments) && !strings.HasPrefix(arguments[index+1], shortFlagPrefixConstant) {
			if _, isLiteral := toggleLiterals[strings.ToLower(strings.TrimSpace(arguments[index+1]))]; isLiteral {
				normalized = append(normalized, current+flagValueSeparatorConstant+arguments[index+1])
				index++
				continue
			}
		}
		normalized = append(normalized, current)
	}
	return normalized
}

func (toggleSet *ToggleSet) expectsValue(argument string) bool {
	if strings.Contains(argument, flagValueSeparatorConstant) {
		return false
	}

	toggleSet.mutex.RLock()
	defer toggleSet.mutex.RUnlock()

	if strings.HasPrefix(argument, longFlagPrefixConstant) {
		_, registered := toggleSet.names[strings.TrimPrefix(argument, longFlagPrefixConstant)]
		return registered
	}
	if strings.HasPrefix(argument, shortFlagPrefixConstant) {
		shorthand := strings.TrimPrefix(argument, shortFlagPrefixConstant)
		if len(shorthand) != 1 {
			return false
		}
		_, registered := toggleSet.shorthands[shorthand]
		return registered
	}
	return false
}

func formatToggleUsage(description string, defaultValue bool) string {
	placeholder := toggleArgumentFalsePlaceholderConstant
	if defaultValue {
		placeholder = toggleArgumentTruePlaceholderConstant
	}
	trimmed := strings.TrimSpace(description)
	if len(trimmed) == 0 {
		return fmt.Sprintf(toggleUsageEmptyTemplate, placeholder)
	}
	return fmt.Sprintf(toggleUsageFullTemplate, placeholder, trimmed)
}

// ParseToggle converts a yes/no style literal into a boolean. An empty value means true.
func ParseToggle(rawValue string) (bool, error) {
	normalizedValue := strings.ToLower(strings.TrimSpace(rawValue))
	if len(normalizedValue) == 0 {
		return true, nil
	}
	parsedValue, known := toggleLiterals[normalizedValue]
	if !known {
		return false, fmt.Errorf(toggleParseErrorTemplate, rawValue)
	}
	return parsedValue, nil
}

type toggleValue struct {
	current bool
	target  *bool
}

func (value *toggleValue) assign(parsedValue bool) {
	value.current = parsedValue
	if value.target != nil {
		*value.target = parsedValue
	}
}

func (value *toggleValue) Set(rawValue string) error {
	parsedValue, parseError := ParseToggle(rawValue)
	if parseError != nil {
		return parseError
	}
	value.assign(parsedValue)
	return nil
}

func (value *toggleValue) String() string {
	if value == nil || !value.current {
		return toggleFalseCanonicalValue
	}
	return toggleTrueCanonicalValue
}

func (value *toggleValue) Type() string {
	return toggleTypeNameConstant
}
