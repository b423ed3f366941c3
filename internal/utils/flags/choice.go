package flags

import (
	"fmt"
	"strings"
)

const (
	choicePlaceholderPrefix    = "<"
	choicePlaceholderSuffix    = ">"
	choiceSeparatorLiteral     = "|"
	choiceUsageEmptyTemplate   = "`%s`"
	choiceUsageFullTemplate    = "`%s` %s"
	unsupportedChoiceTemplate  = "unsupported %s %q: expected one of %s"
	choiceListSeparatorLiteral = ", "
)

// Choice describes a string flag restricted to a fixed set of values.
type Choice struct {
	Name          string
	DefaultChoice string
	Choices       []string
}

// Usage builds a usage string where the default option is capitalized inside a placeholder.
func (choice Choice) Usage(description string) string {
	placeholder := choicePlaceholderPrefix + strings.Join(choice.highlightedChoices(), choiceSeparatorLiteral) + choicePlaceholderSuffix
	if len(strings.TrimSpace(description)) == 0 {
		return fmt.Sprintf(choiceUsageEmptyTemplate, placeholder)
	}
	return fmt.Sprintf(choiceUsageFullTemplate, placeholder, description)
}

// Normalize lowercases the value, substitutes the default for blanks, and rejects unknown values.
func (choice Choice) Normalize(value string) (string, error) {
	normalizedValue := strings.ToLower(strings.TrimSpace(value))
	if len(normalizedValue) == 0 {
		return strings.ToLower(strings.TrimSpace(choice.DefaultChoice)), nil
	}
	for _, candidate := range choice.Choices {
		if strings.ToLower(strings.TrimSpace(candidate)) == normalizedValue {
			return normalizedValue, nil
		}
	}
	return "", fmt.Errorf(unsupportedChoiceTemplate, choice.Name, value, strings.Join(choice.Choices, choiceListSeparatorLiteral))
}

func (choice Choice) highlightedChoices() []string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(choice.DefaultChoice))
	highlighted := make([]string, 0, len(choice.Choices))
	seen := make(map[string]struct{}, len(choice.Choices))

	for _, candidate := range choice.Choices {
		trimmedChoice := strings.TrimSpace(candidate)
		if len(trimmedChoice) == 0 {
			continue
		}

		normalizedChoice := strings.ToLower(trimmedChoice)
		if _, exists := seen[normalizedChoice]; exists {
			continue
		}

		displayValue := trimmedChoice
		if normalizedChoice == normalizedDefault {
			displayValue = strings.ToUpper(trimmedChoice)
		}

		highlighted = append(highlighted, displayValue)
		seen[normalizedChoice] = struct{}{}
	}

	return highlighted
}
