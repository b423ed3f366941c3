package utils

import (
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

const listInputSeparatorsConstant = ",\n"

// ParseListInput splits a comma or newline separated input into trimmed, non-empty entries.
func ParseListInput(rawValue string) []string {
	fields := strings.FieldsFunc(rawValue, func(character rune) bool {
		return strings.ContainsRune(listInputSeparatorsConstant, character)
	})

	entries := make([]string, 0, len(fields))
	for _, field := range fields {
		trimmedField := strings.TrimSpace(field)
		if len(trimmedField) == 0 {
			continue
		}
		entries = append(entries, trimmedField)
	}
	return entries
}

// StringToListHookFunc decodes string configuration values into string slices using ParseListInput.
func StringToListHookFunc() mapstructure.DecodeHookFuncType {
	return func(sourceType reflect.Type, targetType reflect.Type, data any) (any, error) {
		if sourceType.Kind() != reflect.String {
			return data, nil
		}
		if targetType != reflect.TypeOf([]string{}) {
			return data, nil
		}
		return ParseListInput(reflect.ValueOf(data).String()), nil
	}
}
