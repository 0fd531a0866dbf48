package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ariel-frischer/clog/internal/changelog"
	clerrors "github.com/ariel-frischer/clog/internal/errors"
	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ValidationError represents a configuration validation error with context
type ValidationError struct {
	FilePath string
	Line     int
	Column   int
	Message  string
	Field    string
}

func (e *ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.FilePath, e.Line, e.Column, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: field '%s': %s", e.FilePath, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
}

// ValidateSyntax checks that data is well formed for the given format.
// Returns nil if valid, or a ValidationError with line/column information if invalid.
func ValidateSyntax(data []byte, format fileFormat, filePath string) error {
	// Empty data is valid - will use defaults
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	switch format {
	case formatYAML:
		return validateYAMLSyntax(data, filePath)
	case formatJSON:
		return validateJSONSyntax(data, filePath)
	default:
		return validateTOMLSyntax(data, filePath)
	}
}

func validateTOMLSyntax(data []byte, filePath string) error {
	var v map[string]interface{}
	err := toml.Unmarshal(data, &v)
	if err == nil {
		return nil
	}

	var decodeErr *toml.DecodeError
	if errors.As(err, &decodeErr) {
		line, column := decodeErr.Position()
		return &ValidationError{
			FilePath: filePath,
			Line:     line,
			Column:   column,
			Message:  strings.TrimPrefix(decodeErr.Error(), "toml: "),
		}
	}
	return &ValidationError{FilePath: filePath, Message: err.Error()}
}

func validateYAMLSyntax(data []byte, filePath string) error {
	var node yaml.Node
	err := yaml.Unmarshal(data, &node)
	if err == nil {
		return nil
	}

	var typeError *yaml.TypeError
	if errors.As(err, &typeError) {
		// yaml.TypeError contains multiple error strings
		return &ValidationError{
			FilePath: filePath,
			Message:  strings.Join(typeError.Errors, "; "),
		}
	}

	// yaml.v3 errors typically include "line X" information
	line, column := extractLineColumn(err.Error())
	return &ValidationError{
		FilePath: filePath,
		Line:     line,
		Column:   column,
		Message:  cleanYAMLError(err.Error()),
	}
}

func validateJSONSyntax(data []byte, filePath string) error {
	var v interface{}
	err := json.Unmarshal(data, &v)
	if err == nil {
		return nil
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, column := offsetToLineColumn(data, syntaxErr.Offset)
		return &ValidationError{
			FilePath: filePath,
			Line:     line,
			Column:   column,
			Message:  syntaxErr.Error(),
		}
	}
	return &ValidationError{FilePath: filePath, Message: err.Error()}
}

// offsetToLineColumn converts a byte offset into 1-based line and column.
func offsetToLineColumn(data []byte, offset int64) (line, column int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	prefix := data[:offset]
	line = bytes.Count(prefix, []byte("\n")) + 1
	column = int(offset) - bytes.LastIndexByte(prefix, '\n')
	return line, column
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("linkstyle", func(fl validator.FieldLevel) bool {
		_, err := changelog.ParseLinkStyle(fl.Field().String())
		return err == nil
	})
	v.RegisterValidation("outputformat", func(fl validator.FieldLevel) bool {
		_, err := changelog.ParseFormat(fl.Field().String())
		return err == nil
	})
	return v
}

// ValidateConfigValues validates configuration values against expected types and constraints.
// An unknown link style is a LinkStyleErr; any other failure is a ConfigFormatErr.
func ValidateConfigValues(cfg *Configuration) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return clerrors.ConfigShape(cfg.Path, err.Error())
	}

	fieldErr := validationErrors[0]
	if fieldErr.Tag() == "linkstyle" {
		return clerrors.UnknownLinkStyle(cfg.LinkStyle)
	}
	verr := &ValidationError{
		FilePath: cfg.Path,
		Field:    toKebabCase(fieldErr.Field()),
		Message:  formatValidationError(fieldErr),
	}
	return clerrors.ConfigShape(cfg.Path, verr.Error())
}

// extractLineColumn attempts to extract line and column numbers from a YAML error message.
// Returns 0, 0 if unable to extract.
func extractLineColumn(errMsg string) (line, column int) {
	// yaml.v3 errors look like: "yaml: line 5: could not find expected ':'"
	var l, c int
	if n, _ := fmt.Sscanf(errMsg, "yaml: line %d: column %d:", &l, &c); n == 2 {
		return l, c
	}
	if n, _ := fmt.Sscanf(errMsg, "yaml: line %d:", &l); n == 1 {
		return l, 1
	}
	return 0, 0
}

// cleanYAMLError removes the "yaml: line X:" prefix from error messages for cleaner output.
func cleanYAMLError(errMsg string) string {
	if idx := strings.LastIndex(errMsg, ": "); idx > 0 && strings.HasPrefix(errMsg, "yaml:") {
		return errMsg[idx+2:]
	}
	return errMsg
}

// formatValidationError formats a validation error for a specific field.
func formatValidationError(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "outputformat":
		return fmt.Sprintf("unknown output format %q (expected markdown or json)", fieldErr.Value())
	case "excluded_with":
		return "cannot be combined with outfile or infile"
	default:
		return fmt.Sprintf("failed validation: %s", fieldErr.Tag())
	}
}

// toKebabCase converts a CamelCase field name to its kebab-case config key.
func toKebabCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune('-')
		}
		result.WriteRune(r)
	}
	return strings.ToLower(result.String())
}
