package parse

import (
	"fmt"

	"github.com/acksell/ddbtoolbox/dynamodb/ddberr"
	"github.com/acksell/ddbtoolbox/dynamodb/schema"
)

func describe(path string) string {
	if path == "" {
		return "Attribute"
	}
	return fmt.Sprintf("Attribute '%s'", path)
}

func missingAttribute(path string) error {
	return ddberr.New(ddberr.ParsingMissingAttribute,
		describe(path)+" is required.",
		ddberr.WithPath(path),
	)
}

// InvalidInput builds the error for a value of the wrong shape.
func InvalidInput(path string, received any, expected string) error {
	return ddberr.New(ddberr.ParsingInvalidAttributeInput,
		fmt.Sprintf("%s should be a %s.", describe(path), expected),
		ddberr.WithPath(path),
		ddberr.WithPayload(map[string]any{"received": received, "expected": expected}),
	)
}

func notInEnum(path string, received any, enum []any) error {
	return ddberr.New(ddberr.ParsingInvalidAttributeInput,
		fmt.Sprintf("%s should be one of: %v.", describe(path), enum),
		ddberr.WithPath(path),
		ddberr.WithPayload(map[string]any{"received": received, "expected": enum}),
	)
}

func unknownAttribute(path string) error {
	return ddberr.New(ddberr.ParsingUnknownAttribute,
		describe(path)+" is not declared in the schema.",
		ddberr.WithPath(path),
	)
}

func savedAsConflict(path, declared string) error {
	return ddberr.New(ddberr.ParsingUnknownAttribute,
		fmt.Sprintf("%s is not declared in the schema and clashes with the storage name of '%s'.", describe(path), declared),
		ddberr.WithPath(path),
		ddberr.WithPayload(map[string]any{"attribute": declared}),
	)
}

func customValidation(path string, value any, err error) error {
	return ddberr.New(ddberr.ParsingCustomValidation,
		fmt.Sprintf("Custom validation for %s failed with message: %v.", describe(path), err),
		ddberr.WithPath(path),
		ddberr.WithPayload(map[string]any{"received": value, "validationResponse": err.Error()}),
		ddberr.WithCause(err),
	)
}

func duplicateSetElement(path string, element any) error {
	return ddberr.New(ddberr.ParsingDuplicateSetElement,
		describe(path)+" contains duplicate elements.",
		ddberr.WithPath(path),
		ddberr.WithPayload(map[string]any{"duplicate": element}),
	)
}

func invalidItem(received any) error {
	return ddberr.New(ddberr.ParsingInvalidItem,
		"Items should be objects.",
		ddberr.WithPayload(map[string]any{"received": received, "expected": "object"}),
	)
}

func transformFailed(path string, value any, err error) error {
	return ddberr.New(ddberr.ParsingInvalidAttributeInput,
		fmt.Sprintf("%s could not be transformed: %v.", describe(path), err),
		ddberr.WithPath(path),
		ddberr.WithPayload(map[string]any{"received": value}),
		ddberr.WithCause(err),
	)
}

func kindName(attr *schema.Frozen) string {
	return string(attr.Kind())
}
