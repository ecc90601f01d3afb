package val

import (
	"fmt"
	"regexp"
	"strings"
)

// SpecKind is the DynamoDB attribute type a key value resolves to.
type SpecKind string

const (
	SpecKindS SpecKind = "S" // String
	SpecKindN SpecKind = "N" // Number
	SpecKindB SpecKind = "B" // Binary
)

// FmtSpec is a parsed key template. Templates reference item attributes
// with {field} placeholders:
//   - "PROFILE"         → constant
//   - "{count}"         → single attribute
//   - "USER#{id}"       → composite
//   - "ORDER#{a}#{b}"   → several attributes
//   - "{user.id}"       → nested attribute
type FmtSpec struct {
	raw   string
	parts []specPart
}

type specPart struct {
	literal bool
	value   string
	path    []string
}

// fieldRefRegex matches {name} and {nested.name}, empty braces included so
// they can be rejected.
var fieldRefRegex = regexp.MustCompile(`\{([^}]*)\}`)

// Fmt creates a string ValDef from a template. Panics on invalid templates,
// use ParseFmt for templates read at runtime.
//
//	val.Fmt("USER#{id}")
//	val.Fmt("PROFILE")
func Fmt(pattern string) ValDef {
	s, err := ParseFmt(pattern)
	if err != nil {
		panic(fmt.Sprintf("val.Fmt: %v", err))
	}
	return ValDef{Format: &s}
}

// FromField copies the value of an attribute, dot notation for nesting.
func FromField(fieldPath string) ValDef {
	return ValDef{FromField: fieldPath}
}

func ParseFmt(raw string) (FmtSpec, error) {
	if raw == "" {
		return FmtSpec{}, fmt.Errorf("pattern cannot be empty")
	}
	s := FmtSpec{raw: raw}

	lastEnd := 0
	for _, match := range fieldRefRegex.FindAllStringSubmatchIndex(raw, -1) {
		start, end := match[0], match[1]
		ref := raw[match[2]:match[3]]
		if start > lastEnd {
			s.parts = append(s.parts, specPart{literal: true, value: raw[lastEnd:start]})
		}
		if ref == "" {
			return FmtSpec{}, fmt.Errorf("empty field reference at position %d", start)
		}
		path := strings.Split(ref, ".")
		for i, p := range path {
			if p == "" {
				return FmtSpec{}, fmt.Errorf("invalid field path %q: empty component at position %d", ref, i)
			}
		}
		s.parts = append(s.parts, specPart{value: ref, path: path})
		lastEnd = end
	}
	if lastEnd < len(raw) {
		s.parts = append(s.parts, specPart{literal: true, value: raw[lastEnd:]})
	}
	return s, nil
}

func (s FmtSpec) String() string {
	return s.raw
}

func (s FmtSpec) IsConstant() bool {
	return len(s.parts) == 1 && s.parts[0].literal
}

// FieldRefs returns the referenced attributes in order.
// For "ORDER#{tenant}#{id}" it returns ["tenant", "id"].
func (s FmtSpec) FieldRefs() []string {
	var refs []string
	for _, part := range s.parts {
		if !part.literal {
			refs = append(refs, part.value)
		}
	}
	return refs
}

// Render fills the template from item. Referenced attributes must be
// strings, numbers or binaries.
func (s FmtSpec) Render(item map[string]any) (string, error) {
	var b strings.Builder
	for _, part := range s.parts {
		if part.literal {
			b.WriteString(part.value)
			continue
		}
		v, err := lookup(item, part.path)
		if err != nil {
			return "", err
		}
		str, err := stringify(v)
		if err != nil {
			return "", fmt.Errorf("field %q: %w", part.value, err)
		}
		b.WriteString(str)
	}
	return b.String(), nil
}
