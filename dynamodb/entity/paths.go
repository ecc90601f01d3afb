package entity

import (
	"fmt"
	"strings"

	"github.com/acksell/ddbtoolbox/dynamodb/schema"
)

// Attribute resolves an attribute path such as "address.city" or
// "history[0]" to its attribute and the path it is stored under.
func (e *Entity) Attribute(path string) (*schema.Frozen, string, error) {
	if path == "" {
		return nil, "", fmt.Errorf("empty attribute path")
	}
	attr := e.schema.Root()
	var stored []string
	for _, segment := range strings.Split(path, ".") {
		name, indexes, _ := strings.Cut(segment, "[")
		if indexes != "" {
			indexes = "[" + indexes
		}
		switch attr.Kind() {
		case schema.KindMap:
			child, ok := attr.Schema().Attribute(name)
			if !ok {
				return nil, "", fmt.Errorf("attribute %q is not declared in entity %q", path, e.name)
			}
			attr = child
			stored = append(stored, child.StorageName())
		case schema.KindRecord:
			attr = attr.Elements()
			stored = append(stored, name)
		default:
			return nil, "", fmt.Errorf("attribute %q can not be resolved below a %s attribute", path, attr.Kind())
		}
		for rest := indexes; rest != ""; {
			end := strings.Index(rest, "]")
			if !strings.HasPrefix(rest, "[") || end < 0 {
				return nil, "", fmt.Errorf("invalid attribute path %q", path)
			}
			if attr.Kind() != schema.KindList {
				return nil, "", fmt.Errorf("attribute %q indexes a %s attribute", path, attr.Kind())
			}
			attr = attr.Elements()
			stored[len(stored)-1] += rest[:end+1]
			rest = rest[end+1:]
		}
	}
	return attr, strings.Join(stored, "."), nil
}
