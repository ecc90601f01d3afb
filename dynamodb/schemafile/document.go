// Package schemafile reads tables and entities from YAML documents.
//
//	tables:
//	  - name: app
//	    partitionKey: {name: pk, kind: S}
//	    sortKey: {name: sk, kind: S}
//	    entities:
//	      - name: user
//	        partitionKeyPattern: "USER#{id}"
//	        sortKeyPattern: "PROFILE"
//	        attributes:
//	          - {name: id, type: string, required: always}
//	          - {name: email, type: string}
package schemafile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Document is the root of a schema file.
type Document struct {
	Tables []Table `yaml:"tables" json:"tables"`
}

// Table describes a DynamoDB table structure with its entities.
type Table struct {
	Name          string  `yaml:"name" json:"name"`
	PartitionKey  KeyDef  `yaml:"partitionKey" json:"partitionKey"`
	SortKey       *KeyDef `yaml:"sortKey,omitempty" json:"sortKey,omitempty"`
	TimeToLiveKey string  `yaml:"timeToLiveKey,omitempty" json:"timeToLiveKey,omitempty"`
	// EntityAttribute is the storage name of the entity attribute, "_et" if empty.
	EntityAttribute string   `yaml:"entityAttribute,omitempty" json:"entityAttribute,omitempty"`
	GSIs            []GSI    `yaml:"gsis,omitempty" json:"gsis,omitempty"`
	Entities        []Entity `yaml:"entities,omitempty" json:"entities,omitempty"`
}

// KeyDef describes a key attribute definition.
type KeyDef struct {
	Name string `yaml:"name" json:"name"`
	Kind string `yaml:"kind" json:"kind"` // "S", "N", or "B"
}

// GSI describes a Global Secondary Index.
type GSI struct {
	Name         string  `yaml:"name" json:"name"`
	PartitionKey KeyDef  `yaml:"partitionKey" json:"partitionKey"`
	SortKey      *KeyDef `yaml:"sortKey,omitempty" json:"sortKey,omitempty"`
}

// Entity describes an entity type stored in a table. Without key patterns
// the key attributes of the entity must be saved as the table keys.
type Entity struct {
	Name                string       `yaml:"name" json:"name"`
	PartitionKeyPattern string       `yaml:"partitionKeyPattern,omitempty" json:"partitionKeyPattern,omitempty"`
	SortKeyPattern      string       `yaml:"sortKeyPattern,omitempty" json:"sortKeyPattern,omitempty"`
	GSIMappings         []GSIMapping `yaml:"gsiMappings,omitempty" json:"gsiMappings,omitempty"`
	Attributes          []Attribute  `yaml:"attributes" json:"attributes"`
	// Timestamps defaults to true.
	Timestamps *bool `yaml:"timestamps,omitempty" json:"timestamps,omitempty"`
	// EntityAttribute defaults to true.
	EntityAttribute *bool `yaml:"entityAttribute,omitempty" json:"entityAttribute,omitempty"`
}

// GSIMapping describes how an entity maps to a GSI.
type GSIMapping struct {
	GSI              string `yaml:"gsi" json:"gsi"`
	PartitionPattern string `yaml:"partitionPattern" json:"partitionPattern"`
	SortPattern      string `yaml:"sortPattern,omitempty" json:"sortPattern,omitempty"`
}

// Attribute describes one schema attribute. Elements, Keys, Attributes,
// Candidates and Value apply to the container kinds that use them.
type Attribute struct {
	Name     string `yaml:"name,omitempty" json:"name,omitempty"`
	Type     string `yaml:"type" json:"type"`
	Required string `yaml:"required,omitempty" json:"required,omitempty"` // atLeastOnce, always or never
	Optional bool   `yaml:"optional,omitempty" json:"optional,omitempty"`
	Hidden   bool   `yaml:"hidden,omitempty" json:"hidden,omitempty"`
	Key      bool   `yaml:"key,omitempty" json:"key,omitempty"`
	SavedAs  string `yaml:"savedAs,omitempty" json:"savedAs,omitempty"`
	Enum     []any  `yaml:"enum,omitempty" json:"enum,omitempty"`
	Default  any    `yaml:"default,omitempty" json:"default,omitempty"`
	// Generate names a default computed on every parse: "uuid" or "now".
	Generate string `yaml:"generate,omitempty" json:"generate,omitempty"`
	Prefix   string `yaml:"prefix,omitempty" json:"prefix,omitempty"`
	Suffix   string `yaml:"suffix,omitempty" json:"suffix,omitempty"`
	Open     bool   `yaml:"open,omitempty" json:"open,omitempty"`

	Elements   *Attribute  `yaml:"elements,omitempty" json:"elements,omitempty"`
	Keys       *Attribute  `yaml:"keys,omitempty" json:"keys,omitempty"`
	Attributes []Attribute `yaml:"attributes,omitempty" json:"attributes,omitempty"`
	Candidates []Attribute `yaml:"candidates,omitempty" json:"candidates,omitempty"`
	Value      any         `yaml:"value,omitempty" json:"value,omitempty"`
}

// Parse decodes a schema document. Unknown fields are rejected.
func Parse(data []byte) (*Document, error) {
	return Decode(bytes.NewReader(data))
}

func Decode(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &doc, nil
		}
		return nil, fmt.Errorf("failed to decode schema document: %w", err)
	}
	return &doc, nil
}

// Load reads a schema document from a file.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open schema file: %w", err)
	}
	defer f.Close()
	doc, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Marshal encodes the document as YAML.
func (d *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("failed to encode schema document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
