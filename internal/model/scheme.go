package model

import (
	"bytes"
	"encoding/json"
)

// DefaultKeyColumn is the catalog column holding the unique scheme name
const DefaultKeyColumn = "Financial_Scheme"

// Attribute is one non-key column of a scheme row
type Attribute struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// SchemeRecord is one row of the scheme catalog.
// Attributes keep the column order of the source file.
type SchemeRecord struct {
	Name       string
	KeyColumn  string
	Attributes []Attribute
}

// Get returns the value of the named attribute
func (r SchemeRecord) Get(key string) (string, bool) {
	for _, attr := range r.Attributes {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}

// MarshalJSON renders the record as a single object keyed by column name.
// The key column comes first, then the attributes in source order.
func (r SchemeRecord) MarshalJSON() ([]byte, error) {
	keyColumn := r.KeyColumn
	if keyColumn == "" {
		keyColumn = DefaultKeyColumn
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	if err := writeMember(&buf, keyColumn, r.Name); err != nil {
		return nil, err
	}
	for _, attr := range r.Attributes {
		buf.WriteByte(',')
		if err := writeMember(&buf, attr.Key, attr.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeMember(buf *bytes.Buffer, key string, value any) error {
	k, err := marshalLiteral(key)
	if err != nil {
		return err
	}
	v, err := marshalLiteral(value)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}

// DetailsJSON serializes resolved scheme details for embedding in a prompt.
// An empty list renders as [] so the model sees an explicit "no schemes" value.
func DetailsJSON(details []SchemeRecord) (string, error) {
	if len(details) == 0 {
		return "[]", nil
	}
	data, err := marshalLiteral(details)
	if err != nil {
		return "", err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		return "", err
	}
	return out.String(), nil
}

// marshalLiteral encodes v without escaping &, < and >. Prompt text must
// carry catalog values exactly as written.
func marshalLiteral(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
