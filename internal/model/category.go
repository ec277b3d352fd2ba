package model

import "bytes"

// Category groups scheme names under one label
type Category struct {
	Name    string   `json:"category" yaml:"category"`
	Schemes []string `json:"schemes" yaml:"schemes"`
}

// CategoryIndex maps categories to their scheme names, in the order they were configured
type CategoryIndex []Category

// Find returns the category with the given name
func (c CategoryIndex) Find(name string) (Category, bool) {
	for _, cat := range c {
		if cat.Name == name {
			return cat, true
		}
	}
	return Category{}, false
}

// Names returns the category names in configured order
func (c CategoryIndex) Names() []string {
	names := make([]string, 0, len(c))
	for _, cat := range c {
		names = append(names, cat.Name)
	}
	return names
}

// Clone returns a deep copy so callers cannot mutate catalog state
func (c CategoryIndex) Clone() CategoryIndex {
	out := make(CategoryIndex, len(c))
	for i, cat := range c {
		out[i] = Category{
			Name:    cat.Name,
			Schemes: append([]string(nil), cat.Schemes...),
		}
	}
	return out
}

// PromptJSON renders the index as a JSON object {"category": ["scheme", ...]}.
// This is the only serialization of the index that is shown to the model.
func (c CategoryIndex) PromptJSON() (string, error) {
	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, cat := range c {
		name, err := marshalLiteral(cat.Name)
		if err != nil {
			return "", err
		}
		schemes := cat.Schemes
		if schemes == nil {
			schemes = []string{}
		}
		list, err := marshalLiteral(schemes)
		if err != nil {
			return "", err
		}
		buf.WriteString("  ")
		buf.Write(name)
		buf.WriteString(": ")
		buf.Write(list)
		if i < len(c)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}")
	return buf.String(), nil
}
