package features

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type sectionJSON struct {
	Title string   `json:"title"`
	Items []string `json:"items"`
}

// MarshalJSON writes the tree as an object whose keys follow category order.
// Empty categories and sections are written as [] rather than null.
func (t Tree) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range t.cats {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		secs := make([]sectionJSON, len(c.Sections))
		for j, s := range c.Sections {
			items := s.Items
			if items == nil {
				items = []string{}
			}
			secs[j] = sectionJSON{Title: s.Title, Items: items}
		}
		val, err := json.Marshal(secs)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON replaces the whole tree, keeping the key order of the
// document. A repeated key overwrites the earlier value in place.
func (t *Tree) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("features: %w", err)
	}
	if tok == nil {
		*t = Tree{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("features: expected object, got %v", tok)
	}

	var out Tree
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("features: %w", err)
		}
		name, _ := keyTok.(string)

		var raw []sectionJSON
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("features: category %q: %w", name, err)
		}
		secs := make([]Section, len(raw))
		for i, s := range raw {
			secs[i] = Section{Title: s.Title, Items: s.Items}
		}

		if i := out.index(name); i >= 0 {
			out.cats[i].Sections = secs
			continue
		}
		out.cats = append(out.cats, Category{Name: name, Sections: secs})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("features: %w", err)
	}
	*t = out
	return nil
}

// Parse decodes a tree posted back by a form. Empty input is an empty tree.
func Parse(s string) (Tree, error) {
	var t Tree
	if len(bytes.TrimSpace([]byte(s))) == 0 {
		return t, nil
	}
	err := json.Unmarshal([]byte(s), &t)
	return t, err
}

// String returns the JSON form, used as a hidden field value.
func (t Tree) String() string {
	b, err := t.MarshalJSON()
	if err != nil {
		return "{}"
	}
	return string(b)
}
