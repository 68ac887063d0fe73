// Package features holds the category → section → item tree that describes
// what a product offers. A Tree is a value: every edit returns a new Tree and
// leaves the receiver untouched, so a form can keep the previous state around
// and tests can compare before and after.
package features

import (
	"errors"
	"strings"
)

var (
	ErrBlank             = errors.New("features: value is blank")
	ErrCategoryExists    = errors.New("features: category already exists")
	ErrUnchanged         = errors.New("features: name is unchanged")
	ErrStale             = errors.New("features: category or index no longer exists")
	ErrNeedsConfirmation = errors.New("features: operation needs confirmation")
	ErrUnknownOp         = errors.New("features: unknown operation")
)

type Section struct {
	Title string
	Items []string
}

type Category struct {
	Name     string
	Sections []Section
}

// Tree keeps categories in insertion order. The zero value is an empty tree.
type Tree struct {
	cats []Category
}

// New builds a tree from categories in the given order. Names are trimmed;
// blank names and repeated names after the first are dropped.
func New(categories ...Category) Tree {
	var t Tree
	for _, c := range categories {
		name := strings.TrimSpace(c.Name)
		if name == "" || t.index(name) >= 0 {
			continue
		}
		t.cats = append(t.cats, Category{Name: name, Sections: cloneSections(c.Sections)})
	}
	return t
}

func (t Tree) Len() int { return len(t.cats) }

func (t Tree) IsEmpty() bool { return len(t.cats) == 0 }

func (t Tree) Has(name string) bool { return t.index(name) >= 0 }

// Names returns the category names in order.
func (t Tree) Names() []string {
	names := make([]string, len(t.cats))
	for i, c := range t.cats {
		names[i] = c.Name
	}
	return names
}

// Categories returns a deep copy of the categories, safe for callers to modify.
func (t Tree) Categories() []Category {
	out := make([]Category, len(t.cats))
	for i, c := range t.cats {
		out[i] = Category{Name: c.Name, Sections: cloneSections(c.Sections)}
	}
	return out
}

func (t Tree) Sections(category string) ([]Section, bool) {
	i := t.index(category)
	if i < 0 {
		return nil, false
	}
	return cloneSections(t.cats[i].Sections), true
}

// Equal reports structural equality, including order.
func (t Tree) Equal(o Tree) bool {
	if len(t.cats) != len(o.cats) {
		return false
	}
	for i := range t.cats {
		a, b := t.cats[i], o.cats[i]
		if a.Name != b.Name || len(a.Sections) != len(b.Sections) {
			return false
		}
		for j := range a.Sections {
			sa, sb := a.Sections[j], b.Sections[j]
			if sa.Title != sb.Title || len(sa.Items) != len(sb.Items) {
				return false
			}
			for k := range sa.Items {
				if sa.Items[k] != sb.Items[k] {
					return false
				}
			}
		}
	}
	return true
}

func (t Tree) AddCategory(name string) (Tree, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return t, ErrBlank
	}
	if t.Has(name) {
		return t, ErrCategoryExists
	}
	cats := make([]Category, len(t.cats), len(t.cats)+1)
	copy(cats, t.cats)
	return Tree{cats: append(cats, Category{Name: name})}, nil
}

// RenameCategory moves the sections of oldName to newName, keeping the
// category at its current position.
func (t Tree) RenameCategory(oldName, newName string) (Tree, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return t, ErrBlank
	}
	if newName == oldName {
		return t, ErrUnchanged
	}
	i := t.index(oldName)
	if i < 0 {
		return t, ErrStale
	}
	if t.Has(newName) {
		return t, ErrCategoryExists
	}
	cats := t.copyCats()
	cats[i] = Category{Name: newName, Sections: cats[i].Sections}
	return Tree{cats: cats}, nil
}

func (t Tree) DeleteCategory(name string) (Tree, error) {
	i := t.index(name)
	if i < 0 {
		return t, ErrStale
	}
	cats := make([]Category, 0, len(t.cats)-1)
	cats = append(cats, t.cats[:i]...)
	cats = append(cats, t.cats[i+1:]...)
	return Tree{cats: cats}, nil
}

func (t Tree) AddSection(category, title string) (Tree, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return t, ErrBlank
	}
	return t.withSections(category, func(secs []Section) ([]Section, error) {
		return append(secs, Section{Title: title}), nil
	})
}

func (t Tree) RenameSection(category string, index int, title string) (Tree, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return t, ErrBlank
	}
	return t.withSections(category, func(secs []Section) ([]Section, error) {
		if index < 0 || index >= len(secs) {
			return nil, ErrStale
		}
		secs[index].Title = title
		return secs, nil
	})
}

func (t Tree) DeleteSection(category string, index int) (Tree, error) {
	return t.withSections(category, func(secs []Section) ([]Section, error) {
		if index < 0 || index >= len(secs) {
			return nil, ErrStale
		}
		return append(secs[:index], secs[index+1:]...), nil
	})
}

func (t Tree) AddItem(category string, section int, text string) (Tree, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return t, ErrBlank
	}
	return t.withItems(category, section, func(items []string) ([]string, error) {
		return append(items, text), nil
	})
}

func (t Tree) EditItem(category string, section, item int, text string) (Tree, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return t, ErrBlank
	}
	return t.withItems(category, section, func(items []string) ([]string, error) {
		if item < 0 || item >= len(items) {
			return nil, ErrStale
		}
		items[item] = text
		return items, nil
	})
}

func (t Tree) DeleteItem(category string, section, item int) (Tree, error) {
	return t.withItems(category, section, func(items []string) ([]string, error) {
		if item < 0 || item >= len(items) {
			return nil, ErrStale
		}
		return append(items[:item], items[item+1:]...), nil
	})
}

func (t Tree) index(name string) int {
	for i, c := range t.cats {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// copyCats copies the category slice only; section slices are still shared
// and must be cloned before they are changed.
func (t Tree) copyCats() []Category {
	cats := make([]Category, len(t.cats))
	copy(cats, t.cats)
	return cats
}

// withSections hands fn a private copy of the category's sections.
func (t Tree) withSections(category string, fn func([]Section) ([]Section, error)) (Tree, error) {
	i := t.index(category)
	if i < 0 {
		return t, ErrStale
	}
	secs := make([]Section, len(t.cats[i].Sections))
	copy(secs, t.cats[i].Sections)
	secs, err := fn(secs)
	if err != nil {
		return t, err
	}
	cats := t.copyCats()
	cats[i] = Category{Name: cats[i].Name, Sections: secs}
	return Tree{cats: cats}, nil
}

// withItems hands fn a private copy of one section's items.
func (t Tree) withItems(category string, section int, fn func([]string) ([]string, error)) (Tree, error) {
	return t.withSections(category, func(secs []Section) ([]Section, error) {
		if section < 0 || section >= len(secs) {
			return nil, ErrStale
		}
		items := make([]string, len(secs[section].Items))
		copy(items, secs[section].Items)
		items, err := fn(items)
		if err != nil {
			return nil, err
		}
		secs[section] = Section{Title: secs[section].Title, Items: items}
		return secs, nil
	})
}

func cloneSections(secs []Section) []Section {
	if secs == nil {
		return nil
	}
	out := make([]Section, len(secs))
	for i, s := range secs {
		out[i] = Section{Title: s.Title, Items: append([]string(nil), s.Items...)}
	}
	return out
}
