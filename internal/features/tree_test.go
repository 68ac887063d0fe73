package features

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() Tree {
	return New(
		Category{Name: "Gameplay", Sections: []Section{
			{Title: "Aim", Items: []string{"Silent aim", "FOV circle"}},
			{Title: "Movement"},
		}},
		Category{Name: "Visuals", Sections: []Section{
			{Title: "ESP", Items: []string{"Boxes"}},
		}},
		Category{Name: "Misc"},
	)
}

func TestAddCategory(t *testing.T) {
	tree := sample()

	next, err := tree.AddCategory("  Settings ")
	require.NoError(t, err)
	assert.Equal(t, []string{"Gameplay", "Visuals", "Misc", "Settings"}, next.Names())
	assert.Equal(t, 3, tree.Len(), "receiver must not change")

	same, err := tree.AddCategory("Gameplay")
	assert.ErrorIs(t, err, ErrCategoryExists)
	assert.True(t, same.Equal(tree))

	same, err = tree.AddCategory("   ")
	assert.ErrorIs(t, err, ErrBlank)
	assert.True(t, same.Equal(tree))
}

func TestRenameCategoryKeepsPosition(t *testing.T) {
	tree := sample()

	next, err := tree.RenameCategory("Visuals", "Render")
	require.NoError(t, err)
	assert.Equal(t, []string{"Gameplay", "Render", "Misc"}, next.Names())
	secs, ok := next.Sections("Render")
	require.True(t, ok)
	assert.Equal(t, "ESP", secs[0].Title)
	assert.True(t, tree.Has("Visuals"))

	tests := []struct {
		name    string
		oldName string
		newName string
		want    error
	}{
		{"blank", "Visuals", " ", ErrBlank},
		{"unchanged", "Visuals", "Visuals", ErrUnchanged},
		{"collision", "Visuals", "Misc", ErrCategoryExists},
		{"unknown", "Nope", "Other", ErrStale},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tree.RenameCategory(tt.oldName, tt.newName)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, got.Equal(tree))
		})
	}
}

func TestDeleteCategory(t *testing.T) {
	tree := sample()

	next, err := tree.DeleteCategory("Visuals")
	require.NoError(t, err)
	assert.Equal(t, []string{"Gameplay", "Misc"}, next.Names())

	_, err = next.DeleteCategory("Visuals")
	assert.ErrorIs(t, err, ErrStale)
}

func TestSections(t *testing.T) {
	tree := sample()

	next, err := tree.AddSection("Misc", "Extras")
	require.NoError(t, err)
	secs, _ := next.Sections("Misc")
	require.Len(t, secs, 1)
	assert.Equal(t, "Extras", secs[0].Title)
	assert.Empty(t, secs[0].Items)

	_, err = tree.AddSection("Misc", "")
	assert.ErrorIs(t, err, ErrBlank)
	_, err = tree.AddSection("Nope", "Extras")
	assert.ErrorIs(t, err, ErrStale)

	renamed, err := tree.RenameSection("Gameplay", 1, "Walk")
	require.NoError(t, err)
	secs, _ = renamed.Sections("Gameplay")
	assert.Equal(t, "Walk", secs[1].Title)
	orig, _ := tree.Sections("Gameplay")
	assert.Equal(t, "Movement", orig[1].Title)

	deleted, err := tree.DeleteSection("Gameplay", 0)
	require.NoError(t, err)
	secs, _ = deleted.Sections("Gameplay")
	require.Len(t, secs, 1)
	assert.Equal(t, "Movement", secs[0].Title)

	for _, idx := range []int{-1, 2, 99} {
		got, err := tree.DeleteSection("Gameplay", idx)
		assert.ErrorIs(t, err, ErrStale)
		assert.True(t, got.Equal(tree))
		got, err = tree.RenameSection("Gameplay", idx, "x")
		assert.ErrorIs(t, err, ErrStale)
		assert.True(t, got.Equal(tree))
	}
}

func TestItems(t *testing.T) {
	tree := sample()

	next, err := tree.AddItem("Gameplay", 1, " Bunny hop ")
	require.NoError(t, err)
	secs, _ := next.Sections("Gameplay")
	assert.Equal(t, []string{"Bunny hop"}, secs[1].Items)

	edited, err := tree.EditItem("Gameplay", 0, 1, "FOV slider")
	require.NoError(t, err)
	secs, _ = edited.Sections("Gameplay")
	assert.Equal(t, []string{"Silent aim", "FOV slider"}, secs[0].Items)

	deleted, err := tree.DeleteItem("Gameplay", 0, 0)
	require.NoError(t, err)
	secs, _ = deleted.Sections("Gameplay")
	assert.Equal(t, []string{"FOV circle"}, secs[0].Items)

	orig, _ := tree.Sections("Gameplay")
	assert.Equal(t, []string{"Silent aim", "FOV circle"}, orig[0].Items)

	cases := []struct {
		name string
		run  func() (Tree, error)
		want error
	}{
		{"add blank", func() (Tree, error) { return tree.AddItem("Gameplay", 0, "  ") }, ErrBlank},
		{"add stale section", func() (Tree, error) { return tree.AddItem("Gameplay", 5, "x") }, ErrStale},
		{"edit blank", func() (Tree, error) { return tree.EditItem("Gameplay", 0, 0, "") }, ErrBlank},
		{"edit stale item", func() (Tree, error) { return tree.EditItem("Gameplay", 0, 2, "x") }, ErrStale},
		{"delete stale item", func() (Tree, error) { return tree.DeleteItem("Gameplay", 1, 0) }, ErrStale},
		{"delete unknown category", func() (Tree, error) { return tree.DeleteItem("Nope", 0, 0) }, ErrStale},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.run()
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, got.Equal(tree))
		})
	}
}

func TestApplyNeedsConfirmation(t *testing.T) {
	tree := sample()

	got, err := Apply(tree, Op{Kind: DeleteCategory, Category: "Gameplay"})
	assert.ErrorIs(t, err, ErrNeedsConfirmation)
	assert.True(t, got.Equal(tree))

	got, err = Apply(tree, Op{Kind: DeleteCategory, Category: "Gameplay", Confirmed: true})
	require.NoError(t, err)
	assert.False(t, got.Has("Gameplay"))

	got, err = Apply(tree, Op{Kind: AddItem, Category: "Visuals", Section: 0, Text: "Skeleton"})
	require.NoError(t, err)
	secs, _ := got.Sections("Visuals")
	assert.Equal(t, []string{"Boxes", "Skeleton"}, secs[0].Items)

	_, err = Apply(tree, Op{Kind: "explode"})
	assert.ErrorIs(t, err, ErrUnknownOp)
}

func TestJSONKeepsOrder(t *testing.T) {
	tree := sample()

	b, err := json.Marshal(tree)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"Gameplay":[{"title":"Aim","items":["Silent aim","FOV circle"]},{"title":"Movement","items":[]}],
		"Visuals":[{"title":"ESP","items":["Boxes"]}],
		"Misc":[]
	}`, string(b))
	assert.Equal(t, `{"Gameplay":`, string(b[:len(`{"Gameplay":`)]))

	var back Tree
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back.Equal(tree))

	var reordered Tree
	require.NoError(t, json.Unmarshal([]byte(`{"Zeta":[],"Alpha":[{"title":"A","items":null}]}`), &reordered))
	assert.Equal(t, []string{"Zeta", "Alpha"}, reordered.Names())
}

func TestParse(t *testing.T) {
	empty, err := Parse("")
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())

	null, err := Parse("null")
	require.NoError(t, err)
	assert.True(t, null.IsEmpty())

	_, err = Parse("[1,2]")
	assert.Error(t, err)

	tree, err := Parse(sample().String())
	require.NoError(t, err)
	assert.True(t, tree.Equal(sample()))
}
