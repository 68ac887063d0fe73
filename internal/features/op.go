package features

type OpKind string

const (
	AddCategory    OpKind = "add-category"
	RenameCategory OpKind = "rename-category"
	DeleteCategory OpKind = "delete-category"
	AddSection     OpKind = "add-section"
	RenameSection  OpKind = "rename-section"
	DeleteSection  OpKind = "delete-section"
	AddItem        OpKind = "add-item"
	EditItem       OpKind = "edit-item"
	DeleteItem     OpKind = "delete-item"
)

// Destructive kinds remove a subtree and must be confirmed first.
func (k OpKind) Destructive() bool {
	return k == DeleteCategory || k == DeleteSection || k == DeleteItem
}

// Op is one edit posted by the product form. Text carries the new category
// name, section title or item text depending on Kind.
type Op struct {
	Kind      OpKind
	Category  string
	Section   int
	Item      int
	Text      string
	Confirmed bool
}

// Apply runs op against t. On any error the returned tree is t itself.
func Apply(t Tree, op Op) (Tree, error) {
	if op.Kind.Destructive() && !op.Confirmed {
		return t, ErrNeedsConfirmation
	}
	switch op.Kind {
	case AddCategory:
		return t.AddCategory(op.Text)
	case RenameCategory:
		return t.RenameCategory(op.Category, op.Text)
	case DeleteCategory:
		return t.DeleteCategory(op.Category)
	case AddSection:
		return t.AddSection(op.Category, op.Text)
	case RenameSection:
		return t.RenameSection(op.Category, op.Section, op.Text)
	case DeleteSection:
		return t.DeleteSection(op.Category, op.Section)
	case AddItem:
		return t.AddItem(op.Category, op.Section, op.Text)
	case EditItem:
		return t.EditItem(op.Category, op.Section, op.Item, op.Text)
	case DeleteItem:
		return t.DeleteItem(op.Category, op.Section, op.Item)
	}
	return t, ErrUnknownOp
}
