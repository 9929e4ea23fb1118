package core

// Category is a fixed catalog entry with its display metadata. The
// catalog itself is never persisted; it only drives default icon/color
// lookup and selector population.
type Category struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

const (
	// OtherCategory permits a free-text sub-category supplied by the user.
	OtherCategory = "Other"

	// CustomIcon marks expenses filed under a user-supplied category name.
	CustomIcon = "📝"

	fallbackIcon  = "💰"
	fallbackColor = "#8B5CF6"
)

// Catalog returns the fixed category list in display order.
func Catalog() []Category {
	return []Category{
		{Name: "Food", Icon: "🍽️", Color: "#8B5CF6"},
		{Name: "Transport", Icon: "🚗", Color: "#10B981"},
		{Name: "Groceries", Icon: "🛒", Color: "#F59E0B"},
		{Name: "Daily Essentials", Icon: "🧴", Color: "#EF4444"},
		{Name: "Entertainment", Icon: "🎬", Color: "#F97316"},
		{Name: "Bills", Icon: "💡", Color: "#EC4899"},
		{Name: "Mobile Recharge", Icon: "📱", Color: "#3B82F6"},
		{Name: "Snacks", Icon: "🍿", Color: "#84CC16"},
		{Name: "Subscriptions", Icon: "📺", Color: "#A855F7"},
		{Name: OtherCategory, Icon: "➕", Color: "#6B7280"},
	}
}

// LookupCategory finds a catalog entry by name. Unknown names, including
// custom sub-categories, get the fallback glyph and color so they still
// render; they are summed like any other category.
func LookupCategory(name string) Category {
	for _, c := range Catalog() {
		if c.Name == name {
			return c
		}
	}
	return Category{Name: name, Icon: fallbackIcon, Color: fallbackColor}
}

// ExpenseIcon resolves the display glyph for an expense: its own icon if
// set, otherwise the catalog entry for its category.
func ExpenseIcon(e Expense) string {
	if e.Icon != "" {
		return e.Icon
	}
	return LookupCategory(e.Category).Icon
}
