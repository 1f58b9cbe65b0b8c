package models

// Category represents a transaction category. Categories are at most two
// levels deep: a root category (parent_id NULL) and its subcategories.
// A NULL user_id marks a system default category visible to every user.
type Category struct {
	Base
	UserID   *string `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Name     string  `gorm:"not null" json:"name"`
	Icon     string  `json:"icon"`
	Color    string  `json:"color"`
	ParentID *string `gorm:"type:uuid;index" json:"parent_id,omitempty"`

	// Relationships
	Parent   *Category  `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Children []Category `gorm:"foreignKey:ParentID" json:"children,omitempty"`
}

// IsSystem reports whether the category is a shared system default.
func (c *Category) IsSystem() bool {
	return c.UserID == nil
}
