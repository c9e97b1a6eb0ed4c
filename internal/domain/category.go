package domain

import "context"

// CategoryRepository defines the interface for category-related operations
type CategoryRepository interface {
	// List retrieves all categories ordered by id
	List(ctx context.Context) ([]*Category, error)

	// GetByID retrieves a category by its ID
	GetByID(ctx context.Context, id int) (*Category, error)

	// Create creates a new category
	Create(ctx context.Context, category *Category) error
}

// Category groups questions under a type label such as "Science"
type Category struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
}

// CategoryMap maps category ids to their type labels
type CategoryMap map[int]string

// NewCategoryMap builds the id -> type mapping served to clients
func NewCategoryMap(categories []*Category) CategoryMap {
	m := make(CategoryMap, len(categories))
	for _, c := range categories {
		m[c.ID] = c.Type
	}
	return m
}
