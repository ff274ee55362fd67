package category

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyName = errors.New("название категории не может быть пустым")
)

type Category struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Icon      *string   `json:"icon"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateCategoryRequest struct {
	Name  string  `json:"name"`
	Color string  `json:"color"`
	Icon  *string `json:"icon,omitempty"`
}

type UpdateCategoryRequest struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
	Icon  *string `json:"icon,omitempty"`
}

// Default категории, которые создаются при первом запуске
type Default struct {
	Name  string
	Color string
	Icon  string
}

var Defaults = []Default{
	{Name: "Personal", Color: "#3B82F6", Icon: "User"},
	{Name: "Work", Color: "#EF4444", Icon: "Briefcase"},
	{Name: "Shopping", Color: "#10B981", Icon: "ShoppingCart"},
	{Name: "Health", Color: "#F59E0B", Icon: "Heart"},
}

func New(req CreateCategoryRequest) (*Category, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrEmptyName
	}
	return &Category{
		ID:        uuid.New(),
		Name:      req.Name,
		Color:     req.Color,
		Icon:      req.Icon,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (d Default) Category() *Category {
	icon := d.Icon
	return &Category{
		ID:        uuid.New(),
		Name:      d.Name,
		Color:     d.Color,
		Icon:      &icon,
		CreatedAt: time.Now().UTC(),
	}
}

func (c *Category) Update(req UpdateCategoryRequest) error {
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return ErrEmptyName
		}
		c.Name = *req.Name
	}
	if req.Color != nil {
		c.Color = *req.Color
	}
	if req.Icon != nil {
		icon := *req.Icon
		c.Icon = &icon
	}
	return nil
}
