package task

import "github.com/google/uuid"

// Filter все поля необязательны и объединяются через AND
type Filter struct {
	Completed   *bool      `json:"completed,omitempty"`
	Priority    *Priority  `json:"priority,omitempty"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	NoCategory  bool       `json:"no_category,omitempty"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	RootOnly    bool       `json:"root_only,omitempty"`
	SearchQuery string     `json:"search_query,omitempty"`
	DueBefore   string     `json:"due_before,omitempty"`
	DueAfter    string     `json:"due_after,omitempty"`
}

func ChildrenOf(parentID uuid.UUID) Filter {
	return Filter{ParentID: &parentID}
}

func Roots() Filter {
	return Filter{RootOnly: true}
}
