package entity

type Location struct {
	ID          int64  `json:"id"`
	OwnerID     int64  `json:"owner_id"`
	Description string `json:"description"`

	Owner *User   `json:"owner,omitempty"`
	Items []*Item `json:"items,omitempty"`
}

// ApplyTo copies the scalar fields of l onto stored.
func (l *Location) ApplyTo(stored *Location) {
	stored.OwnerID = l.OwnerID
	stored.Description = l.Description
}
