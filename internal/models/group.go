package models

// Group is a set of users who share expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string `db:"id"`

	// Name is the display name of the group (e.g., "Roommates").
	Name string `db:"name"`

	Description string `db:"description"`

	// CreatedBy is the creator's user ID. The creator is always a member.
	CreatedBy string `db:"created_by"`

	// Members holds the member user IDs, sorted ascending.
	Members []string `db:"-"`

	CreatedAt int64 `db:"created_at"`
	UpdatedAt int64 `db:"updated_at"`
}

// HasMember reports whether userID is in the group's member set.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}
