// Package rights owns the persistent access-control model: users, projects
// and the per-(user, project) access rows.
package rights

import "time"

// Rights is the flat permission triple carried by an access row.
type Rights struct {
	Read  bool `json:"read"`
	Write bool `json:"write"`
	Grant bool `json:"grant"`
}

// FullRights returns the triple with every bit set. Project creators and
// admins hold it implicitly.
func FullRights() Rights {
	return Rights{Read: true, Write: true, Grant: true}
}

// Covers reports whether every bit requested is also held by r. This is the
// escalation-prevention check: a grantor may never confer a right they do
// not themselves hold.
func (r Rights) Covers(requested Rights) bool {
	if requested.Read && !r.Read {
		return false
	}
	if requested.Write && !r.Write {
		return false
	}
	if requested.Grant && !r.Grant {
		return false
	}
	return true
}

// User is an internal account mapped to one external identity.
// Immutable after registration.
type User struct {
	ID         int64
	ExternalID string
	IsAdmin    bool
	CreatedAt  time.Time
}

// Project is a named resource rights are scoped to.
type Project struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// Access is the single row tying a user to a project. At most one row
// exists per (user, project) pair; absence means no access.
type Access struct {
	UserID    int64
	ProjectID int64
	Rights
}
