package domain

// Identity is the request-scoped caller. The zero value is the anonymous caller.
type Identity struct {
	UserID int64
	Email  string
	Role   Role
}

// Anonymous is the identity of a caller who supplied no credential.
var Anonymous = Identity{}

func (i Identity) Authenticated() bool { return i.UserID > 0 }

func (i Identity) IsAdmin() bool { return i.Authenticated() && i.Role == RoleAdmin }

// IdentityOf derives the identity of a stored user.
func IdentityOf(u *User) Identity {
	if u == nil {
		return Anonymous
	}
	return Identity{UserID: u.ID, Email: u.Email, Role: u.Role}
}
