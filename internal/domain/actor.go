package domain

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID string
	Email  string
	Role   GlobalRole
}

// IsAdmin reports whether the actor holds the global ADMIN role.
func (a Actor) IsAdmin() bool {
	return a.Role == GlobalRoleAdmin
}

// ActorFromUser builds the actor for a loaded user.
func ActorFromUser(u *User) Actor {
	return Actor{UserID: u.ID, Email: u.Email, Role: u.Role}
}
