package enums

// UserRole is the optional role flag on a user record. Absence means a
// regular customer.
type UserRole string

const UserRoleAdmin UserRole = "admin"

func (r UserRole) String() string {
	return string(r)
}
