// Package permissions decides who may modify catalog objects. It has no I/O:
// callers pass in who is asking and what the object records.
package permissions

import "errors"

var (
	ErrUnauthenticated = errors.New("authentication credentials were not provided")
	ErrForbidden       = errors.New("you do not have permission to perform this action")
)

// Caller is the identity behind a request. The zero value is anonymous.
type Caller struct {
	UserID  uint
	IsStaff bool
}

func (c Caller) Authenticated() bool {
	return c.UserID != 0
}

// CanModifyBook reports whether caller may update or delete a book owned by
// ownerID (nil for books without an owner). Staff may modify any book.
func CanModifyBook(caller Caller, ownerID *uint) bool {
	if !caller.Authenticated() {
		return false
	}
	if caller.IsStaff {
		return true
	}
	return ownerID != nil && *ownerID == caller.UserID
}

// CheckBookWrite is CanModifyBook with the reason for a denial.
func CheckBookWrite(caller Caller, ownerID *uint) error {
	if !caller.Authenticated() {
		return ErrUnauthenticated
	}
	if !CanModifyBook(caller, ownerID) {
		return ErrForbidden
	}
	return nil
}

// CheckAuthenticated guards operations open to any signed-in user.
func CheckAuthenticated(caller Caller) error {
	if !caller.Authenticated() {
		return ErrUnauthenticated
	}
	return nil
}

// CheckStaff guards staff-only operations.
func CheckStaff(caller Caller) error {
	if !caller.Authenticated() {
		return ErrUnauthenticated
	}
	if !caller.IsStaff {
		return ErrForbidden
	}
	return nil
}
