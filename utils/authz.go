package utils

import "github.com/courtbook/courtbook/models/shared_models"

// Authorization capability checks. Pure functions over the caller's role;
// handlers call these at the top, before touching any data. Court-level
// manager assignment is checked separately against the court_managers table.

func IsSuperAdmin(role shared_models.Role) bool {
	return role == shared_models.RoleSuperAdmin
}

// CanManageCourts reports whether the role may mutate availability, pricing
// and bookings for courts it is assigned to.
func CanManageCourts(role shared_models.Role) bool {
	return role == shared_models.RoleManager || role == shared_models.RoleSuperAdmin
}

// CanCancelBooking reports whether the role may force a booking to
// CANCELLED_MANUAL.
func CanCancelBooking(role shared_models.Role) bool {
	return CanManageCourts(role)
}
