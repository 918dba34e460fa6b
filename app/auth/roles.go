package auth

import "github.com/mytheresa/retail-manager/models"

const (
	LoginPath   = "/accounts/login/"
	WelcomePath = "/index/"
)

// DestinationFor returns where a user with the given role lands after login.
func DestinationFor(role models.Role) string {
	switch role {
	case models.RoleSuperuser:
		return "/management/dashboard/"
	case models.RoleStaff:
		return "/management/products/"
	default:
		return WelcomePath
	}
}

// CanOperate reports whether role may use the catalog and the POS.
func CanOperate(role models.Role) bool {
	return role == models.RoleStaff || role == models.RoleSuperuser
}
