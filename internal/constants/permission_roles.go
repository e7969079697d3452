package constants

// PermissionRoles maps each permission to the roles allowed to perform it.
var PermissionRoles = map[string][]string{
	CreateCar:   {Seller, Dealership, Admin},
	EditCar:     {Seller, Dealership, Admin},
	PublishCar:  {Seller, Dealership, Admin},
	MarkSold:    {Seller, Dealership, Admin},
	WaiveFee:    {Admin},
	ModerateCar: {Admin},
}

// AllowedRole returns true if role is in the list of allowed roles for the
// permission.
func AllowedRole(permission, role string) bool {
	roles, ok := PermissionRoles[permission]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
