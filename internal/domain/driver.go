package domain

import "strings"

// RoleDriver is the user role allowed to receive routes.
const RoleDriver = "Repartidor"

// A user of the driver role that can be assigned a route.
type Driver struct {
	DriverID  int64
	FirstName string
	LastName  string
	Active    bool
}

func (d *Driver) FullName() string {
	return strings.TrimSpace(d.FirstName + " " + d.LastName)
}
