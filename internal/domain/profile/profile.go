// Package profile describes the caller context injected into the agent prompt.
package profile

import (
	"fmt"
	"strings"
)

// Guest profile values used when the caller cannot be resolved.
const (
	GuestUserID = "anonymous"
	GuestName   = "Guest"
	RolePublic  = "PUBLIC"
	RoleDefault = "CUSTOMER"
)

// Vehicle is a vehicle registered to the caller.
type Vehicle struct {
	ID           string
	Make         string
	Model        string
	LicensePlate string
}

// Profile is the caller identity as reported by the auth and vehicle services.
type Profile struct {
	UserID   string
	FullName string
	Role     string
	Vehicles []Vehicle
}

// Guest returns the profile used for anonymous or unresolvable callers.
func Guest() Profile {
	return Profile{UserID: GuestUserID, FullName: GuestName, Role: RolePublic}
}

// IsGuest reports whether p is the anonymous profile.
func (p Profile) IsGuest() bool { return p.UserID == GuestUserID }

// Summary renders the profile for the system prompt.
func (p Profile) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "User ID: %s, Name: %s, Role: %s", p.UserID, p.FullName, p.Role)

	if len(p.Vehicles) == 0 {
		b.WriteString(", Vehicles: none")
		return b.String()
	}

	vs := make([]string, len(p.Vehicles))
	for i, v := range p.Vehicles {
		vs[i] = fmt.Sprintf("%s %s (%s, id %s)", v.Make, v.Model, v.LicensePlate, v.ID)
	}
	b.WriteString(", Vehicles: ")
	b.WriteString(strings.Join(vs, "; "))
	return b.String()
}
