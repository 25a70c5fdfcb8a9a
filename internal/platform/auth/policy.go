package auth

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Staff roles.
const (
	RoleAdmin        = "admin"
	RoleDoctor       = "doctor"
	RolePharmacist   = "pharmacist"
	RoleReceptionist = "receptionist"
)

// Permission names an operation a caller may be allowed to perform.
type Permission string

const (
	PermPatientCreate     Permission = "patient.create"
	PermPatientRead       Permission = "patient.read"
	PermAppointmentBook   Permission = "appointment.book"
	PermAppointmentRead   Permission = "appointment.read"
	PermRecordWrite       Permission = "record.write"
	PermRecordRead        Permission = "record.read"
	PermPrescriptionWrite Permission = "prescription.write"
	PermPrescriptionRead  Permission = "prescription.read"
	PermPaymentInitiate   Permission = "payment.initiate"
	PermPaymentRead       Permission = "payment.read"
	PermUserManage        Permission = "user.manage"
	PermReportRead        Permission = "report.read"
)

// Policy maps each permission to the roles allowed to exercise it. Checks go
// through this single table rather than per-handler role lists.
type Policy map[Permission][]string

// DefaultPolicy returns the hospital's standing role/permission assignments.
func DefaultPolicy() Policy {
	return Policy{
		PermPatientCreate:     {RoleReceptionist, RoleAdmin},
		PermPatientRead:       {RoleReceptionist, RoleAdmin, RolePharmacist, RoleDoctor},
		PermAppointmentBook:   {RoleReceptionist, RoleAdmin},
		PermAppointmentRead:   {RoleReceptionist, RoleAdmin, RolePharmacist, RoleDoctor},
		PermRecordWrite:       {RoleDoctor, RoleAdmin},
		PermRecordRead:        {RoleReceptionist, RoleAdmin, RolePharmacist, RoleDoctor},
		PermPrescriptionWrite: {RoleDoctor, RoleAdmin},
		PermPrescriptionRead:  {RolePharmacist, RoleDoctor, RoleAdmin},
		PermPaymentInitiate:   {RoleReceptionist, RoleAdmin},
		PermPaymentRead:       {RoleAdmin},
		PermUserManage:        {RoleAdmin},
		PermReportRead:        {RoleAdmin},
	}
}

// Allows reports whether the role may exercise the permission. Admin is a
// superuser and passes every check.
func (p Policy) Allows(role string, perm Permission) bool {
	if role == RoleAdmin {
		return true
	}
	for _, allowed := range p[perm] {
		if allowed == role {
			return true
		}
	}
	return false
}

// RequirePermission returns middleware that enforces the policy table for a
// single permission using the principal on the request context.
func RequirePermission(policy Policy, perm Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := PrincipalFromContext(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if !policy.Allows(principal.Role, perm) {
				return echo.NewHTTPError(http.StatusForbidden,
					fmt.Sprintf("permission denied for user %s with role %s", principal.Username, principal.Role))
			}
			return next(c)
		}
	}
}
