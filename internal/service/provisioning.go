package service

import (
	"strings"

	"unsritalk/internal/models"
)

// ProvisioningPolicy decides the role and permissions a new registration receives.
type ProvisioningPolicy interface {
	Resolve(identifier string, requested models.Role) (models.Role, []models.Permission)
}

// AdminPrefixPolicy enrolls any identifier starting with Prefix as a server admin with
// every permission, whatever role was requested. It is a back door kept for
// compatibility with existing enrollment codes; disable it with security.adminprovisioning.
type AdminPrefixPolicy struct {
	Prefix string
}

func (p AdminPrefixPolicy) Resolve(identifier string, requested models.Role) (models.Role, []models.Permission) {
	if p.Prefix != "" && strings.HasPrefix(identifier, p.Prefix) {
		return models.RoleServerAdmin, models.AllPermissions()
	}
	return requested, nil
}

// RequestedRolePolicy grants exactly the requested role.
type RequestedRolePolicy struct{}

func (RequestedRolePolicy) Resolve(_ string, requested models.Role) (models.Role, []models.Permission) {
	return requested, nil
}

func NewProvisioningPolicy(enabled bool, prefix string) ProvisioningPolicy {
	if !enabled {
		return RequestedRolePolicy{}
	}
	return AdminPrefixPolicy{Prefix: prefix}
}
