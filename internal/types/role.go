package types

import (
	"fmt"

	"github.com/formaplus/elearning-backend/internal/platform/apierr"
)

// Role is the coarse permission tag gating mutating actions.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleLearner Role = "learner"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleLearner:
		return RoleLearner, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleLearner
}

// Require is the single capability check applied by every mutating service
// method, before any other validation.
func Require(actor, required Role) error {
	if actor != required {
		return apierr.Forbidden("role_mismatch", fmt.Errorf("action requires role %q, actor has %q", required, actor))
	}
	return nil
}
