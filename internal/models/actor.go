package models

type Role string

const (
	RoleStudent Role = "student"
	RoleTutor   Role = "tutor"
	RoleDeputy  Role = "deputy"
	RoleDean    Role = "dean"
	RoleAdmin   Role = "admin"
)

func (r Role) String() string {
	return string(r)
}

// IsReviewer reports whether the role takes part in the approval chain.
func (r Role) IsReviewer() bool {
	switch r {
	case RoleTutor, RoleDeputy, RoleDean, RoleAdmin:
		return true
	default:
		return false
	}
}

func IsValidRole(role string) bool {
	switch Role(role) {
	case RoleStudent, RoleTutor, RoleDeputy, RoleDean, RoleAdmin:
		return true
	default:
		return false
	}
}

// Actor is the current user as seen by the HTTP layer.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

func (d Decision) String() string {
	return string(d)
}
