package domain

// Role type to distinguish between token holders
type Role string

const (
	RoleAthlete Role = "athlete"
	RoleCoach   Role = "coach"
)

// CanAccess reports whether a token holder may act on the given athlete context.
// Coaches may act on any athlete; athletes only on themselves.
func (r Role) CanAccess(subjectID, athleteID string) bool {
	switch r {
	case RoleCoach:
		return true
	case RoleAthlete:
		return subjectID != "" && subjectID == athleteID
	default:
		return false
	}
}
