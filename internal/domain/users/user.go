package users

import "errors"

// Role controls which contest operations a user may perform.
type Role string

const (
	// RoleParticipant may register for contests, upload submissions and vote.
	RoleParticipant Role = "participant"
	// RoleTargetOwner may create contests and set the target image.
	RoleTargetOwner Role = "targetOwner"
)

var ErrInvalidRole = errors.New("invalid role")

func ParseRole(value string) (Role, error) {
	switch Role(value) {
	case RoleParticipant, RoleTargetOwner:
		return Role(value), nil
	}
	return "", ErrInvalidRole
}

// User is created once by the register service and propagated everywhere
// else as a read-only replica. PasswordHash travels with the replica because
// the auth service verifies logins against its local copy.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         Role
}
