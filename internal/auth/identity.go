package auth

import (
	"context"
	"fmt"

	"lis-backend/internal/model"
)

// Identity is the per-request representation of "who is making this
// call". Built fresh from the resolved user record on every request,
// never persisted. The role comes from the validated token, not the
// live user record, so a role change only takes effect after the user
// re-authenticates.
type Identity struct {
	ID              uint
	Email           string
	Role            string
	Tenant          *model.Tenant
	IsAuthenticated bool
	IsStaff         bool
}

// NewIdentity builds an identity from a resolved user and the role
// carried by the validated credential.
func NewIdentity(user *model.User, role string) *Identity {
	return &Identity{
		ID:              user.ID,
		Email:           user.Email,
		Role:            role,
		Tenant:          user.Tenant,
		IsAuthenticated: true,
		IsStaff:         user.IsStaff,
	}
}

func (i *Identity) String() string {
	return fmt.Sprintf("User(id=%d, role=%s)", i.ID, i.Role)
}

// UserStore is the persistence contract the authenticator depends on.
// Implementations return ErrUserNotFound on a lookup miss; any other
// error is a storage fault.
type UserStore interface {
	FindUserByID(ctx context.Context, id uint) (*model.User, error)
}

// Resolve maps a validated subject id to a live user record and wraps
// it in an identity. Activation state is deliberately not checked
// here: resolution is identity lookup, activation is a policy decision
// made by the middleware.
func Resolve(ctx context.Context, users UserStore, subjectID uint, role string) (*Identity, error) {
	user, err := users.FindUserByID(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	return NewIdentity(user, role), nil
}
