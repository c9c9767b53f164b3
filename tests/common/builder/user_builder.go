//go:build unit || e2e

package builder

import (
	"time"

	"staybook/internal/domain/user"
	reqdto "staybook/internal/handler/dto/request"
	"staybook/internal/usecase/queries"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UserBuilder struct {
	UserID    uuid.UUID
	Email     string
	Password  string
	Role      string
	IsActive  bool
	LastLogin *time.Time
}

func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		UserID:   uuid.New(),
		Email:    "guest@example.com",
		Password: "password123",
		Role:     "guest",
		IsActive: true,
	}
}

func (u *UserBuilder) With(mutate func(*UserBuilder)) *UserBuilder {
	mutate(u)
	return u
}

// Build methods
func (u *UserBuilder) BuildDomain() (*user.User, error) {
	email, err := user.NewEmail(u.Email)
	if err != nil {
		return nil, err
	}
	role, err := user.NewRole(u.Role)
	if err != nil {
		return nil, err
	}
	hash, err := u.BuildPasswordHash()
	if err != nil {
		return nil, err
	}
	return user.NewUser(email, hash, role), nil
}

func (u *UserBuilder) BuildPasswordHash() (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.MinCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (u *UserBuilder) BuildView() *queries.AuthorizedUserView {
	return &queries.AuthorizedUserView{
		ID:        u.UserID,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		LastLogin: u.LastLogin,
	}
}

func (u *UserBuilder) BuildLoginDTO() reqdto.LoginRequest {
	return reqdto.LoginRequest{
		Email:    u.Email,
		Password: u.Password,
	}
}
