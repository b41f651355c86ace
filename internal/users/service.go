// Package users implements registration and credential checks for local
// agent accounts stored in the snapshot's users table.
package users

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/agentdesk/internal/common"
	"github.com/dmitrijs2005/agentdesk/internal/cryptox"
	"github.com/dmitrijs2005/agentdesk/internal/store"
)

// Repository is the slice of the store the service needs.
type Repository interface {
	FindUserByLogin(ctx context.Context, login string) (store.User, error)
	CreateUser(ctx context.Context, login string, salt, verifier []byte) (store.User, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a local account. The password is stretched with a fresh
// salt and only the verifier is stored.
func (s *Service) Register(ctx context.Context, login string, password []byte) (store.User, error) {
	salt := common.GenerateRandByteArray(32)
	verifier := cryptox.MakeVerifier(cryptox.DeriveKey(password, salt))

	user, err := s.repo.CreateUser(ctx, login, salt, verifier)
	if err != nil {
		return store.User{}, fmt.Errorf("error creating user: %w", err)
	}
	return user, nil
}

// Authenticate checks login/password and returns the matching user.
// A missing login and a wrong password report the same error so probing for
// registered logins tells the caller nothing.
func (s *Service) Authenticate(ctx context.Context, login string, password []byte) (store.User, error) {
	user, err := s.repo.FindUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return store.User{}, common.ErrInvalidLoginPassword
		}
		return store.User{}, fmt.Errorf("error looking up user: %w", err)
	}

	candidate := cryptox.MakeVerifier(cryptox.DeriveKey(password, user.Salt))
	if subtle.ConstantTimeCompare(user.Verifier, candidate) != 1 {
		return store.User{}, common.ErrInvalidLoginPassword
	}
	return user, nil
}
