//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"staybook/internal/domain/user"
	"staybook/internal/infra"
	"staybook/internal/infra/db"
	"staybook/internal/pkg/errs"
	"staybook/internal/pkg/jwt"
	"staybook/internal/pkg/password"
	"staybook/internal/usecase/commands"
	"staybook/internal/usecase/shared"
	"staybook/tests/common/builder"
	queriesmock "staybook/tests/mock/queries"
	sharedmock "staybook/tests/mock/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type AuthCommandsTestSuite struct {
	suite.Suite
	ctrl          *gomock.Controller
	mockUoW       *sharedmock.MockUnitOfWork
	mockTx        *sharedmock.MockTx
	mockUsers     *sharedmock.MockUserRepository
	mockReadStore *queriesmock.MockUserReadStore
	uc            commands.AuthCommands
}

func (s *AuthCommandsTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockUoW = sharedmock.NewMockUnitOfWork(s.ctrl)
	s.mockTx = sharedmock.NewMockTx(s.ctrl)
	s.mockUsers = sharedmock.NewMockUserRepository(s.ctrl)
	s.mockReadStore = queriesmock.NewMockUserReadStore(s.ctrl)

	s.mockTx.EXPECT().Users().Return(s.mockUsers).AnyTimes()
	s.mockTx.EXPECT().DB().Return(nil).AnyTimes()

	jwtService := jwt.NewService("test-secret", 15*time.Minute, 168*time.Hour)
	s.uc = commands.NewAuthCommands(s.mockUoW, s.mockReadStore, jwtService)
}

func (s *AuthCommandsTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestAuthCommandsSuite(t *testing.T) {
	suite.Run(t, new(AuthCommandsTestSuite))
}

func (s *AuthCommandsTestSuite) expectWithin(times int) {
	s.mockUoW.EXPECT().Within(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context, shared.Tx) error) error {
			return fn(ctx, s.mockTx)
		}).Times(times)
}

// =============================================================================
// TestRegister
// =============================================================================

func (s *AuthCommandsTestSuite) TestRegister() {
	s.Run("success: stores a guest account and issues tokens", func() {
		b := builder.NewUserBuilder()

		s.expectWithin(1)
		s.mockUsers.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ db.DBTX, u *user.User) (uuid.UUID, error) {
				s.Equal(b.Email, u.Email().Value())
				s.Equal(user.RoleGuest, u.Role())
				s.True(u.IsActive())
				s.NoError(password.ComparePassword(u.PasswordHash(), b.Password))
				return u.ID(), nil
			})

		result, err := s.uc.Register(context.Background(), b.Email, b.Password)
		s.NoError(err)
		s.NotEqual(uuid.Nil, result.UserID)
		s.NotEmpty(result.TokenPair.AccessToken)
		s.NotEmpty(result.TokenPair.RefreshToken)
	})

	s.Run("error: email already registered", func() {
		b := builder.NewUserBuilder()

		s.expectWithin(1)
		s.mockUsers.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(uuid.Nil, infra.WrapRepoErr("email already registered",
				errs.New("unique violation"), infra.KindDuplicateKey))

		_, err := s.uc.Register(context.Background(), b.Email, b.Password)
		s.ErrorIs(err, commands.ErrEmailTaken)
	})

	s.Run("error: malformed email rejected before any transaction", func() {
		_, err := s.uc.Register(context.Background(), "not-an-email", "password123")
		s.ErrorIs(err, commands.ErrAuthenticationFailed)
	})

	s.Run("error: weak password rejected before any transaction", func() {
		b := builder.NewUserBuilder()

		_, err := s.uc.Register(context.Background(), b.Email, "short")
		s.ErrorIs(err, commands.ErrAuthenticationFailed)
	})
}
