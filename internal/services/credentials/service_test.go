package credentials

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/lanterngame/internal/model"
	"github.com/mcoot/lanterngame/internal/storage/memory"
	"github.com/mcoot/lanterngame/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.service = New(s.storage, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestSeedGameUsersSkipsExisting() {
	created, err := s.service.SeedGameUsers(s.ctx, []model.GameUser{
		{UserName: "alice", Passwords: []string{"a1"}},
		{UserName: "bob", Passwords: []string{"b1"}},
	})
	s.Require().NoError(err)
	s.Equal(2, created)

	created, err = s.service.SeedGameUsers(s.ctx, []model.GameUser{
		{UserName: "alice", Passwords: []string{"changed"}},
		{UserName: "carol", Passwords: []string{"c1"}},
	})
	s.Require().NoError(err)
	s.Equal(1, created)

	users, err := s.service.ListGameUsers(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(users, 3)
	s.Equal("alice", users[0].UserName)
	s.Equal([]string{"a1"}, users[0].Passwords)
}

func (s *ServiceSuite) TestSeedGameUsersRejectsBlankName() {
	_, err := s.service.SeedGameUsers(s.ctx, []model.GameUser{{UserName: "  "}})
	s.ErrorIs(err, model.ErrInvalidInput)
}

func (s *ServiceSuite) TestFakePasswordsRequireBootstrap() {
	_, err := s.service.AddFakePasswords(s.ctx, []string{"x"})
	s.ErrorIs(err, model.ErrNotFound)
}

func (s *ServiceSuite) TestAddFakePasswordsHasSetSemantics() {
	_, err := s.storage.CreateFakePasswordContainerIfAbsent(s.ctx)
	s.Require().NoError(err)

	_, err = s.service.AddFakePasswords(s.ctx, []string{"hunter2", "letmein"})
	s.Require().NoError(err)
	pool, err := s.service.AddFakePasswords(s.ctx, []string{"hunter2", " qwerty "})
	s.Require().NoError(err)
	s.ElementsMatch([]string{"hunter2", "letmein", "qwerty"}, pool)

	listed, err := s.service.ListFakePasswords(s.ctx)
	s.Require().NoError(err)
	s.ElementsMatch(pool, listed)
}

func (s *ServiceSuite) TestAddFakePasswordsRejectsEmpty() {
	_, err := s.service.AddFakePasswords(s.ctx, []string{"ok", ""})
	s.ErrorIs(err, model.ErrInvalidInput)
}
