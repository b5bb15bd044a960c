package wallet

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
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.service = New(memory.New(), testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestBalanceStartsAtZero() {
	balance, err := s.service.Balance(s.ctx, "p1")
	s.Require().NoError(err)
	s.Zero(balance)
}

func (s *ServiceSuite) TestCreditAccumulates() {
	_, err := s.service.Credit(s.ctx, "p1", 10)
	s.Require().NoError(err)

	balance, err := s.service.Credit(s.ctx, "p1", 5)
	s.Require().NoError(err)
	s.Equal(15, balance)

	other, err := s.service.Balance(s.ctx, "p2")
	s.Require().NoError(err)
	s.Zero(other)
}

func (s *ServiceSuite) TestCreditRejectsNegative() {
	_, err := s.service.Credit(s.ctx, "p1", -1)
	s.ErrorIs(err, model.ErrInvalidInput)
}
