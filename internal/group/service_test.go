package group

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	authmodels "easyplit/internal/auth/models"
	userstore "easyplit/internal/auth/store/user"
	dErrors "easyplit/pkg/domain-errors"
)

type GroupServiceSuite struct {
	suite.Suite
	ctx   context.Context
	users *userstore.InMemoryStore
	svc   *Service

	owner  *authmodels.User
	friend *authmodels.User
}

func TestGroupServiceSuite(t *testing.T) {
	suite.Run(t, new(GroupServiceSuite))
}

func (s *GroupServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.users = userstore.NewInMemoryStore()

	svc, err := NewService(NewInMemoryStore(), s.users)
	require.NoError(s.T(), err)
	s.svc = svc

	s.owner = s.addUser("owner@example.com")
	s.friend = s.addUser("friend@example.com")
}

func (s *GroupServiceSuite) addUser(email string) *authmodels.User {
	u := &authmodels.User{ID: uuid.New(), Email: email, Name: email}
	require.NoError(s.T(), s.users.Create(s.ctx, u))
	return u
}

func (s *GroupServiceSuite) TestCreateMakesOwnerAMember() {
	g, err := s.svc.Create(s.ctx, s.owner.ID, CreateRequest{Name: "  Ski Trip  "})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Ski Trip", g.Name)
	assert.Equal(s.T(), s.owner.ID, g.OwnerID)
	assert.True(s.T(), g.HasMember(s.owner.ID))
}

func (s *GroupServiceSuite) TestCreateRequiresName() {
	_, err := s.svc.Create(s.ctx, s.owner.ID, CreateRequest{Name: "   "})
	require.Error(s.T(), err)
	var dErr *dErrors.DomainError
	require.ErrorAs(s.T(), err, &dErr)
	assert.Equal(s.T(), "name is required", dErr.Fields["name"])
}

func (s *GroupServiceSuite) TestNonMemberSeesNotFound() {
	g, err := s.svc.Create(s.ctx, s.owner.ID, CreateRequest{Name: "Ski Trip"})
	require.NoError(s.T(), err)

	_, err = s.svc.Get(s.ctx, s.friend.ID, g.ID)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *GroupServiceSuite) TestAddMemberByEmail() {
	g, err := s.svc.Create(s.ctx, s.owner.ID, CreateRequest{Name: "Ski Trip"})
	require.NoError(s.T(), err)

	updated, err := s.svc.AddMember(s.ctx, s.owner.ID, g.ID, AddMemberRequest{Email: "Friend@Example.com"})
	require.NoError(s.T(), err)
	assert.True(s.T(), updated.HasMember(s.friend.ID))

	// The new member can now see the group.
	_, err = s.svc.Get(s.ctx, s.friend.ID, g.ID)
	assert.NoError(s.T(), err)
}

func (s *GroupServiceSuite) TestAddMemberUnknownEmail() {
	g, err := s.svc.Create(s.ctx, s.owner.ID, CreateRequest{Name: "Ski Trip"})
	require.NoError(s.T(), err)

	_, err = s.svc.AddMember(s.ctx, s.owner.ID, g.ID, AddMemberRequest{Email: "ghost@example.com"})
	require.Error(s.T(), err)
	var dErr *dErrors.DomainError
	require.ErrorAs(s.T(), err, &dErr)
	assert.Contains(s.T(), dErr.Fields, "email")
}

func (s *GroupServiceSuite) TestAddMemberTwiceConflicts() {
	g, err := s.svc.Create(s.ctx, s.owner.ID, CreateRequest{Name: "Ski Trip"})
	require.NoError(s.T(), err)

	_, err = s.svc.AddMember(s.ctx, s.owner.ID, g.ID, AddMemberRequest{Email: s.friend.Email})
	require.NoError(s.T(), err)
	_, err = s.svc.AddMember(s.ctx, s.owner.ID, g.ID, AddMemberRequest{Email: s.friend.Email})
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *GroupServiceSuite) TestDeleteIsOwnerOnly() {
	g, err := s.svc.Create(s.ctx, s.owner.ID, CreateRequest{Name: "Ski Trip"})
	require.NoError(s.T(), err)
	_, err = s.svc.AddMember(s.ctx, s.owner.ID, g.ID, AddMemberRequest{Email: s.friend.Email})
	require.NoError(s.T(), err)

	err = s.svc.Delete(s.ctx, s.friend.ID, g.ID)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeForbidden))

	require.NoError(s.T(), s.svc.Delete(s.ctx, s.owner.ID, g.ID))
	_, err = s.svc.Get(s.ctx, s.owner.ID, g.ID)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *GroupServiceSuite) TestListMine() {
	_, err := s.svc.Create(s.ctx, s.owner.ID, CreateRequest{Name: "Ski Trip"})
	require.NoError(s.T(), err)
	_, err = s.svc.Create(s.ctx, s.friend.ID, CreateRequest{Name: "Flat"})
	require.NoError(s.T(), err)

	mine, err := s.svc.ListMine(s.ctx, s.owner.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), mine, 1)
	assert.Equal(s.T(), "Ski Trip", mine[0].Name)
}
