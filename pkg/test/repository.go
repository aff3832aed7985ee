package test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"taskmanager/internal/core/domain"
	"taskmanager/internal/core/port"
	"taskmanager/pkg/test/factory"
)

// RepositorySuite holds the behaviour every storage backend must share.
// Backends embed it and set Open.
type RepositorySuite struct {
	suite.Suite
	Open func(t *testing.T) (port.UserRepository, port.TaskRepository)

	Users port.UserRepository
	Tasks port.TaskRepository
	Ctx   context.Context
}

func (s *RepositorySuite) SetupTest() {
	RegisterTestingT(s.T())

	s.Users, s.Tasks = s.Open(s.T())
	s.Ctx = context.Background()
}

func (s *RepositorySuite) createUser(customData ...map[string]any) domain.User {
	user, err := s.Users.Create(s.Ctx, factory.NewUser(customData...))
	require.NoError(s.T(), err)

	return user
}

func (s *RepositorySuite) createTask(task domain.Task) domain.Task {
	created, err := s.Tasks.Create(s.Ctx, task)
	require.NoError(s.T(), err)

	return created
}

func (s *RepositorySuite) TestUser_CreateAndFind() {
	user := s.createUser(map[string]any{"Email": "test@example.com"})

	byID, err := s.Users.FindByID(s.Ctx, user.ID)
	Expect(err).To(BeNil())
	Expect(byID.Email).To(Equal("test@example.com"))
	Expect(byID.PasswordHash).To(Equal(user.PasswordHash))
	Expect(byID.CreatedAt.Equal(user.CreatedAt)).To(BeTrue())

	byEmail, err := s.Users.FindByEmail(s.Ctx, "test@example.com")
	Expect(err).To(BeNil())
	Expect(byEmail.ID).To(Equal(user.ID))
}

func (s *RepositorySuite) TestUser_NotFound() {
	_, err := s.Users.FindByID(s.Ctx, "missing")
	assert.True(s.T(), errors.Is(err, domain.ErrNotFound))

	_, err = s.Users.FindByEmail(s.Ctx, "missing@example.com")
	assert.True(s.T(), errors.Is(err, domain.ErrNotFound))
}

func (s *RepositorySuite) TestUser_DuplicateEmail() {
	s.createUser(map[string]any{"Email": "test@example.com"})

	_, err := s.Users.Create(s.Ctx, factory.NewUser(map[string]any{"Email": "test@example.com"}))

	assert.True(s.T(), errors.Is(err, domain.ErrConflict))
}

func (s *RepositorySuite) TestUser_Update() {
	user := s.createUser()
	other := s.createUser(map[string]any{"Email": "taken@example.com"})

	user.Name = "Renamed"
	user.UpdatedAt = user.UpdatedAt.Add(time.Second)

	updated, err := s.Users.Update(s.Ctx, user)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Renamed", updated.Name)
	assert.True(s.T(), updated.UpdatedAt.Equal(user.UpdatedAt))

	user.Email = other.Email
	_, err = s.Users.Update(s.Ctx, user)
	assert.True(s.T(), errors.Is(err, domain.ErrConflict))

	_, err = s.Users.Update(s.Ctx, factory.NewUser())
	assert.True(s.T(), errors.Is(err, domain.ErrNotFound))
}

func (s *RepositorySuite) TestTask_CreateAndFind() {
	user := s.createUser()
	task := s.createTask(factory.NewTask(user.ID, "Buy milk", factory.WithDescription("two liters")))

	found, err := s.Tasks.FindByID(s.Ctx, task.ID)

	Expect(err).To(BeNil())
	Expect(found.Title).To(Equal("Buy milk"))
	Expect(found.Description).NotTo(BeNil())
	Expect(*found.Description).To(Equal("two liters"))
	Expect(found.Status).To(Equal(domain.TaskStatusTodo))
	Expect(found.UserID).To(Equal(user.ID))
	Expect(found.CreatedAt.Equal(task.CreatedAt)).To(BeTrue())
}

func (s *RepositorySuite) TestTask_NilDescriptionRoundTrips() {
	user := s.createUser()
	task := s.createTask(factory.NewTask(user.ID, "Buy milk"))

	found, err := s.Tasks.FindByID(s.Ctx, task.ID)

	require.NoError(s.T(), err)
	assert.Nil(s.T(), found.Description)
}

func (s *RepositorySuite) TestTask_NotFound() {
	_, err := s.Tasks.FindByID(s.Ctx, "missing")
	assert.True(s.T(), errors.Is(err, domain.ErrNotFound))

	err = s.Tasks.Delete(s.Ctx, "missing")
	assert.True(s.T(), errors.Is(err, domain.ErrNotFound))

	_, err = s.Tasks.Update(s.Ctx, factory.NewTask("nobody", "ghost"))
	assert.True(s.T(), errors.Is(err, domain.ErrNotFound))
}

func (s *RepositorySuite) TestTask_FindByUserID_Pagination() {
	user := s.createUser()
	other := s.createUser()
	base := time.Now().UTC().Truncate(time.Microsecond)

	for i, title := range []string{"first", "second", "third"} {
		s.createTask(factory.NewTask(user.ID, title, factory.CreatedAt(base.Add(time.Duration(i)*time.Second))))
	}

	s.createTask(factory.NewTask(other.ID, "not mine"))

	page, err := s.Tasks.FindByUserID(s.Ctx, domain.TaskFilters{UserID: user.ID}, domain.Pagination{Limit: 2})

	Expect(err).To(BeNil())
	Expect(page.TotalCount).To(Equal(3))
	Expect(page.HasMore).To(BeTrue())
	Expect(page.Tasks).To(HaveLen(2))
	Expect(page.Tasks[0].Title).To(Equal("third"))
	Expect(page.Tasks[1].Title).To(Equal("second"))

	next, err := s.Tasks.FindByUserID(s.Ctx, domain.TaskFilters{UserID: user.ID}, domain.Pagination{Limit: 2, Offset: 2})

	Expect(err).To(BeNil())
	Expect(next.TotalCount).To(Equal(3))
	Expect(next.HasMore).To(BeFalse())
	Expect(next.Tasks).To(HaveLen(1))
	Expect(next.Tasks[0].Title).To(Equal("first"))

	beyond, err := s.Tasks.FindByUserID(s.Ctx, domain.TaskFilters{UserID: user.ID}, domain.Pagination{Limit: 2, Offset: 10})

	Expect(err).To(BeNil())
	Expect(beyond.Tasks).To(BeEmpty())
	Expect(beyond.HasMore).To(BeFalse())
}

func (s *RepositorySuite) TestTask_FindByUserID_TieBreaksOnID() {
	user := s.createUser()
	at := time.Now().UTC().Truncate(time.Microsecond)

	a := factory.NewTask(user.ID, "a", factory.CreatedAt(at))
	b := factory.NewTask(user.ID, "b", factory.CreatedAt(at))
	a.ID, b.ID = "00000000-0000-0000-0000-00000000000a", "00000000-0000-0000-0000-00000000000b"

	s.createTask(a)
	s.createTask(b)

	page, err := s.Tasks.FindByUserID(s.Ctx, domain.TaskFilters{UserID: user.ID}, domain.Pagination{Limit: 10})

	require.NoError(s.T(), err)
	require.Len(s.T(), page.Tasks, 2)
	assert.Equal(s.T(), b.ID, page.Tasks[0].ID)
	assert.Equal(s.T(), a.ID, page.Tasks[1].ID)
}

func (s *RepositorySuite) TestTask_FindByUserID_StatusFilter() {
	user := s.createUser()

	s.createTask(factory.NewTask(user.ID, "todo"))
	done := s.createTask(factory.NewTask(user.ID, "done", factory.WithStatus(domain.TaskStatusDone)))

	status := domain.TaskStatusDone
	page, err := s.Tasks.FindByUserID(s.Ctx, domain.TaskFilters{UserID: user.ID, Status: &status}, domain.Pagination{Limit: 10})

	require.NoError(s.T(), err)
	assert.Equal(s.T(), 1, page.TotalCount)
	assert.Equal(s.T(), done.ID, page.Tasks[0].ID)
}

func (s *RepositorySuite) TestTask_Update() {
	user := s.createUser()
	task := s.createTask(factory.NewTask(user.ID, "Buy milk", factory.WithDescription("two liters")))

	require.NoError(s.T(), task.UpdateTitle("Buy bread"))
	task.UpdateDescription(nil)
	require.NoError(s.T(), task.ChangeStatus(domain.TaskStatusInProgress))

	updated, err := s.Tasks.Update(s.Ctx, task)
	require.NoError(s.T(), err)

	Expect(updated.Title).To(Equal("Buy bread"))
	Expect(updated.Description).To(BeNil())
	Expect(updated.Status).To(Equal(domain.TaskStatusInProgress))
	Expect(updated.UserID).To(Equal(user.ID))

	found, err := s.Tasks.FindByID(s.Ctx, task.ID)
	require.NoError(s.T(), err)
	Expect(found.Title).To(Equal("Buy bread"))
	Expect(found.UpdatedAt.After(found.CreatedAt)).To(BeTrue())
}

func (s *RepositorySuite) TestTask_Delete() {
	user := s.createUser()
	task := s.createTask(factory.NewTask(user.ID, "Buy milk"))

	require.NoError(s.T(), s.Tasks.Delete(s.Ctx, task.ID))

	_, err := s.Tasks.FindByID(s.Ctx, task.ID)
	assert.True(s.T(), errors.Is(err, domain.ErrNotFound))
}
