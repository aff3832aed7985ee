package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type TaskTestSuite struct {
	suite.Suite
	now time.Time
}

func (s *TaskTestSuite) SetupTest() {
	s.now = time.Now().UTC().Add(-time.Minute)
}

func TestTaskTestSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(TaskTestSuite))
}

func (s *TaskTestSuite) TestNewTask_DefaultsToTodo() {
	task, err := NewTask("t1", "Buy milk", nil, "", "u1", s.now)

	Expect(err).To(BeNil())
	Expect(task.Status).To(Equal(TaskStatusTodo))
	Expect(task.CreatedAt).To(Equal(s.now))
	Expect(task.UpdatedAt).To(Equal(s.now))
}

func (s *TaskTestSuite) TestNewTask_TitleBounds() {
	valid := []string{"a", " a ", strings.Repeat("x", 200), strings.Repeat("é", 200)}

	for _, title := range valid {
		_, err := NewTask("t1", title, nil, TaskStatusTodo, "u1", s.now)
		assert.NoError(s.T(), err, title)
	}

	invalid := []string{"", "   ", "\t\n", strings.Repeat("x", 201)}

	for _, title := range invalid {
		_, err := NewTask("t1", title, nil, TaskStatusTodo, "u1", s.now)
		assert.True(s.T(), errors.Is(err, ErrValidation), title)
	}
}

func (s *TaskTestSuite) TestNewTask_RejectsUnknownStatus() {
	_, err := NewTask("t1", "Buy milk", nil, TaskStatus("ARCHIVED"), "u1", s.now)

	Expect(errors.Is(err, ErrValidation)).To(BeTrue())
}

func (s *TaskTestSuite) TestUpdateTitle() {
	task, _ := NewTask("t1", "Buy milk", nil, "", "u1", s.now)

	err := task.UpdateTitle("   ")
	Expect(errors.Is(err, ErrValidation)).To(BeTrue())
	Expect(err.Error()).To(Equal("Title cannot be empty"))
	Expect(task.Title).To(Equal("Buy milk"))
	Expect(task.UpdatedAt).To(Equal(s.now))

	Expect(task.UpdateTitle("Buy bread")).To(Succeed())
	Expect(task.Title).To(Equal("Buy bread"))
	Expect(task.UpdatedAt.After(s.now)).To(BeTrue())
}

func (s *TaskTestSuite) TestUpdateDescription_AcceptsNilAndEmpty() {
	description := "two liters"
	task, _ := NewTask("t1", "Buy milk", &description, "", "u1", s.now)

	empty := ""
	task.UpdateDescription(&empty)
	Expect(*task.Description).To(Equal(""))

	task.UpdateDescription(nil)
	Expect(task.Description).To(BeNil())
	Expect(task.UpdatedAt.After(s.now)).To(BeTrue())
}

func (s *TaskTestSuite) TestChangeStatus_AnyTransition() {
	task, _ := NewTask("t1", "Buy milk", nil, "", "u1", s.now)

	for _, status := range []TaskStatus{TaskStatusDone, TaskStatusTodo, TaskStatusInProgress, TaskStatusDone} {
		previous := task.UpdatedAt

		Expect(task.ChangeStatus(status)).To(Succeed())
		Expect(task.Status).To(Equal(status))
		Expect(task.UpdatedAt.After(previous)).To(BeTrue())
	}
}

func (s *TaskTestSuite) TestIsOwnedBy() {
	task, _ := NewTask("t1", "Buy milk", nil, "", "u1", s.now)

	Expect(task.ChangeStatus(TaskStatusDone)).To(Succeed())

	Expect(task.IsOwnedBy("u1")).To(BeTrue())
	Expect(task.IsOwnedBy("u2")).To(BeFalse())
	Expect(task.IsOwnedBy("")).To(BeFalse())
	Expect(task.IsOwnedBy("U1")).To(BeFalse())
	Expect(task.IsOwnedBy("not a uuid")).To(BeFalse())
}

func TestParseTaskStatus(t *testing.T) {
	t.Run("should default empty values to TODO", func(t *testing.T) {
		status, err := ParseTaskStatus("")

		assert.NoError(t, err)
		assert.Equal(t, TaskStatusTodo, status)
	})

	t.Run("should accept any case", func(t *testing.T) {
		status, err := ParseTaskStatus("in_progress")

		assert.NoError(t, err)
		assert.Equal(t, TaskStatusInProgress, status)
	})

	t.Run("should reject unknown values", func(t *testing.T) {
		_, err := ParseTaskStatus("pending")

		assert.True(t, errors.Is(err, ErrValidation))
	})
}

func TestTaskPatch_IsEmpty(t *testing.T) {
	assert.True(t, TaskPatch{}.IsEmpty())
	assert.False(t, TaskPatch{DescriptionSet: true}.IsEmpty())
}
