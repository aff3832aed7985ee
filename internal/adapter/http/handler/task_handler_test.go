package handler

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"taskmanager/internal/core/model/request"
	"taskmanager/internal/core/model/response"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type TaskHandlerSuite struct {
	suite.Suite
	env    *testEnv
	token  string
	userID string
	other  string
}

func (s *TaskHandlerSuite) SetupTest() {
	s.env = newTestEnv(s.T())
	s.token, s.userID = s.env.register(s.T(), "owner@example.com")
	s.other, _ = s.env.register(s.T(), "other@example.com")
}

func TestTaskHandlerSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(TaskHandlerSuite))
}

func (s *TaskHandlerSuite) create(title string, extra ...gin.H) response.TaskResponse {
	payload := gin.H{"title": title}
	for _, fields := range extra {
		for key, value := range fields {
			payload[key] = value
		}
	}

	rr := s.env.do("POST", "/tasks", s.token, payload)
	Expect(rr.Code).To(Equal(http.StatusCreated), rr.Body.String())

	return decodeData[response.TaskResponse](s.T(), rr)
}

func (s *TaskHandlerSuite) TestCreate() {
	task := s.create("Buy milk", gin.H{"description": "two liters"})

	Expect(task.ID).ToNot(BeEmpty())
	Expect(task.Status).To(Equal("TODO"))
	Expect(task.UserID).To(Equal(s.userID))
	Expect(*task.Description).To(Equal("two liters"))
	Expect(task.CreatedAt).To(Equal(task.UpdatedAt))
}

func (s *TaskHandlerSuite) TestCreateAcceptsLowercaseStatus() {
	task := s.create("Write report", gin.H{"status": "in_progress"})

	Expect(task.Status).To(Equal("IN_PROGRESS"))
}

func (s *TaskHandlerSuite) TestCreateValidation() {
	cases := map[string]gin.H{
		"missing title":  {"description": "x"},
		"blank title":    {"title": "   "},
		"long title":     {"title": strings.Repeat("x", 201)},
		"unknown status": {"title": "ok", "status": "ARCHIVED"},
	}

	for name, payload := range cases {
		rr := s.env.do("POST", "/tasks", s.token, payload)

		Expect(rr.Code).To(Equal(http.StatusBadRequest), name)
		Expect(decodeError(s.T(), rr).Code).To(Equal("VALIDATION_ERROR"), name)
	}
}

func (s *TaskHandlerSuite) TestCreateRequiresAuthentication() {
	rr := s.env.do("POST", "/tasks", "", gin.H{"title": "Buy milk"})

	Expect(rr.Code).To(Equal(http.StatusUnauthorized))
}

func (s *TaskHandlerSuite) TestGet() {
	task := s.create("Buy milk")

	rr := s.env.do("GET", "/tasks/"+task.ID, s.token, nil)
	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(decodeData[response.TaskResponse](s.T(), rr).Title).To(Equal("Buy milk"))

	rr = s.env.do("GET", "/tasks/"+task.ID, s.other, nil)
	Expect(rr.Code).To(Equal(http.StatusForbidden))

	body := decodeError(s.T(), rr)
	Expect(body.Code).To(Equal("FORBIDDEN"))
	Expect(body.Errors[0].Message).To(Equal("Unauthorized: You can only view your own tasks"))

	rr = s.env.do("GET", "/tasks/does-not-exist", s.token, nil)
	Expect(rr.Code).To(Equal(http.StatusNotFound))
	Expect(decodeError(s.T(), rr).Errors[0].Message).To(Equal("Task not found"))
}

func (s *TaskHandlerSuite) TestListPagination() {
	for i := 0; i < 3; i++ {
		s.create(fmt.Sprintf("Task %d", i))
	}

	rr := s.env.do("GET", "/tasks?limit=2", s.token, nil)
	Expect(rr.Code).To(Equal(http.StatusOK))

	page := decodeData[response.TaskConnectionResponse](s.T(), rr)
	Expect(page.Tasks).To(HaveLen(2))
	Expect(page.TotalCount).To(Equal(3))
	Expect(page.HasMore).To(BeTrue())

	rr = s.env.do("GET", "/tasks?limit=2&offset=2", s.token, nil)
	page = decodeData[response.TaskConnectionResponse](s.T(), rr)
	Expect(page.Tasks).To(HaveLen(1))
	Expect(page.HasMore).To(BeFalse())
}

func (s *TaskHandlerSuite) TestListOnlyOwnTasks() {
	s.create("Mine")

	rr := s.env.do("GET", "/tasks", s.other, nil)
	page := decodeData[response.TaskConnectionResponse](s.T(), rr)

	Expect(page.Tasks).To(BeEmpty())
	Expect(page.TotalCount).To(Equal(0))
	Expect(rr.Body.String()).To(ContainSubstring(`"tasks":[]`))
}

func (s *TaskHandlerSuite) TestListStatusFilter() {
	s.create("Todo")
	s.create("Done", gin.H{"status": "DONE"})

	rr := s.env.do("GET", "/tasks?status=done", s.token, nil)
	page := decodeData[response.TaskConnectionResponse](s.T(), rr)

	Expect(page.Tasks).To(HaveLen(1))
	Expect(page.Tasks[0].Title).To(Equal("Done"))

	rr = s.env.do("GET", "/tasks?status=archived", s.token, nil)
	Expect(rr.Code).To(Equal(http.StatusBadRequest))

	rr = s.env.do("GET", "/tasks?limit=abc", s.token, nil)
	Expect(rr.Code).To(Equal(http.StatusBadRequest))
}

func (s *TaskHandlerSuite) TestUpdate() {
	task := s.create("Buy milk", gin.H{"description": "two liters"})

	rr := s.env.do("PATCH", "/tasks/"+task.ID, s.token, gin.H{"status": "DONE"})
	Expect(rr.Code).To(Equal(http.StatusOK))

	updated := decodeData[response.TaskResponse](s.T(), rr)
	Expect(updated.Status).To(Equal("DONE"))
	Expect(updated.Title).To(Equal("Buy milk"))
	Expect(*updated.Description).To(Equal("two liters"))
	Expect(updated.UpdatedAt.After(task.UpdatedAt)).To(BeTrue())

	rr = s.env.do("PATCH", "/tasks/"+task.ID, s.token, `{"description": null}`)
	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(decodeData[response.TaskResponse](s.T(), rr).Description).To(BeNil())
}

func (s *TaskHandlerSuite) TestUpdateErrors() {
	task := s.create("Buy milk")

	rr := s.env.do("PATCH", "/tasks/"+task.ID, s.token, gin.H{"title": "  "})
	Expect(rr.Code).To(Equal(http.StatusBadRequest))
	Expect(decodeError(s.T(), rr).Errors[0].Message).To(Equal("Title cannot be empty"))

	rr = s.env.do("PATCH", "/tasks/"+task.ID, s.other, gin.H{"title": "Mine now"})
	Expect(rr.Code).To(Equal(http.StatusForbidden))

	rr = s.env.do("PATCH", "/tasks/missing", s.token, gin.H{"title": "x"})
	Expect(rr.Code).To(Equal(http.StatusNotFound))
}

func (s *TaskHandlerSuite) TestDelete() {
	task := s.create("Buy milk")

	rr := s.env.do("DELETE", "/tasks/"+task.ID, s.other, nil)
	Expect(rr.Code).To(Equal(http.StatusForbidden))

	rr = s.env.do("DELETE", "/tasks/"+task.ID, s.token, nil)
	Expect(rr.Code).To(Equal(http.StatusNoContent))

	rr = s.env.do("GET", "/tasks/"+task.ID, s.token, nil)
	Expect(rr.Code).To(Equal(http.StatusNotFound))
}

func TestPageFromQuery(t *testing.T) {
	limit := func(n int) *int { return &n }

	cases := []struct {
		query  request.ListTasksQuery
		limit  int
		offset int
	}{
		{request.ListTasksQuery{}, DefaultPageSize, 0},
		{request.ListTasksQuery{Limit: limit(0)}, 1, 0},
		{request.ListTasksQuery{Limit: limit(-5)}, 1, 0},
		{request.ListTasksQuery{Limit: limit(500)}, MaxPageSize, 0},
		{request.ListTasksQuery{Limit: limit(10), Offset: -3}, 10, 0},
		{request.ListTasksQuery{Limit: limit(10), Offset: 30}, 10, 30},
	}

	for _, tc := range cases {
		page := pageFromQuery(tc.query)

		assert.Equal(t, tc.limit, page.Limit)
		assert.Equal(t, tc.offset, page.Offset)
	}
}
