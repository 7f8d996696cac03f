package handlers

import (
	"fmt"
	"net/http"

	"github.com/projectplanning/planning-cloud-api/internal/constants"
	"github.com/projectplanning/planning-cloud-api/internal/dto"
	"github.com/projectplanning/planning-cloud-api/internal/testutil"
)

func (suite *HandlerTestSuite) TestTaskTypeCRUD() {
	w, env := suite.do(http.MethodPost, "/task-types", map[string]string{"title": "Logística"})
	suite.Require().Equal(http.StatusCreated, w.Code)
	var created dto.TaskTypeDTO
	env.decode(suite.T(), &created)
	suite.Equal("Logística", created.Title)

	w, _ = suite.do(http.MethodPost, "/task-types", map[string]string{"title": "Logística"})
	suite.Equal(http.StatusConflict, w.Code)

	w, env = suite.do(http.MethodPut, fmt.Sprintf("/task-types/%d", created.ID), map[string]string{"title": "Logística y transporte"})
	suite.Equal(http.StatusOK, w.Code)
	var updated dto.TaskTypeDTO
	env.decode(suite.T(), &updated)
	suite.Equal("Logística y transporte", updated.Title)

	w, env = suite.do(http.MethodGet, fmt.Sprintf("/task-types/%d", created.ID), nil)
	suite.Equal(http.StatusOK, w.Code)

	w, _ = suite.do(http.MethodDelete, fmt.Sprintf("/task-types/%d", created.ID), nil)
	suite.Equal(http.StatusOK, w.Code)

	w, _ = suite.do(http.MethodGet, fmt.Sprintf("/task-types/%d", created.ID), nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestDeleteTaskType_InUse() {
	taskType := testutil.CreateTaskType(suite.T(), suite.db, "Ejecución")
	testutil.CreateTask(suite.T(), suite.db, "Construir aula", taskType.ID)

	w, env := suite.do(http.MethodDelete, fmt.Sprintf("/task-types/%d", taskType.ID), nil)
	suite.Equal(http.StatusConflict, w.Code)
	suite.Equal("task type is referenced by existing tasks", env.Message)
}

func (suite *HandlerTestSuite) TestMigrateTaskTypes() {
	testutil.CreateTaskType(suite.T(), suite.db, constants.DefaultTaskTypes[0])

	w, env := suite.do(http.MethodPost, "/migration/migrate-task-types", nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	var result struct {
		Created   []string          `json:"created"`
		Existing  []string          `json:"existing"`
		TaskTypes []dto.TaskTypeDTO `json:"taskTypes"`
	}
	env.decode(suite.T(), &result)
	suite.Len(result.Created, len(constants.DefaultTaskTypes)-1)
	suite.Equal([]string{constants.DefaultTaskTypes[0]}, result.Existing)
	suite.Len(result.TaskTypes, len(constants.DefaultTaskTypes))

	_, env = suite.do(http.MethodGet, "/task-types", nil)
	var all []dto.TaskTypeDTO
	env.decode(suite.T(), &all)
	suite.Len(all, len(constants.DefaultTaskTypes))
}
