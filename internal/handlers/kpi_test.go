package handlers

import (
	"net/http"

	"github.com/projectplanning/planning-cloud-api/internal/models"
	"github.com/projectplanning/planning-cloud-api/internal/services"
	"github.com/projectplanning/planning-cloud-api/internal/testutil"
)

func (suite *HandlerTestSuite) TestTotalTasks() {
	taskType := testutil.CreateTaskType(suite.T(), suite.db, "Ejecución")
	testutil.CreateTask(suite.T(), suite.db, "Uno", taskType.ID)
	testutil.CreateTask(suite.T(), suite.db, "Dos", taskType.ID, testutil.WithStatus(models.TaskStatusDone))
	testutil.CreateTask(suite.T(), suite.db, "Tres", taskType.ID, testutil.WithStatus(models.TaskStatusDone))

	w, env := suite.do(http.MethodGet, "/kpis/total-tasks", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"totalTasks":3}`, string(env.Data))

	_, env = suite.do(http.MethodGet, "/kpis/total-tasks-done", nil)
	suite.JSONEq(`{"totalTasks":2}`, string(env.Data))
}

func (suite *HandlerTestSuite) TestTotalTasks_PerDay() {
	taskType := testutil.CreateTaskType(suite.T(), suite.db, "Ejecución")
	testutil.CreateTask(suite.T(), suite.db, "Uno", taskType.ID, testutil.WithStatus(models.TaskStatusDone))
	testutil.CreateTask(suite.T(), suite.db, "Dos", taskType.ID, testutil.WithStatus(models.TaskStatusDone))

	w, env := suite.do(http.MethodGet, "/kpis/total-tasks-done?days=7", nil)
	suite.Equal(http.StatusOK, w.Code)

	var result services.TaskCountPerDay
	env.decode(suite.T(), &result)
	suite.Equal(int64(2), result.Total)
	suite.Equal(7, result.Period.Days)
	suite.Require().Len(result.PerDay, 1)
	suite.Equal(int64(2), result.PerDay[0].Total)

	w, _ = suite.do(http.MethodGet, "/kpis/total-tasks?days=0", nil)
	suite.Equal(http.StatusBadRequest, w.Code)

	w, env = suite.do(http.MethodGet, "/kpis/total-tasks?days=week", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("Invalid days", env.Message)
}
