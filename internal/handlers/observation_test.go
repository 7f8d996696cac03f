package handlers

import (
	"fmt"
	"net/http"

	"github.com/projectplanning/planning-cloud-api/internal/dto"
	"github.com/projectplanning/planning-cloud-api/internal/models"
	"github.com/projectplanning/planning-cloud-api/internal/testutil"
)

// A coordinator flags a problem on a task in progress and the ONG resolves it.
func (suite *HandlerTestSuite) TestObservationLifecycle() {
	taskType := testutil.CreateTaskType(suite.T(), suite.db, "Ejecución")
	task := testutil.CreateTask(suite.T(), suite.db, "Nivelación del terreno", taskType.ID,
		testutil.WithStatus(models.TaskStatusInProgress))

	w, env := suite.do(http.MethodPost, fmt.Sprintf("/task-observations/task/%d", task.ID), map[string]interface{}{
		"observations": "El terreno sigue desnivelado en el sector norte",
		"userId":       11,
		"bonitaCaseId": 4021,
	})
	suite.Require().Equal(http.StatusCreated, w.Code)
	suite.Equal("Observation added successfully", env.Message)

	var created dto.ObservationDTO
	env.decode(suite.T(), &created)
	suite.False(created.IsResolved)
	suite.Nil(created.Resolution)
	suite.Require().NotNil(created.BonitaCaseID)
	suite.Equal(int64(4021), *created.BonitaCaseID)

	w, env = suite.do(http.MethodPut, fmt.Sprintf("/task-observations/%d/resolve", created.ID), map[string]interface{}{
		"resolution": "Se repasó con motoniveladora",
		"userId":     12,
	})
	suite.Require().Equal(http.StatusOK, w.Code)

	var resolved dto.ObservationDTO
	env.decode(suite.T(), &resolved)
	suite.True(resolved.IsResolved)
	suite.Require().NotNil(resolved.ResolvedAt)
	suite.Require().NotNil(resolved.ResolvedBy)
	suite.Equal(uint64(12), *resolved.ResolvedBy)

	w, _ = suite.do(http.MethodPut, fmt.Sprintf("/task-observations/%d/resolve", created.ID), map[string]interface{}{
		"resolution": "Otra vez",
	})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestCreateObservation_RequiresTaskInProgress() {
	taskType := testutil.CreateTaskType(suite.T(), suite.db, "Ejecución")
	task := testutil.CreateTask(suite.T(), suite.db, "Nivelación del terreno", taskType.ID)

	w, env := suite.do(http.MethodPost, fmt.Sprintf("/task-observations/task/%d", task.ID), map[string]interface{}{
		"observations": "Todavía no empezó",
	})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("observations can only be added to tasks in progress", env.Message)

	w, _ = suite.do(http.MethodPost, "/task-observations/task/999", map[string]interface{}{
		"observations": "Tarea inexistente",
	})
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestListTaskObservations() {
	taskType := testutil.CreateTaskType(suite.T(), suite.db, "Ejecución")
	task := testutil.CreateTask(suite.T(), suite.db, "Nivelación del terreno", taskType.ID,
		testutil.WithStatus(models.TaskStatusInProgress))
	testutil.CreateObservation(suite.T(), suite.db, task.ID, "Abierta", nil)
	testutil.CreateObservation(suite.T(), suite.db, task.ID, "Cerrada", testutil.Ptr("Listo"))

	w, env := suite.do(http.MethodGet, fmt.Sprintf("/task-observations/task/%d", task.ID), nil)
	suite.Equal(http.StatusOK, w.Code)
	var observations []dto.ObservationDTO
	env.decode(suite.T(), &observations)
	suite.Len(observations, 2)
	suite.Require().NotNil(env.Pagination)
	suite.Equal(int64(2), env.Pagination.Total)

	_, env = suite.do(http.MethodGet, fmt.Sprintf("/task-observations/task/%d?resolved=false", task.ID), nil)
	env.decode(suite.T(), &observations)
	suite.Require().Len(observations, 1)
	suite.Equal("Abierta", observations[0].Observations)

	w, _ = suite.do(http.MethodGet, fmt.Sprintf("/task-observations/task/%d?resolved=maybe", task.ID), nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestCreateObservation_RejectedOnceTaskIsDone() {
	taskType := testutil.CreateTaskType(suite.T(), suite.db, "Ejecución")
	task := testutil.CreateTask(suite.T(), suite.db, "Nivelación", taskType.ID,
		testutil.WithStatus(models.TaskStatusInProgress))
	path := fmt.Sprintf("/task-observations/task/%d", task.ID)

	w, _ := suite.do(http.MethodPost, path, map[string]string{"observations": "delay"})
	suite.Equal(http.StatusCreated, w.Code)

	w, _ = suite.do(http.MethodPatch, fmt.Sprintf("/tasks/%d/status", task.ID), map[string]string{"status": "done"})
	suite.Require().Equal(http.StatusOK, w.Code)

	w, _ = suite.do(http.MethodPost, path, map[string]string{"observations": "another delay"})
	suite.Equal(http.StatusBadRequest, w.Code)
}
