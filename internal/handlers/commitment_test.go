package handlers

import (
	"fmt"
	"net/http"

	"github.com/projectplanning/planning-cloud-api/internal/dto"
	"github.com/projectplanning/planning-cloud-api/internal/models"
	"github.com/projectplanning/planning-cloud-api/internal/testutil"
)

func (suite *HandlerTestSuite) createCommitment(taskID, ongID uint64) dto.CommitmentDTO {
	w, env := suite.do(http.MethodPost, "/commitments", map[string]interface{}{
		"taskId":      taskID,
		"ongId":       ongID,
		"description": "Aportamos voluntarios",
	})
	suite.Require().Equal(http.StatusCreated, w.Code)

	var commitment dto.CommitmentDTO
	env.decode(suite.T(), &commitment)
	return commitment
}

func (suite *HandlerTestSuite) TestCreateCommitment() {
	taskType := testutil.CreateTaskType(suite.T(), suite.db, "Ejecución")
	task := testutil.CreateTask(suite.T(), suite.db, "Construir aula", taskType.ID)

	commitment := suite.createCommitment(task.ID, 5)
	suite.Equal(task.ID, commitment.TaskID)
	suite.Equal(uint64(5), commitment.OngID)
	suite.Equal(models.CommitmentStatusPending, commitment.Status)

	w, env := suite.do(http.MethodPost, "/commitments", map[string]interface{}{"taskId": 999, "ongId": 5})
	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal("task not found", env.Message)

	w, env = suite.do(http.MethodPost, "/commitments", map[string]interface{}{"taskId": task.ID})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("ongId is required", env.Message)
}

// Two ONGs propose for the same task; once the first is assigned the second
// cannot be.
func (suite *HandlerTestSuite) TestAssignCommitment_SecondApprovalConflicts() {
	taskType := testutil.CreateTaskType(suite.T(), suite.db, "Ejecución")
	task := testutil.CreateTask(suite.T(), suite.db, "Construir aula", taskType.ID, testutil.WithProject(1))

	first := suite.createCommitment(task.ID, 2)
	second := suite.createCommitment(task.ID, 3)

	w, env := suite.do(http.MethodPost, "/commitments/assign", map[string]interface{}{
		"commitmentId": first.ID,
		"taskId":       task.ID,
	})
	suite.Equal(http.StatusOK, w.Code)
	var assigned dto.CommitmentDTO
	env.decode(suite.T(), &assigned)
	suite.Equal(models.CommitmentStatusApproved, assigned.Status)

	w, env = suite.do(http.MethodPost, "/commitments/assign", map[string]interface{}{
		"commitmentId": second.ID,
		"taskId":       task.ID,
	})
	suite.Equal(http.StatusConflict, w.Code)
	suite.Require().NotNil(env.Error)
	suite.Equal("CONFLICT", env.Error.Code)

	// The task no longer shows up as unassigned.
	w, env = suite.do(http.MethodGet, "/tasks/project/1/unassigned", nil)
	suite.Equal(http.StatusOK, w.Code)
	var tasks []dto.TaskDTO
	env.decode(suite.T(), &tasks)
	suite.Empty(tasks)
}

func (suite *HandlerTestSuite) TestAssignCommitment_Errors() {
	taskType := testutil.CreateTaskType(suite.T(), suite.db, "Ejecución")
	task := testutil.CreateTask(suite.T(), suite.db, "Construir aula", taskType.ID)
	other := testutil.CreateTask(suite.T(), suite.db, "Otra tarea", taskType.ID)
	commitment := suite.createCommitment(task.ID, 2)

	w, _ := suite.do(http.MethodPost, "/commitments/assign", map[string]interface{}{
		"commitmentId": 999,
		"taskId":       task.ID,
	})
	suite.Equal(http.StatusNotFound, w.Code)

	w, env := suite.do(http.MethodPost, "/commitments/assign", map[string]interface{}{
		"commitmentId": commitment.ID,
		"taskId":       other.ID,
	})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("commitment does not belong to the given task", env.Message)

	w, _ = suite.do(http.MethodPost, "/commitments/assign", map[string]interface{}{"taskId": task.ID})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestMarkCommitmentDone() {
	taskType := testutil.CreateTaskType(suite.T(), suite.db, "Ejecución")
	task := testutil.CreateTask(suite.T(), suite.db, "Construir aula", taskType.ID,
		testutil.WithStatus(models.TaskStatusInProgress))
	commitment := testutil.CreateCommitment(suite.T(), suite.db, task.ID, 2, models.CommitmentStatusApproved)

	w, env := suite.do(http.MethodPost, "/commitments/done", map[string]interface{}{"commitmentId": commitment.ID})
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("Commitment and task marked as done", env.Message)

	var result dto.CommitmentDoneDTO
	env.decode(suite.T(), &result)
	suite.Equal(models.CommitmentStatusDone, result.Commitment.Status)
	suite.Equal(models.TaskStatusDone, result.Task.Status)
	suite.Equal(100, result.Task.Progress)
}

func (suite *HandlerTestSuite) TestRejectCommitment() {
	taskType := testutil.CreateTaskType(suite.T(), suite.db, "Ejecución")
	task := testutil.CreateTask(suite.T(), suite.db, "Construir aula", taskType.ID)
	pending := testutil.CreateCommitment(suite.T(), suite.db, task.ID, 2, models.CommitmentStatusPending)
	done := testutil.CreateCommitment(suite.T(), suite.db, task.ID, 3, models.CommitmentStatusDone)

	w, env := suite.do(http.MethodPost, "/commitments/reject", map[string]interface{}{"commitmentId": pending.ID})
	suite.Equal(http.StatusOK, w.Code)
	var rejected dto.CommitmentDTO
	env.decode(suite.T(), &rejected)
	suite.Equal(models.CommitmentStatusRejected, rejected.Status)

	w, _ = suite.do(http.MethodPost, "/commitments/reject", map[string]interface{}{"commitmentId": done.ID})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestListCommitments() {
	taskType := testutil.CreateTaskType(suite.T(), suite.db, "Ejecución")
	first := testutil.CreateTask(suite.T(), suite.db, "Construir aula", taskType.ID, testutil.WithProject(4))
	second := testutil.CreateTask(suite.T(), suite.db, "Pintar aula", taskType.ID, testutil.WithProject(5))
	testutil.CreateCommitment(suite.T(), suite.db, first.ID, 2, models.CommitmentStatusPending)
	testutil.CreateCommitment(suite.T(), suite.db, first.ID, 3, models.CommitmentStatusRejected)
	testutil.CreateCommitment(suite.T(), suite.db, second.ID, 2, models.CommitmentStatusApproved)

	var commitments []dto.CommitmentDTO

	_, env := suite.do(http.MethodGet, "/commitments?ongId=2", nil)
	env.decode(suite.T(), &commitments)
	suite.Len(commitments, 2)

	_, env = suite.do(http.MethodGet, fmt.Sprintf("/commitments/task/%d", first.ID), nil)
	env.decode(suite.T(), &commitments)
	suite.Len(commitments, 2)

	_, env = suite.do(http.MethodGet, "/commitments/project/5", nil)
	env.decode(suite.T(), &commitments)
	suite.Require().Len(commitments, 1)
	suite.Equal(second.ID, commitments[0].TaskID)

	w, env := suite.do(http.MethodGet, "/commitments/project/99", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`[]`, string(env.Data))

	w, _ = suite.do(http.MethodGet, "/commitments?taskId=abc", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}
