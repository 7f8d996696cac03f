package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/projectplanning/planning-cloud-api/internal/dto"
	"github.com/projectplanning/planning-cloud-api/internal/models"
	"github.com/projectplanning/planning-cloud-api/internal/testutil"
)

func (suite *HandlerTestSuite) TestCreateTask_Success() {
	taskType := testutil.CreateTaskType(suite.T(), suite.db, "Ejecución")

	w, env := suite.do(http.MethodPost, "/tasks", map[string]interface{}{
		"title":          "Instalar bomba de agua",
		"description":    "Bomba para el tanque comunitario",
		"dueDate":        "2030-01-15",
		"estimatedHours": 6,
		"projectId":      1,
		"taskTypeId":     taskType.ID,
	})

	suite.Equal(http.StatusCreated, w.Code)
	suite.True(env.Success)
	suite.Equal("Task created successfully", env.Message)

	var task dto.TaskDTO
	env.decode(suite.T(), &task)
	suite.NotZero(task.ID)
	suite.Equal("Instalar bomba de agua", task.Title)
	suite.Equal(models.TaskStatusTodo, task.Status)
	suite.False(task.IsCoverageRequest)
	suite.Require().NotNil(task.DueDate)
	suite.Equal("2030-01-15", task.DueDate.UTC().Format("2006-01-02"))
	suite.Require().NotNil(task.ProjectID)
	suite.Equal(uint64(1), *task.ProjectID)
}

func (suite *HandlerTestSuite) TestCreateTask_ValidationError() {
	taskType := testutil.CreateTaskType(suite.T(), suite.db, "Ejecución")

	w, env := suite.do(http.MethodPost, "/tasks", map[string]interface{}{
		"title":      "ab",
		"taskTypeId": taskType.ID,
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.False(env.Success)
	suite.Require().NotNil(env.Error)
	suite.Equal("INVALID_INPUT", env.Error.Code)
	suite.Contains(env.Message, "title must be between")
}

func (suite *HandlerTestSuite) TestCreateTask_MalformedBody() {
	w, env := suite.do(http.MethodPost, "/tasks", `{"title":`)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("Invalid request body", env.Message)
}

func (suite *HandlerTestSuite) TestCreateTasksBulk() {
	taskType := testutil.CreateTaskType(suite.T(), suite.db, "Planificación")

	w, env := suite.do(http.MethodPost, "/tasks/bulk", map[string]interface{}{
		"tasks": []map[string]interface{}{
			{"title": "Relevar terreno", "taskTypeId": taskType.ID, "projectId": 3},
			{"title": "Comprar materiales", "taskTypeId": taskType.ID, "projectId": 3},
		},
	})

	suite.Equal(http.StatusCreated, w.Code)
	suite.Equal("2 tasks created successfully", env.Message)

	var tasks []dto.TaskDTO
	env.decode(suite.T(), &tasks)
	suite.Require().Len(tasks, 2)
	for _, task := range tasks {
		suite.True(task.IsCoverageRequest)
	}
}

func (suite *HandlerTestSuite) TestCreateTasksBulk_AllOrNothing() {
	taskType := testutil.CreateTaskType(suite.T(), suite.db, "Planificación")

	w, env := suite.do(http.MethodPost, "/tasks/bulk", map[string]interface{}{
		"tasks": []map[string]interface{}{
			{"title": "Relevar terreno", "taskTypeId": taskType.ID},
			{"title": "", "taskTypeId": taskType.ID},
		},
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(env.Message, "task 2:")

	var count int64
	suite.db.Model(&models.Task{}).Count(&count)
	suite.Zero(count)
}

func (suite *HandlerTestSuite) TestGetTask() {
	taskType := testutil.CreateTaskType(suite.T(), suite.db, "Ejecución")
	task := testutil.CreateTask(suite.T(), suite.db, "Nivelación del terreno", taskType.ID,
		testutil.WithStatus(models.TaskStatusInProgress))
	testutil.CreateCommitment(suite.T(), suite.db, task.ID, 2, models.CommitmentStatusApproved)
	testutil.CreateObservation(suite.T(), suite.db, task.ID, "Falta maquinaria", nil)

	w, env := suite.do(http.MethodGet, fmt.Sprintf("/tasks/%d", task.ID), nil)
	suite.Equal(http.StatusOK, w.Code)

	var got dto.TaskDTO
	env.decode(suite.T(), &got)
	suite.Equal(task.ID, got.ID)
	suite.Require().NotNil(got.TaskType)
	suite.Equal("Ejecución", got.TaskType.Title)
	suite.Len(got.Commitments, 1)
	suite.Len(got.Observations, 1)
}

func (suite *HandlerTestSuite) TestGetTask_Errors() {
	w, env := suite.do(http.MethodGet, "/tasks/999", nil)
	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal("task not found", env.Message)

	w, env = suite.do(http.MethodGet, "/tasks/abc", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("Invalid id", env.Message)
}

func (suite *HandlerTestSuite) TestListTasks_FiltersAndPagination() {
	taskType := testutil.CreateTaskType(suite.T(), suite.db, "Ejecución")
	for i := 0; i < 3; i++ {
		testutil.CreateTask(suite.T(), suite.db, fmt.Sprintf("Tarea %d", i), taskType.ID, testutil.WithProject(1))
	}
	testutil.CreateTask(suite.T(), suite.db, "Terminada", taskType.ID,
		testutil.WithProject(1), testutil.WithStatus(models.TaskStatusDone))
	testutil.CreateTask(suite.T(), suite.db, "Otro proyecto", taskType.ID, testutil.WithProject(2))

	w, env := suite.do(http.MethodGet, "/tasks?projectId=1&status=todo&page=1&limit=2", nil)
	suite.Equal(http.StatusOK, w.Code)

	var tasks []dto.TaskDTO
	env.decode(suite.T(), &tasks)
	suite.Len(tasks, 2)
	suite.Require().NotNil(env.Pagination)
	suite.Equal(int64(3), env.Pagination.Total)
	suite.Equal(2, env.Pagination.TotalPages)

	w, env = suite.do(http.MethodGet, "/tasks?status=blocked", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("Invalid status", env.Message)

	w, _ = suite.do(http.MethodGet, "/tasks?projectId=x", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestListUnassignedProjectTasks() {
	taskType := testutil.CreateTaskType(suite.T(), suite.db, "Ejecución")
	assigned := testutil.CreateTask(suite.T(), suite.db, "Con ONG", taskType.ID, testutil.WithProject(7))
	pending := testutil.CreateTask(suite.T(), suite.db, "Con propuesta", taskType.ID, testutil.WithProject(7))
	free := testutil.CreateTask(suite.T(), suite.db, "Libre", taskType.ID, testutil.WithProject(7))
	testutil.CreateCommitment(suite.T(), suite.db, assigned.ID, 1, models.CommitmentStatusApproved)
	testutil.CreateCommitment(suite.T(), suite.db, pending.ID, 1, models.CommitmentStatusPending)

	w, env := suite.do(http.MethodGet, "/tasks/project/7/unassigned", nil)
	suite.Equal(http.StatusOK, w.Code)

	var tasks []dto.TaskDTO
	env.decode(suite.T(), &tasks)
	ids := make([]uint64, 0, len(tasks))
	for _, task := range tasks {
		ids = append(ids, task.ID)
	}
	suite.ElementsMatch([]uint64{pending.ID, free.ID}, ids)
}

func (suite *HandlerTestSuite) TestUpdateTask() {
	taskType := testutil.CreateTaskType(suite.T(), suite.db, "Ejecución")
	task := testutil.CreateTask(suite.T(), suite.db, "Pintar aulas", taskType.ID,
		testutil.WithDueDate(time.Date(2030, 3, 1, 0, 0, 0, 0, time.UTC)))

	w, env := suite.do(http.MethodPut, fmt.Sprintf("/tasks/%d", task.ID), map[string]interface{}{
		"title":   "Pintar aulas y pasillo",
		"dueDate": nil,
	})
	suite.Equal(http.StatusOK, w.Code)

	var got dto.TaskDTO
	env.decode(suite.T(), &got)
	suite.Equal("Pintar aulas y pasillo", got.Title)
	suite.Nil(got.DueDate)
}

func (suite *HandlerTestSuite) TestUpdateTaskStatus() {
	taskType := testutil.CreateTaskType(suite.T(), suite.db, "Ejecución")
	task := testutil.CreateTask(suite.T(), suite.db, "Pintar aulas", taskType.ID)

	w, env := suite.do(http.MethodPatch, fmt.Sprintf("/tasks/%d/status", task.ID), map[string]string{"status": "in_progress"})
	suite.Equal(http.StatusOK, w.Code)

	var got dto.TaskDTO
	env.decode(suite.T(), &got)
	suite.Equal(models.TaskStatusInProgress, got.Status)

	w, _ = suite.do(http.MethodPatch, fmt.Sprintf("/tasks/%d/status", task.ID), map[string]string{"status": "paused"})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestDeleteTask() {
	taskType := testutil.CreateTaskType(suite.T(), suite.db, "Ejecución")
	task := testutil.CreateTask(suite.T(), suite.db, "Pintar aulas", taskType.ID)
	testutil.CreateCommitment(suite.T(), suite.db, task.ID, 4, models.CommitmentStatusPending)

	w, env := suite.do(http.MethodDelete, fmt.Sprintf("/tasks/%d", task.ID), nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("Task deleted successfully", env.Message)

	var commitments int64
	suite.db.Model(&models.Commitment{}).Where("task_id = ?", task.ID).Count(&commitments)
	suite.Zero(commitments)

	w, _ = suite.do(http.MethodDelete, fmt.Sprintf("/tasks/%d", task.ID), nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestDraftTasks_NotConfigured() {
	w, env := suite.do(http.MethodPost, "/tasks/draft", map[string]string{"text": "Necesitamos pintar la escuela"})

	suite.Equal(http.StatusServiceUnavailable, w.Code)
	suite.Require().NotNil(env.Error)
	suite.Equal("SERVICE_UNAVAILABLE", env.Error.Code)
}

func (suite *HandlerTestSuite) TestListTasks_RepeatedReadsMatch() {
	taskType := testutil.CreateTaskType(suite.T(), suite.db, "Ejecución")
	testutil.CreateTask(suite.T(), suite.db, "Uno", taskType.ID)
	testutil.CreateTask(suite.T(), suite.db, "Dos", taskType.ID, testutil.WithStatus(models.TaskStatusDone))

	first, _ := suite.do(http.MethodGet, "/tasks?status=todo", nil)
	second, _ := suite.do(http.MethodGet, "/tasks?status=todo", nil)

	suite.Equal(http.StatusOK, first.Code)
	suite.Equal(first.Body.String(), second.Body.String())
}
