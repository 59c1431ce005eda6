package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/taskhub/taskmanager-api/internal/core/domain"
	"github.com/taskhub/taskmanager-api/internal/core/ports"
)

type TaskHandler struct {
	taskService ports.TaskService
}

func NewTaskHandler(taskService ports.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// Create adds a task for the caller.
//
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTaskRequest  true  "Task details"
// @Success      201   {object}  domain.Task
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req createTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	start, err := parseDate("startDate", req.StartDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	end, err := parseDate("endDate", req.EndDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.Create(c.Request().Context(), p, ports.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   start,
		EndDate:     end,
		Status:      domain.TaskStatus(req.Status),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, task)
}

// List returns all of the caller's tasks.
//
// @Summary      List tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Task
// @Failure      401  {object}  ErrorResponse
// @Router       /tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	tasks, err := h.taskService.List(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tasks)
}

// Get returns one of the caller's tasks.
//
// @Summary      Get a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  domain.Task
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /tasks/{id} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	task, err := h.taskService.Get(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

// Update changes the supplied fields of one of the caller's tasks.
//
// @Summary      Update a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Task ID"
// @Param        body  body      updateTaskRequest  true  "Fields to change"
// @Success      200   {object}  domain.Task
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /tasks/{id} [patch]
func (h *TaskHandler) Update(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req updateTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	patch, err := req.toPatch()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.Update(c.Request().Context(), p, c.Param("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

// Delete removes one of the caller's tasks.
//
// @Summary      Delete a task
// @Tags         tasks
// @Security     BearerAuth
// @Param        id   path  string  true  "Task ID"
// @Success      204
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	if err := h.taskService.Delete(c.Request().Context(), p, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ByDateRange returns the caller's tasks that fall entirely inside a range.
//
// @Summary      Tasks in a date range
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        startDate  query     string  true  "Range start (ISO 8601)"
// @Param        endDate    query     string  true  "Range end (ISO 8601)"
// @Success      200        {array}   domain.Task
// @Failure      400        {object}  ErrorResponse
// @Router       /tasks/date-range [get]
func (h *TaskHandler) ByDateRange(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	start, err := parseDate("startDate", c.QueryParam("startDate"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	end, err := parseDate("endDate", c.QueryParam("endDate"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	tasks, err := h.taskService.ByDateRange(c.Request().Context(), p, start, end)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tasks)
}

// ByStatus returns the caller's tasks in one status.
//
// @Summary      Tasks by status
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        status  path      string  true  "upcoming, started or completed"
// @Success      200     {array}   domain.Task
// @Failure      400     {object}  ErrorResponse
// @Router       /tasks/status/{status} [get]
func (h *TaskHandler) ByStatus(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	tasks, err := h.taskService.ByStatus(c.Request().Context(), p, c.Param("status"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tasks)
}

// Recent returns the caller's most recently updated tasks.
//
// @Summary      Recent tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Maximum number of tasks (default 5, max 50)"
// @Success      200    {array}   domain.Task
// @Failure      400    {object}  ErrorResponse
// @Router       /tasks/recent [get]
func (h *TaskHandler) Recent(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be an integer")
		}
	}

	tasks, err := h.taskService.Recent(c.Request().Context(), p, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tasks)
}

// Stats aggregates the caller's tasks.
//
// @Summary      Task statistics
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.TaskStatistics
// @Failure      401  {object}  ErrorResponse
// @Router       /tasks/stats [get]
func (h *TaskHandler) Stats(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	stats, err := h.taskService.Statistics(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func (r updateTaskRequest) toPatch() (domain.TaskPatch, error) {
	start, err := parseOptionalDate("startDate", r.StartDate)
	if err != nil {
		return domain.TaskPatch{}, err
	}
	end, err := parseOptionalDate("endDate", r.EndDate)
	if err != nil {
		return domain.TaskPatch{}, err
	}

	patch := domain.TaskPatch{
		Title:       r.Title,
		Description: r.Description,
		StartDate:   start,
		EndDate:     end,
	}
	if r.Status != nil {
		s := domain.TaskStatus(*r.Status)
		patch.Status = &s
	}
	return patch, nil
}
