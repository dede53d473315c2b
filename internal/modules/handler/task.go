package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ZIXNRIXZ/Collabhub/internal/modules/model"
	"github.com/ZIXNRIXZ/Collabhub/internal/modules/serializer"
	"github.com/ZIXNRIXZ/Collabhub/internal/modules/service"
)

type TaskHandler struct {
	svc service.TaskService
}

func NewTaskHandler(s service.TaskService) *TaskHandler {
	return &TaskHandler{svc: s}
}

// GetTasks godoc
//
//	@Summary		List tasks
//	@Description	All tasks of the current user, newest first
//	@Tags			task
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=[]model.Task}
//	@Router			/task [get]
func (h *TaskHandler) GetTasks(c *gin.Context) {
	u, ok := mustUser(c)
	if !ok {
		return
	}
	tasks, err := h.svc.List(c.Request.Context(), u.ID)
	if err != nil {
		respondErr(c, err)
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	c.JSON(http.StatusOK, serializer.Response{Data: tasks})
}

type CreateTaskReq struct {
	Title       string             `json:"title" example:"Write release notes"`
	Description *string            `json:"description" example:"Cover the relay changes"`
	Status      model.TaskStatus   `json:"status" enums:"PENDING,IN_PROGRESS,COMPLETED,ARCHIVED" example:"PENDING"`
	Priority    model.TaskPriority `json:"priority" enums:"LOW,MEDIUM,HIGH" example:"MEDIUM"`
	DueDate     *time.Time         `json:"due_date"`
}

// CreateTask godoc
//
//	@Summary		Create task
//	@Description	Status defaults to PENDING and priority to MEDIUM. A blank title is rejected.
//	@Tags			task
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	handler.CreateTaskReq	true	"Task"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.Task}
//	@Failure		400	{object}	serializer.Response
//	@Router			/task [post]
func (h *TaskHandler) CreateTask(c *gin.Context) {
	u, ok := mustUser(c)
	if !ok {
		return
	}
	req := CreateTaskReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	task, err := h.svc.Create(c.Request.Context(), service.CreateTaskInput{
		UserID:      u.ID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: task})
}

type UpdateTaskReq struct {
	Title       *string             `json:"title"`
	Description *string             `json:"description"`
	Status      *model.TaskStatus   `json:"status" enums:"PENDING,IN_PROGRESS,COMPLETED,ARCHIVED"`
	Priority    *model.TaskPriority `json:"priority" enums:"LOW,MEDIUM,HIGH"`
	DueDate     *time.Time          `json:"due_date"`
}

// UpdateTask godoc
//
//	@Summary	Update task
//	@Tags		task
//	@Accept		json
//	@Produce	json
//	@Param		task_id	path	string					true	"Task ID"	format(uuid)
//	@Param		payload	body	handler.UpdateTaskReq	true	"Fields to change"
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response{data=model.Task}
//	@Failure	400	{object}	serializer.Response
//	@Failure	404	{object}	serializer.Response
//	@Router		/task/{task_id} [put]
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	u, ok := mustUser(c)
	if !ok {
		return
	}
	taskID, err := uuid.Parse(c.Param("task_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid task_id", err))
		return
	}
	req := UpdateTaskReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	task, err := h.svc.Update(c.Request.Context(), service.UpdateTaskInput{
		UserID:      u.ID,
		ID:          taskID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: task})
}

// DeleteTask godoc
//
//	@Summary	Delete task
//	@Tags		task
//	@Produce	json
//	@Param		task_id	path	string	true	"Task ID"	format(uuid)
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response{data=map[string]string}
//	@Failure	404	{object}	serializer.Response
//	@Router		/task/{task_id} [delete]
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	u, ok := mustUser(c)
	if !ok {
		return
	}
	taskID, err := uuid.Parse(c.Param("task_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid task_id", err))
		return
	}

	if err := h.svc.Delete(c.Request.Context(), u.ID, taskID); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: gin.H{"id": taskID.String()}})
}

type UpdateTaskStatusReq struct {
	Status model.TaskStatus `json:"status" binding:"required,oneof=PENDING IN_PROGRESS COMPLETED ARCHIVED" enums:"PENDING,IN_PROGRESS,COMPLETED,ARCHIVED"`
}

// UpdateTaskStatus godoc
//
//	@Summary		Move task
//	@Description	Persist the column a task was dropped into
//	@Tags			task
//	@Accept			json
//	@Produce		json
//	@Param			task_id	path	string						true	"Task ID"	format(uuid)
//	@Param			body	body	handler.UpdateTaskStatusReq	true	"Status update"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Task}
//	@Failure		400	{object}	serializer.Response
//	@Failure		404	{object}	serializer.Response
//	@Router			/task/{task_id}/status [patch]
func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	u, ok := mustUser(c)
	if !ok {
		return
	}
	req := UpdateTaskStatusReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid status value, must be one of: PENDING, IN_PROGRESS, COMPLETED, ARCHIVED", err))
		return
	}
	taskID, err := uuid.Parse(c.Param("task_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid task_id", err))
		return
	}

	task, err := h.svc.UpdateStatus(c.Request.Context(), service.UpdateTaskStatusInput{
		UserID: u.ID,
		ID:     taskID,
		Status: req.Status,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: task})
}
