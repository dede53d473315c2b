package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ZIXNRIXZ/Collabhub/internal/modules/model"
	"github.com/ZIXNRIXZ/Collabhub/internal/modules/repo"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskService interface {
	List(ctx context.Context, userID uuid.UUID) ([]model.Task, error)
	Create(ctx context.Context, in CreateTaskInput) (*model.Task, error)
	Update(ctx context.Context, in UpdateTaskInput) (*model.Task, error)
	UpdateStatus(ctx context.Context, in UpdateTaskStatusInput) (*model.Task, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type taskService struct {
	r repo.TaskRepo
}

func NewTaskService(r repo.TaskRepo) TaskService {
	return &taskService{r: r}
}

type CreateTaskInput struct {
	UserID      uuid.UUID          `json:"-" validate:"required"`
	Title       string             `json:"title" validate:"required,notblank,max=200"`
	Description *string            `json:"description" validate:"omitempty,max=5000"`
	Status      model.TaskStatus   `json:"status" validate:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED ARCHIVED"`
	Priority    model.TaskPriority `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	DueDate     *time.Time         `json:"due_date"`
}

type UpdateTaskInput struct {
	UserID      uuid.UUID           `json:"-" validate:"required"`
	ID          uuid.UUID           `json:"-" validate:"required"`
	Title       *string             `json:"title" validate:"omitempty,notblank,max=200"`
	Description *string             `json:"description" validate:"omitempty,max=5000"`
	Status      *model.TaskStatus   `json:"status" validate:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED ARCHIVED"`
	Priority    *model.TaskPriority `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	DueDate     *time.Time          `json:"due_date"`
}

type UpdateTaskStatusInput struct {
	UserID uuid.UUID        `json:"-" validate:"required"`
	ID     uuid.UUID        `json:"-" validate:"required"`
	Status model.TaskStatus `json:"status" validate:"required,oneof=PENDING IN_PROGRESS COMPLETED ARCHIVED"`
}

func (s *taskService) List(ctx context.Context, userID uuid.UUID) ([]model.Task, error) {
	return s.r.ListByUser(ctx, userID)
}

func (s *taskService) Create(ctx context.Context, in CreateTaskInput) (*model.Task, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	t := &model.Task{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		UserID:      in.UserID,
	}
	if t.Status == "" {
		t.Status = model.TaskStatusPending
	}
	if t.Priority == "" {
		t.Priority = model.TaskPriorityMedium
	}

	if err := s.r.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *taskService) Update(ctx context.Context, in UpdateTaskInput) (*model.Task, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if in.Title != nil {
		fields["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Status != nil {
		fields["status"] = *in.Status
	}
	if in.Priority != nil {
		fields["priority"] = *in.Priority
	}
	if in.DueDate != nil {
		fields["due_date"] = *in.DueDate
	}

	t, err := s.r.Update(ctx, in.UserID, in.ID, fields)
	return t, mapTaskErr(err)
}

func (s *taskService) UpdateStatus(ctx context.Context, in UpdateTaskStatusInput) (*model.Task, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	t, err := s.r.UpdateStatus(ctx, in.UserID, in.ID, in.Status)
	return t, mapTaskErr(err)
}

func (s *taskService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return mapTaskErr(s.r.Delete(ctx, userID, id))
}

func mapTaskErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrTaskNotFound
	}
	return err
}
