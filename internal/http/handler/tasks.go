package handler

import (
	"github.com/gofiber/fiber/v2"

	"taskapi/internal/model"
	"taskapi/internal/service"
)

// ListTasks godoc
// @Summary List tasks
// @Tags tasks
// @Produce json
// @Success 200 {object} map[string][]model.Task
// @Router /tasks [get]
func ListTasks(svc service.TaskService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tasks, err := svc.List(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"tasks": tasks})
	}
}

// AddTask godoc
// @Summary Add a task
// @Tags tasks
// @Accept json
// @Produce json
// @Param task body model.Task true "task"
// @Success 201 {object} map[string][]model.Task
// @Failure 400 {object} errorPayload
// @Router /tasks [post]
func AddTask(svc service.TaskService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var task model.Task
		if err := c.BodyParser(&task); err != nil {
			return invalidBody(c)
		}
		tasks, err := svc.Add(c.UserContext(), task)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"tasks": tasks})
	}
}

// GetTask godoc
// @Summary Get a task
// @Tags tasks
// @Produce json
// @Param id path int true "task id"
// @Success 200 {object} map[string]model.Task
// @Failure 404 {object} errorPayload
// @Router /tasks/{id} [get]
func GetTask(svc service.TaskService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		task, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"task": task})
	}
}

// ToggleTask godoc
// @Summary Flip a task's status
// @Tags tasks
// @Produce json
// @Param id path int true "task id"
// @Success 200 {object} map[string]model.Task
// @Failure 404 {object} errorPayload
// @Router /tasks/{id}/ [post]
func ToggleTask(svc service.TaskService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		task, err := svc.Toggle(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"task": task})
	}
}
