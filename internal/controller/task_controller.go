package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"task-manager-be/internal/dto"
	"task-manager-be/internal/pkg/serverutils"
	"task-manager-be/internal/service"
)

type ITaskController interface {
	RegisterRoutes(r fiber.Router, protected fiber.Handler)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
	MultiMatch(ctx *fiber.Ctx) error
	FuzzySearch(ctx *fiber.Ctx) error
	Suggest(ctx *fiber.Ctx) error
}

type taskController struct {
	taskService   service.ITaskService
	searchService service.ISearchService
}

func NewTaskController(taskService service.ITaskService, searchService service.ISearchService) ITaskController {
	return &taskController{
		taskService:   taskService,
		searchService: searchService,
	}
}

func (c *taskController) RegisterRoutes(r fiber.Router, protected fiber.Handler) {
	h := r.Group("/task/v1")
	h.Use(protected)
	h.Get("search", c.Search)
	h.Post("multi-match", c.MultiMatch)
	h.Get("fuzzy", c.FuzzySearch)
	h.Get("suggest", c.Suggest)
	h.Get("", c.List)
	h.Post("", c.Create)
	h.Get(":id", c.Show)
	h.Put(":id", c.Update)
	h.Delete(":id", c.Delete)
}

func (c *taskController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateTaskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewAppError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.taskService.Create(ctx.Context(), sessionIDFrom(ctx), &req)
	if err != nil {
		return mapServiceError(err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Task created", res))
}

func (c *taskController) Show(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewAppError(fiber.StatusBadRequest, "invalid task id")
	}

	res, err := c.taskService.Show(ctx.Context(), id)
	if err != nil {
		return mapServiceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Task found", res))
}

func (c *taskController) Update(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewAppError(fiber.StatusBadRequest, "invalid task id")
	}

	var req dto.UpdateTaskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewAppError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.taskService.Update(ctx.Context(), sessionIDFrom(ctx), id, &req)
	if err != nil {
		return mapServiceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Task updated", res))
}

func (c *taskController) Delete(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewAppError(fiber.StatusBadRequest, "invalid task id")
	}

	if err := c.taskService.Delete(ctx.Context(), sessionIDFrom(ctx), id); err != nil {
		return mapServiceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Task deleted", nil))
}

func (c *taskController) List(ctx *fiber.Ctx) error {
	res, err := c.taskService.List(ctx.Context())
	if err != nil {
		return mapServiceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Tasks listed", res))
}

// Search runs the ranked query over the task list. Query params:
// q, fields (comma separated), min_score, highlights.
func (c *taskController) Search(ctx *fiber.Ctx) error {
	req := &dto.SearchTasksRequest{
		Query:      ctx.Query("q"),
		MinScore:   ctx.QueryFloat("min_score", 0),
		Highlights: ctx.QueryBool("highlights", false),
	}
	if fields := ctx.Query("fields"); fields != "" {
		req.Fields = strings.Split(fields, ",")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.searchService.Search(ctx.Context(), sessionIDFrom(ctx), req)
	if err != nil {
		return mapServiceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Search results", res))
}

func (c *taskController) MultiMatch(ctx *fiber.Ctx) error {
	var req dto.MultiMatchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.NewAppError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.searchService.MultiMatch(ctx.Context(), sessionIDFrom(ctx), &req)
	if err != nil {
		return mapServiceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Multi-match results", res))
}

func (c *taskController) FuzzySearch(ctx *fiber.Ctx) error {
	req := &dto.FuzzySearchRequest{
		Query:       ctx.Query("q"),
		MaxDistance: ctx.QueryInt("max_distance", 0),
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.searchService.FuzzySearch(ctx.Context(), sessionIDFrom(ctx), req)
	if err != nil {
		return mapServiceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Fuzzy matches", res))
}

func (c *taskController) Suggest(ctx *fiber.Ctx) error {
	req := &dto.SuggestRequest{
		Query: ctx.Query("q"),
		Max:   ctx.QueryInt("max", 0),
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.searchService.Suggest(ctx.Context(), sessionIDFrom(ctx), req)
	if err != nil {
		return mapServiceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Suggestions", res))
}
