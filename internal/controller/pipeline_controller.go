package controller

import (
	"context"
	"errors"

	"agent-orchestrator/internal/dto"
	"agent-orchestrator/internal/pkg/logger"
	"agent-orchestrator/internal/pkg/serverutils"
	"agent-orchestrator/internal/service"
	"agent-orchestrator/internal/stream"
	"agent-orchestrator/pkg/pipeline"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type IPipelineController interface {
	RegisterRoutes(r fiber.Router)
	Run(ctx *fiber.Ctx) error
	ShowRun(ctx *fiber.Ctx) error
	Graph(ctx *fiber.Ctx) error
	Demo(ctx *fiber.Ctx) error
}

type pipelineController struct {
	service service.IPipelineService
	broker  *stream.Broker
	logger  logger.ILogger
}

func NewPipelineController(svc service.IPipelineService, broker *stream.Broker, log logger.ILogger) IPipelineController {
	return &pipelineController{service: svc, broker: broker, logger: log}
}

func (c *pipelineController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/pipeline/v1")
	h.Post("/run", c.Run)
	h.Get("/run/:id", c.ShowRun)
	h.Get("/graph", c.Graph)
	h.Get("/demo", c.Demo)
}

func (c *pipelineController) Run(ctx *fiber.Ctx) error {
	var req dto.RunPipelineRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Run(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success run pipeline", res))
}

func (c *pipelineController) ShowRun(ctx *fiber.Ctx) error {
	taskID := ctx.Params("id")

	res, err := c.service.GetRun(ctx.Context(), taskID)
	if err != nil {
		if errors.Is(err, service.ErrRunNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Run not found")
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get run", res))
}

func (c *pipelineController) Graph(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get graph", c.service.Graph()))
}

// Demo upgrades to a websocket and streams one frame per stage transition
// while a pipeline runs for the client's query.
func (c *pipelineController) Demo(ctx *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}
	return websocket.New(c.demoSession)(ctx)
}

func (c *pipelineController) demoSession(conn *websocket.Conn) {
	defer conn.Close()

	// The first client frame carries the run configuration.
	var req dto.DemoStreamRequest
	if err := conn.ReadJSON(&req); err != nil {
		_ = conn.WriteJSON(fiber.Map{"event": "error", "message": "Invalid config frame"})
		return
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		_ = conn.WriteJSON(fiber.Map{"event": "error", "message": err.Error()})
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Subscribe before the run starts so no transition frame is lost.
	streamID := uuid.NewString()
	frames, err := c.broker.Subscribe(ctx, streamID)
	if err != nil {
		c.logger.Error("PipelineController", "Demo subscribe failed", map[string]interface{}{"error": err.Error()})
		_ = conn.WriteJSON(fiber.Map{"event": "error", "message": "Stream unavailable"})
		return
	}

	mock := req.Mock == nil || *req.Mock
	if err := conn.WriteJSON(fiber.Map{
		"event":          "init",
		"query":          req.Query,
		"max_iterations": req.MaxIterations,
		"mock":           mock,
	}); err != nil {
		return
	}

	// Buffered so the run goroutine never blocks on a gone client.
	done := make(chan *pipeline.State, 1)
	go func() {
		done <- c.service.StreamDemo(ctx, &req, streamID)
	}()

	for msg := range frames {
		frame, err := stream.DecodeTransition(msg)
		if err != nil {
			c.logger.Warn("PipelineController", "Dropping malformed frame", map[string]interface{}{"error": err.Error()})
			continue
		}

		if err := conn.WriteJSON(fiber.Map{
			"event":           "state_change",
			"task_id":         frame.TaskID,
			"status":          frame.Status,
			"iteration_count": frame.IterationCount,
			"message_count":   frame.MessageCount,
		}); err != nil {
			return
		}

		if pipeline.Status(frame.Status).Terminal() {
			break
		}
	}

	result := <-done
	payload := result.ToMap()
	if result.Status == pipeline.StatusFailed {
		payload["event"] = "error"
	} else {
		payload["event"] = "complete"
	}
	_ = conn.WriteJSON(payload)
}
