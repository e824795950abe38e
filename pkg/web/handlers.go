// Package web provides the HTTP handlers and REST endpoints for flow
// management and execution.
package web

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/watacorp/botflow/pkg/models"
	"github.com/watacorp/botflow/pkg/persistence"
	"github.com/watacorp/botflow/pkg/registry"
	"github.com/watacorp/botflow/pkg/workflow"
)

type APIHandlers struct {
	service   *workflow.Service
	validator *validator.Validate
	registry  *registry.Registry
}

func NewAPIHandlers(service *workflow.Service, validate *validator.Validate, reg *registry.Registry) *APIHandlers {
	return &APIHandlers{
		service:   service,
		validator: validate,
		registry:  reg,
	}
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	registryCheck, regOk := h.registry.HealthCheck()
	repositoryCheck, repOk := h.service.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Botflow API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if regOk && repOk {
		status = "healthy"
		message = "Botflow API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"registry":   registryCheck,
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) GetFlows(c fiber.Ctx) error {
	flows, err := h.service.ListFlows(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"flows": flows})
}

func (h *APIHandlers) GetFlow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Flow ID is required")
	}

	flow, err := h.service.FlowByID(c.Context(), id)
	if err != nil {
		if persistence.IsFlowNotFound(err) {
			return notFound(c, "Flow not found")
		}

		return internalError(c, err)
	}

	return c.JSON(flow)
}

func (h *APIHandlers) CreateFlow(c fiber.Ctx) error {
	var req CreateFlowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	flow := &models.Flow{
		Name:   req.Name,
		Status: req.Status,
		Data:   req.Data,
	}

	created, err := h.service.CreateFlow(c.Context(), flow)
	if err != nil {
		return badRequest(c, err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateFlow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Flow ID is required")
	}

	var req UpdateFlowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	existing, err := h.service.FlowByID(c.Context(), id)
	if err != nil {
		if persistence.IsFlowNotFound(err) {
			return notFound(c, "Flow not found")
		}

		return internalError(c, err)
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}

	if req.Status != nil {
		existing.Status = *req.Status
	}

	if req.Data != nil {
		existing.Data = *req.Data
	}

	updated, err := h.service.UpdateFlow(c.Context(), id, existing)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteFlow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Flow ID is required")
	}

	err := h.service.DeleteFlow(c.Context(), id)
	if err != nil {
		if persistence.IsFlowNotFound(err) {
			return notFound(c, "Flow not found")
		}

		return internalError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// RunFlow executes a flow with explicit trigger input, visiting every
// reachable node.
func (h *APIHandlers) RunFlow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Flow ID is required")
	}

	var req RunFlowRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid JSON format")
		}
	}

	result, err := h.service.ExecuteFlow(c.Context(), id, req.Input, req.ConversationID)
	if err != nil {
		return handleExecutionError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) GetBots(c fiber.Ctx) error {
	bots, err := h.service.ListBots(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"bots": bots})
}

func (h *APIHandlers) CreateBot(c fiber.Ctx) error {
	var req CreateBotRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	bot := &models.Bot{
		Name:     req.Name,
		FlowID:   req.FlowID,
		IsActive: req.IsActive,
	}

	created, err := h.service.CreateBot(c.Context(), bot)
	if err != nil {
		if persistence.IsFlowNotFound(err) {
			return badRequest(c, "bot flow not found")
		}

		return internalError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// HandleInboundMessage runs the conversational path of the bot's flow for one
// inbound message.
func (h *APIHandlers) HandleInboundMessage(c fiber.Ctx) error {
	botID := c.Params("id")
	if botID == "" {
		return badRequest(c, "Bot ID is required")
	}

	var req InboundMessageRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	message := models.Message{
		ConversationID: req.ConversationID,
		SenderID:       req.SenderID,
		Content:        req.Content,
	}

	result, err := h.service.HandleMessage(c.Context(), botID, message, req.CustomerName)
	if err != nil {
		return handleExecutionError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) GetFlowExecutions(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Flow ID is required")
	}

	executions, err := h.service.ExecutionsByFlow(c.Context(), id)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"executions": executions})
}

func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Execution ID is required")
	}

	execution, records, err := h.service.ExecutionWithNodes(c.Context(), id)
	if err != nil {
		if persistence.IsExecutionNotFound(err) {
			return notFound(c, "Execution not found")
		}

		return internalError(c, err)
	}

	return c.JSON(ExecutionResponse{Execution: execution, NodeExecutions: records})
}
