package http

import (
	"errors"

	"github.com/google/uuid"
	"github.com/sportmeetapp/sportmeet/internal/constant"
	"github.com/sportmeetapp/sportmeet/internal/model"
	"github.com/sportmeetapp/sportmeet/internal/usecase"
	"github.com/sportmeetapp/sportmeet/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

type EventController struct {
	EventUsecase *usecase.EventUsecase
	Log          *zap.Logger
	Config       *koanf.Koanf
}

func NewEventController(eventUsecase *usecase.EventUsecase, zap *zap.Logger, koanf *koanf.Koanf) *EventController {
	return &EventController{
		EventUsecase: eventUsecase,
		Log:          zap,
		Config:       koanf,
	}
}

func (controller EventController) CreateEvent(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(uuid.UUID)

	var payload model.EventCreateRequest
	err := util.ReadRequestBody(ctx, &payload)
	if err != nil {
		return util.SendErrorResponse(ctx, &model.ValidationError{
			Code:    constant.ERR_INVALID_REQUEST_BODY_ERROR_CODE,
			Message: constant.ERR_INVALID_REQUEST_BODY_MESSAGE,
		})
	}

	var validationErr *model.ValidationError

	response, err := controller.EventUsecase.CreateEvent(ctx, userId, payload)
	if err != nil {
		if errors.As(err, &validationErr) {
			return util.SendErrorResponse(ctx, err)
		}

		return util.SendErrorResponseInternalServer(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller EventController) GetEvent(ctx *fiber.Ctx) error {
	var validationErr *model.ValidationError
	var domainErr *model.DomainError

	response, err := controller.EventUsecase.GetEvent(ctx)
	if err != nil {
		if errors.As(err, &domainErr) {
			return util.SendDomainErrorResponse(ctx, domainErr)
		}

		if errors.As(err, &validationErr) {
			return util.SendErrorResponse(ctx, err)
		}

		return util.SendErrorResponseInternalServer(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller EventController) ListEvents(ctx *fiber.Ctx) error {
	response, err := controller.EventUsecase.ListEvents(ctx)
	if err != nil {
		return util.SendErrorResponseInternalServer(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller EventController) ListHostedEvents(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(uuid.UUID)

	response, err := controller.EventUsecase.ListHostedEvents(ctx, userId)
	if err != nil {
		return util.SendErrorResponseInternalServer(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller EventController) UpdateEvent(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(uuid.UUID)

	var payload model.EventPatchRequest
	err := util.ReadRequestBody(ctx, &payload)
	if err != nil {
		return util.SendErrorResponse(ctx, &model.ValidationError{
			Code:    constant.ERR_INVALID_REQUEST_BODY_ERROR_CODE,
			Message: constant.ERR_INVALID_REQUEST_BODY_MESSAGE,
		})
	}

	var validationErr *model.ValidationError
	var domainErr *model.DomainError

	err = controller.EventUsecase.UpdateEvent(ctx, userId, payload)
	if err != nil {
		if errors.As(err, &domainErr) {
			return util.SendDomainErrorResponse(ctx, domainErr)
		}

		if errors.As(err, &validationErr) {
			return util.SendErrorResponse(ctx, err)
		}

		return util.SendErrorResponseInternalServer(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseNoData(ctx)
}

func (controller EventController) DeleteEvent(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(uuid.UUID)

	var validationErr *model.ValidationError
	var domainErr *model.DomainError

	err := controller.EventUsecase.DeleteEvent(ctx, userId)
	if err != nil {
		if errors.As(err, &domainErr) {
			return util.SendDomainErrorResponse(ctx, domainErr)
		}

		if errors.As(err, &validationErr) {
			return util.SendErrorResponse(ctx, err)
		}

		return util.SendErrorResponseInternalServer(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseNoData(ctx)
}
