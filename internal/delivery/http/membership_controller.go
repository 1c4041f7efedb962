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

type MembershipController struct {
	MembershipUsecase *usecase.MembershipUsecase
	Log               *zap.Logger
	Config            *koanf.Koanf
}

func NewMembershipController(membershipUsecase *usecase.MembershipUsecase, zap *zap.Logger, koanf *koanf.Koanf) *MembershipController {
	return &MembershipController{
		MembershipUsecase: membershipUsecase,
		Log:               zap,
		Config:            koanf,
	}
}

func (controller MembershipController) JoinEvent(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(uuid.UUID)

	// An absent body means no consent, not a malformed request.
	payload := model.JoinEventRequest{}
	if len(ctx.Body()) > 0 {
		err := util.ReadRequestBody(ctx, &payload)
		if err != nil {
			return util.SendErrorResponse(ctx, &model.ValidationError{
				Code:    constant.ERR_INVALID_REQUEST_BODY_ERROR_CODE,
				Message: constant.ERR_INVALID_REQUEST_BODY_MESSAGE,
			})
		}
	}

	var validationErr *model.ValidationError
	var domainErr *model.DomainError

	err := controller.MembershipUsecase.JoinEvent(ctx, userId, payload)
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

func (controller MembershipController) LeaveEvent(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(uuid.UUID)

	var validationErr *model.ValidationError
	var domainErr *model.DomainError

	err := controller.MembershipUsecase.LeaveEvent(ctx, userId)
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

func (controller MembershipController) GetJoinedEvents(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(uuid.UUID)

	var domainErr *model.DomainError

	response, err := controller.MembershipUsecase.GetJoinedEvents(ctx, userId)
	if err != nil {
		if errors.As(err, &domainErr) {
			return util.SendDomainErrorResponse(ctx, domainErr)
		}

		return util.SendErrorResponseInternalServer(ctx, controller.Log, err)
	}

	return util.SendSuccessResponseWithData(ctx, response)
}

func (controller MembershipController) GetParticipantsForHost(ctx *fiber.Ctx) error {
	userId := ctx.Locals("userId").(uuid.UUID)

	var validationErr *model.ValidationError
	var domainErr *model.DomainError

	response, err := controller.MembershipUsecase.GetParticipantsForHost(ctx, userId)
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
