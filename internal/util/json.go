package util

import (
	"github.com/sportmeetapp/sportmeet/internal/constant"
	"github.com/sportmeetapp/sportmeet/internal/model"
	"github.com/sportmeetapp/sportmeet/internal/observability"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func ReadRequestBody(ctx *fiber.Ctx, result interface{}) error {
	err := ctx.BodyParser(&result)
	if err != nil {
		return err
	}
	return nil
}

func SendSuccessResponseNoData(ctx *fiber.Ctx) error {
	err := ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "OK",
	})
	if err != nil {
		return err
	}
	return nil
}

func SendSuccessResponseWithData(ctx *fiber.Ctx, data interface{}) error {
	err := ctx.Status(fiber.StatusOK).JSON(data)
	if err != nil {
		return err
	}

	return nil
}

func SendErrorResponse(ctx *fiber.Ctx, error error) error {
	err := ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": error,
	})
	if err != nil {
		return err
	}

	return nil
}

func SendErrorResponseNotFound(ctx *fiber.Ctx, error error) error {
	err := ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": error,
	})
	if err != nil {
		return err
	}

	return nil
}

// SendDomainErrorResponse maps each membership failure kind to its HTTP
// status. One kind, one status.
func SendDomainErrorResponse(ctx *fiber.Ctx, domainErr *model.DomainError) error {
	status := fiber.StatusBadRequest

	switch domainErr.Code {
	case constant.ERR_NOT_AUTHENTICATED:
		status = fiber.StatusUnauthorized
	case constant.ERR_NOT_AUTHORIZED, constant.ERR_HOST_CANNOT_LEAVE:
		status = fiber.StatusForbidden
	case constant.ERR_EVENT_NOT_FOUND:
		status = fiber.StatusNotFound
	case constant.ERR_ALREADY_JOINED, constant.ERR_NOT_JOINED, constant.ERR_EVENT_FULL:
		status = fiber.StatusConflict
	case constant.ERR_STORE_UNAVAILABLE:
		status = fiber.StatusServiceUnavailable
	}

	err := ctx.Status(status).JSON(fiber.Map{
		"error": domainErr,
	})
	if err != nil {
		return err
	}

	return nil
}

func SendErrorResponseInternalServer(ctx *fiber.Ctx, log *zap.Logger, error error) error {
	log = observability.WithContext(ctx.UserContext(), log)
	log.Error("internal server error occured", zap.Error(error))
	err := ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    constant.ERR_INTERNAL_SERVER_ERROR_CODE,
			"message": constant.ERR_INTENRAL_SERVER_ERROR_MESSAGE,
		},
	})

	if err != nil {
		return err
	}

	return err
}
