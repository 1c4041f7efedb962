package usecase

import (
	"time"

	"github.com/google/uuid"
	"github.com/sportmeetapp/sportmeet/internal/constant"
	"github.com/sportmeetapp/sportmeet/internal/model"
	"github.com/sportmeetapp/sportmeet/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

type EventUsecase struct {
	EventRepository         *repository.EventRepository
	ParticipationRepository *repository.ParticipationRepository
	DB                      *pgxpool.Pool
	Log                     *zap.Logger
	Config                  *koanf.Koanf
}

func NewEventUsecase(eventRepository *repository.EventRepository, participationRepository *repository.ParticipationRepository, db *pgxpool.Pool, zap *zap.Logger, koanf *koanf.Koanf) *EventUsecase {
	return &EventUsecase{
		EventRepository:         eventRepository,
		ParticipationRepository: participationRepository,
		DB:                      db,
		Log:                     zap,
		Config:                  koanf,
	}
}

func validateEventTitle(title string) error {
	if title == "" {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Title is required to not be empty",
			Param:   "title",
		}
	} else if len(title) > 150 {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Title must be at most 150 characters",
			Param:   "title",
		}
	}

	return nil
}

func validateEventSport(sport string) error {
	if !constant.IsKnownSport(sport) {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Unknown sport",
			Param:   "sport",
		}
	}

	return nil
}

func validateEventLocation(location string) error {
	if location == "" {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Location is required to not be empty",
			Param:   "location",
		}
	} else if len(location) > 255 {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Location must be at most 255 characters",
			Param:   "location",
		}
	}

	return nil
}

func validateMaxParticipants(maxParticipants *int) error {
	if maxParticipants != nil && *maxParticipants < 1 {
		return &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Max participants must be greater than 0",
			Param:   "maxParticipants",
		}
	}

	return nil
}

func parseEventId(ctx *fiber.Ctx) (uuid.UUID, error) {
	eventIdParams := ctx.Params("eventId")

	eventId, err := uuid.Parse(eventIdParams)
	if err != nil {
		return eventId, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Invalid event id",
			Param:   "eventId",
		}
	}

	return eventId, nil
}

func (usecase *EventUsecase) CreateEvent(ctx *fiber.Ctx, userId uuid.UUID, payload model.EventCreateRequest) (model.EventResponse, error) {
	ctxContext := ctx.Context()
	response := model.EventResponse{}

	err := validateEventTitle(payload.Title)
	if err != nil {
		return response, err
	}

	err = validateEventSport(payload.Sport)
	if err != nil {
		return response, err
	}

	err = validateEventLocation(payload.Location)
	if err != nil {
		return response, err
	}

	if payload.StartDatetime.IsZero() {
		return response, &model.ValidationError{
			Code:    constant.ERR_VALIDATION_CODE,
			Message: "Start datetime is required",
			Param:   "startDatetime",
		}
	}

	err = validateMaxParticipants(payload.MaxParticipants)
	if err != nil {
		return response, err
	}

	eventId := uuid.New()
	now := time.Now().UTC()

	event := model.Event{
		Id:              eventId,
		HostId:          userId,
		Title:           payload.Title,
		Sport:           payload.Sport,
		Description:     payload.Description,
		Location:        payload.Location,
		StartDatetime:   payload.StartDatetime.UTC(),
		MaxParticipants: payload.MaxParticipants,
		CreateDatetime:  now,
		UpdateDatetime:  now,
	}

	commited := false

	// start transaction
	tx, err := usecase.DB.Begin(ctxContext)
	if err != nil {
		return response, err
	}

	defer func() {
		if !commited {
			_ = tx.Rollback(ctxContext)
		}
	}()

	err = usecase.EventRepository.CreateEvent(ctxContext, tx, event)
	if err != nil {
		return response, err
	}

	err = tx.Commit(ctxContext)
	if err != nil {
		return response, err
	}

	commited = true

	response = model.EventResponse{
		Id:               event.Id.String(),
		HostId:           event.HostId.String(),
		Title:            event.Title,
		Sport:            event.Sport,
		Description:      event.Description,
		Location:         event.Location,
		StartDatetime:    event.StartDatetime,
		MaxParticipants:  event.MaxParticipants,
		ParticipantCount: 0,
		CreateDatetime:   event.CreateDatetime,
	}

	return response, nil
}

func (usecase *EventUsecase) GetEvent(ctx *fiber.Ctx) (model.EventResponse, error) {
	ctxContext := ctx.Context()
	response := model.EventResponse{}

	eventId, err := parseEventId(ctx)
	if err != nil {
		return response, err
	}

	event, err := usecase.EventRepository.GetEvent(ctxContext, eventId)
	if err != nil {
		return response, err
	}

	count, err := usecase.ParticipationRepository.CountParticipants(ctxContext, eventId)
	if err != nil {
		return response, err
	}

	response = model.EventResponse{
		Id:               event.Id.String(),
		HostId:           event.HostId.String(),
		Title:            event.Title,
		Sport:            event.Sport,
		Description:      event.Description,
		Location:         event.Location,
		StartDatetime:    event.StartDatetime,
		MaxParticipants:  event.MaxParticipants,
		ParticipantCount: count,
		CreateDatetime:   event.CreateDatetime,
	}

	return response, nil
}

func (usecase *EventUsecase) ListEvents(ctx *fiber.Ctx) ([]model.EventResponse, error) {
	events, err := usecase.EventRepository.ListEvents(ctx.Context())
	if err != nil {
		return nil, err
	}

	return events, nil
}

func (usecase *EventUsecase) ListHostedEvents(ctx *fiber.Ctx, userId uuid.UUID) ([]model.EventResponse, error) {
	events, err := usecase.EventRepository.ListEventsByHost(ctx.Context(), userId)
	if err != nil {
		return nil, err
	}

	return events, nil
}

// UpdateEvent applies a host patch. Only non-nil fields are written, each
// through its own update statement inside one transaction.
func (usecase *EventUsecase) UpdateEvent(ctx *fiber.Ctx, userId uuid.UUID, payload model.EventPatchRequest) error {
	ctxContext := ctx.Context()

	eventId, err := parseEventId(ctx)
	if err != nil {
		return err
	}

	event, err := usecase.EventRepository.GetEvent(ctxContext, eventId)
	if err != nil {
		return err
	}

	if event.HostId != userId {
		return &model.DomainError{
			Code:    constant.ERR_NOT_AUTHORIZED,
			Message: "You are not the host of this event",
			Param:   "eventId",
		}
	}

	if payload.Title != nil {
		err = validateEventTitle(*payload.Title)
		if err != nil {
			return err
		}
	}

	if payload.Sport != nil {
		err = validateEventSport(*payload.Sport)
		if err != nil {
			return err
		}
	}

	if payload.Location != nil {
		err = validateEventLocation(*payload.Location)
		if err != nil {
			return err
		}
	}

	if payload.MaxParticipants != nil {
		err = validateMaxParticipants(payload.MaxParticipants)
		if err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	commited := false

	// start transaction
	tx, err := usecase.DB.Begin(ctxContext)
	if err != nil {
		return err
	}

	defer func() {
		if !commited {
			_ = tx.Rollback(ctxContext)
		}
	}()

	if payload.Title != nil {
		err = usecase.EventRepository.UpdateTitle(ctxContext, tx, eventId, *payload.Title, now)
		if err != nil {
			return err
		}
	}

	if payload.Sport != nil {
		err = usecase.EventRepository.UpdateSport(ctxContext, tx, eventId, *payload.Sport, now)
		if err != nil {
			return err
		}
	}

	if payload.Description != nil {
		err = usecase.EventRepository.UpdateDescription(ctxContext, tx, eventId, payload.Description, now)
		if err != nil {
			return err
		}
	}

	if payload.Location != nil {
		err = usecase.EventRepository.UpdateLocation(ctxContext, tx, eventId, *payload.Location, now)
		if err != nil {
			return err
		}
	}

	if payload.StartDatetime != nil {
		err = usecase.EventRepository.UpdateStartDatetime(ctxContext, tx, eventId, payload.StartDatetime.UTC(), now)
		if err != nil {
			return err
		}
	}

	if payload.MaxParticipants != nil {
		err = usecase.EventRepository.UpdateMaxParticipants(ctxContext, tx, eventId, *payload.MaxParticipants, now)
		if err != nil {
			return err
		}
	}

	err = tx.Commit(ctxContext)
	if err != nil {
		return err
	}

	commited = true

	return nil
}

// DeleteEvent removes the event and, through the cascade, every participant
// row. Joined-event caches of affected users are invalidated afterwards so
// the next read rebuilds them from Postgres.
func (usecase *EventUsecase) DeleteEvent(ctx *fiber.Ctx, userId uuid.UUID) error {
	ctxContext := ctx.Context()

	eventId, err := parseEventId(ctx)
	if err != nil {
		return err
	}

	hostId, _, err := usecase.EventRepository.GetEventHostAndCapacity(ctxContext, eventId)
	if err != nil {
		return err
	}

	if hostId != userId {
		return &model.DomainError{
			Code:    constant.ERR_NOT_AUTHORIZED,
			Message: "You are not the host of this event",
			Param:   "eventId",
		}
	}

	commited := false

	// start transaction
	tx, err := usecase.DB.Begin(ctxContext)
	if err != nil {
		return err
	}

	defer func() {
		if !commited {
			_ = tx.Rollback(ctxContext)
		}
	}()

	participantIds, err := usecase.ParticipationRepository.GetParticipantUserIds(ctxContext, tx, eventId)
	if err != nil {
		return err
	}

	err = usecase.EventRepository.DeleteEvent(ctxContext, tx, eventId)
	if err != nil {
		return err
	}

	err = tx.Commit(ctxContext)
	if err != nil {
		return err
	}

	commited = true

	err = usecase.ParticipationRepository.InvalidateJoinedEventIdsInCache(ctxContext, participantIds)
	if err != nil {
		usecase.Log.Warn("failed to invalidate joined event cache after event delete",
			zap.String("eventId", eventId.String()),
			zap.Error(err))
	}

	return nil
}
