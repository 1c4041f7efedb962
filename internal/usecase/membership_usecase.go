package usecase

import (
	"errors"
	"fmt"
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

type MembershipUsecase struct {
	ParticipationRepository *repository.ParticipationRepository
	EventRepository         *repository.EventRepository
	UserRepository          *repository.UserRepository
	DB                      *pgxpool.Pool
	Log                     *zap.Logger
	Config                  *koanf.Koanf
}

func NewMembershipUsecase(participationRepository *repository.ParticipationRepository, eventRepository *repository.EventRepository, userRepository *repository.UserRepository, db *pgxpool.Pool, zap *zap.Logger, koanf *koanf.Koanf) *MembershipUsecase {
	return &MembershipUsecase{
		ParticipationRepository: participationRepository,
		EventRepository:         eventRepository,
		UserRepository:          userRepository,
		DB:                      db,
		Log:                     zap,
		Config:                  koanf,
	}
}

// storeUnavailable converts a raw store failure into the STORE_UNAVAILABLE
// kind. Errors that already carry a kind pass through unchanged.
func (usecase *MembershipUsecase) storeUnavailable(err error) error {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		return err
	}

	usecase.Log.Error("membership store failure", zap.Error(err))

	return &model.DomainError{
		Code:    constant.ERR_STORE_UNAVAILABLE,
		Message: "The event store is temporarily unavailable",
	}
}

// JoinEvent adds the caller as a participant. The capacity check is a
// best-effort read before the insert, not a serialized reservation: two
// near-simultaneous joins on the last slot can both succeed. Capacity is a
// soft limit here.
func (usecase *MembershipUsecase) JoinEvent(ctx *fiber.Ctx, userId uuid.UUID, payload model.JoinEventRequest) error {
	ctxContext := ctx.Context()

	eventId, err := parseEventId(ctx)
	if err != nil {
		return err
	}

	hostId, maxParticipants, err := usecase.EventRepository.GetEventHostAndCapacity(ctxContext, eventId)
	if err != nil {
		return usecase.storeUnavailable(err)
	}

	if hostId == userId {
		return &model.DomainError{
			Code:    constant.ERR_NOT_AUTHORIZED,
			Message: "Hosts cannot join their own event",
			Param:   "eventId",
		}
	}

	exists, err := usecase.ParticipationRepository.CheckParticipation(ctxContext, eventId, userId)
	if err != nil {
		return usecase.storeUnavailable(err)
	}

	if exists == 1 {
		return &model.DomainError{
			Code:    constant.ERR_ALREADY_JOINED,
			Message: "You have already joined this event",
			Param:   "eventId",
		}
	}

	if maxParticipants != nil {
		count, err := usecase.ParticipationRepository.CountParticipants(ctxContext, eventId)
		if err != nil {
			return usecase.storeUnavailable(err)
		}

		if count >= *maxParticipants {
			return &model.DomainError{
				Code:    constant.ERR_EVENT_FULL,
				Message: "This event is already full",
				Param:   "eventId",
			}
		}
	}

	now := time.Now().UTC()

	participation := model.Participation{
		EventId:      eventId,
		UserId:       userId,
		ShareConsent: payload.ShareConsent,
		JoinedAt:     now,
	}

	commited := false

	// start transaction
	tx, err := usecase.DB.Begin(ctxContext)
	if err != nil {
		return usecase.storeUnavailable(err)
	}

	defer func() {
		if !commited {
			_ = tx.Rollback(ctxContext)
		}
	}()

	err = usecase.ParticipationRepository.CreateParticipation(ctxContext, tx, participation)
	if err != nil {
		return usecase.storeUnavailable(err)
	}

	err = tx.Commit(ctxContext)
	if err != nil {
		return usecase.storeUnavailable(err)
	}

	commited = true

	usecase.refreshJoinedEventIds(ctx, userId)

	return nil
}

func (usecase *MembershipUsecase) LeaveEvent(ctx *fiber.Ctx, userId uuid.UUID) error {
	ctxContext := ctx.Context()

	eventId, err := parseEventId(ctx)
	if err != nil {
		return err
	}

	hostId, _, err := usecase.EventRepository.GetEventHostAndCapacity(ctxContext, eventId)
	if err != nil {
		return usecase.storeUnavailable(err)
	}

	if hostId == userId {
		return &model.DomainError{
			Code:    constant.ERR_HOST_CANNOT_LEAVE,
			Message: "Hosts cannot leave their own event, delete it instead",
			Param:   "eventId",
		}
	}

	commited := false

	// start transaction
	tx, err := usecase.DB.Begin(ctxContext)
	if err != nil {
		return usecase.storeUnavailable(err)
	}

	defer func() {
		if !commited {
			_ = tx.Rollback(ctxContext)
		}
	}()

	rowsAffected, err := usecase.ParticipationRepository.DeleteParticipation(ctxContext, tx, eventId, userId)
	if err != nil {
		return usecase.storeUnavailable(err)
	}

	if rowsAffected == 0 {
		return &model.DomainError{
			Code:    constant.ERR_NOT_JOINED,
			Message: "You have not joined this event",
			Param:   "eventId",
		}
	}

	err = tx.Commit(ctxContext)
	if err != nil {
		return usecase.storeUnavailable(err)
	}

	commited = true

	usecase.refreshJoinedEventIds(ctx, userId)

	return nil
}

// GetJoinedEvents serves from the cached joined-id list when present and
// falls back to Postgres on a miss.
func (usecase *MembershipUsecase) GetJoinedEvents(ctx *fiber.Ctx, userId uuid.UUID) ([]model.EventResponse, error) {
	ctxContext := ctx.Context()

	eventIds, hit, err := usecase.ParticipationRepository.GetJoinedEventIdsInCache(ctxContext, userId)
	if err != nil {
		usecase.Log.Warn("failed to read joined event cache",
			zap.String("userId", userId.String()),
			zap.Error(err))
		hit = false
	}

	if !hit {
		eventIds, err = usecase.ParticipationRepository.GetJoinedEventIds(ctxContext, userId)
		if err != nil {
			return nil, usecase.storeUnavailable(err)
		}

		err = usecase.ParticipationRepository.SetJoinedEventIdsInCache(ctxContext, userId, eventIds)
		if err != nil {
			usecase.Log.Warn("failed to write joined event cache",
				zap.String("userId", userId.String()),
				zap.Error(err))
		}
	}

	if len(eventIds) == 0 {
		return []model.EventResponse{}, nil
	}

	events, err := usecase.EventRepository.ListEventsByIds(ctxContext, eventIds)
	if err != nil {
		return nil, usecase.storeUnavailable(err)
	}

	return events, nil
}

// GetParticipantsForHost returns the roster with consent-gated demographics.
// Only the host may call it. A failed roster lookup degrades to an empty
// list so the host view renders instead of erroring.
func (usecase *MembershipUsecase) GetParticipantsForHost(ctx *fiber.Ctx, userId uuid.UUID) ([]model.HostParticipantResponse, error) {
	ctxContext := ctx.Context()

	eventId, err := parseEventId(ctx)
	if err != nil {
		return nil, err
	}

	hostId, _, err := usecase.EventRepository.GetEventHostAndCapacity(ctxContext, eventId)
	if err != nil {
		return nil, usecase.storeUnavailable(err)
	}

	if hostId != userId {
		return nil, &model.DomainError{
			Code:    constant.ERR_NOT_AUTHORIZED,
			Message: "You are not the host of this event",
			Param:   "eventId",
		}
	}

	rows, err := usecase.ParticipationRepository.GetParticipantsForHost(ctxContext, eventId)
	if err != nil {
		usecase.Log.Warn("failed to load participants for host",
			zap.String("eventId", eventId.String()),
			zap.Error(err))
		return []model.HostParticipantResponse{}, nil
	}

	if len(rows) == 0 {
		return []model.HostParticipantResponse{}, nil
	}

	userIds := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		userIds = append(userIds, row.UserId)
	}

	profilesById := map[uuid.UUID]model.ParticipantProfile{}
	profiles, err := usecase.UserRepository.GetParticipantProfiles(ctxContext, userIds)
	if err != nil {
		usecase.Log.Warn("failed to load participant profiles",
			zap.String("eventId", eventId.String()),
			zap.Error(err))
	} else {
		for _, profile := range profiles {
			profilesById[profile.UserId] = profile
		}
	}

	MINIO_URL := usecase.Config.String("MINIO_URL")
	MINIO_BUCKET_NAME := usecase.Config.String("MINIO_BUCKET_NAME")
	MINIO_HTTP := usecase.Config.String("MINIO_HTTP")

	participants := make([]model.HostParticipantResponse, 0, len(rows))
	for _, row := range rows {
		participant := model.HostParticipantResponse{
			UserId:   row.UserId.String(),
			JoinedAt: row.JoinedAt,
			Gender:   row.Gender,
			AgeBand:  row.AgeBand,
		}

		if profile, ok := profilesById[row.UserId]; ok {
			participant.FullName = profile.FullName
			participant.Username = profile.Username
			if profile.AvatarImage != nil {
				avatarURL := fmt.Sprintf("%s%s/%s/%s", MINIO_HTTP, MINIO_URL, MINIO_BUCKET_NAME, *profile.AvatarImage)
				participant.AvatarImage = &avatarURL
			}
		}

		participants = append(participants, participant)
	}

	return participants, nil
}

// refreshJoinedEventIds replaces the cached joined-id list with a fresh read
// from Postgres. Mutations never edit the cached list in place.
func (usecase *MembershipUsecase) refreshJoinedEventIds(ctx *fiber.Ctx, userId uuid.UUID) {
	ctxContext := ctx.Context()

	eventIds, err := usecase.ParticipationRepository.GetJoinedEventIds(ctxContext, userId)
	if err != nil {
		usecase.Log.Warn("failed to reload joined event ids",
			zap.String("userId", userId.String()),
			zap.Error(err))

		err = usecase.ParticipationRepository.InvalidateJoinedEventIdsInCache(ctxContext, []uuid.UUID{userId})
		if err != nil {
			usecase.Log.Warn("failed to invalidate joined event cache",
				zap.String("userId", userId.String()),
				zap.Error(err))
		}
		return
	}

	err = usecase.ParticipationRepository.SetJoinedEventIdsInCache(ctxContext, userId, eventIds)
	if err != nil {
		usecase.Log.Warn("failed to write joined event cache",
			zap.String("userId", userId.String()),
			zap.Error(err))
	}
}
