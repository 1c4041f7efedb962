package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/sportmeetapp/sportmeet/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type ParticipationRepository struct {
	Log     *zap.Logger
	DB      *pgxpool.Pool
	DBCache *redis.Client
}

func NewParticipationRepository(zap *zap.Logger, db *pgxpool.Pool, dbCache *redis.Client) *ParticipationRepository {
	return &ParticipationRepository{
		Log:     zap,
		DB:      db,
		DBCache: dbCache,
	}
}

func (repository *ParticipationRepository) CreateParticipation(ctx context.Context, tx pgx.Tx, participation model.Participation) error {
	query := "INSERT INTO event_participants (event_id,user_id,share_consent,joined_at) VALUES ($1,$2,$3,$4)"

	_, err := tx.Exec(ctx, query, participation.EventId, participation.UserId, participation.ShareConsent, participation.JoinedAt)
	if err != nil {
		return err
	}

	return nil
}

func (repository *ParticipationRepository) DeleteParticipation(ctx context.Context, tx pgx.Tx, eventId uuid.UUID, userId uuid.UUID) (int64, error) {
	query := "DELETE FROM event_participants WHERE event_id=$1 AND user_id=$2"

	tag, err := tx.Exec(ctx, query, eventId, userId)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func (repository *ParticipationRepository) CheckParticipation(ctx context.Context, eventId uuid.UUID, userId uuid.UUID) (int, error) {
	query := "SELECT 1 FROM event_participants WHERE event_id=$1 AND user_id=$2 LIMIT 1"

	var exists int
	err := repository.DB.QueryRow(ctx, query, eventId, userId).Scan(&exists)
	if err != nil {
		if err == pgx.ErrNoRows {
			return exists, nil
		}
		return exists, err
	}

	return exists, nil
}

func (repository *ParticipationRepository) CountParticipants(ctx context.Context, eventId uuid.UUID) (int, error) {
	query := "SELECT COUNT(*) FROM event_participants WHERE event_id=$1"

	var count int
	err := repository.DB.QueryRow(ctx, query, eventId).Scan(&count)
	if err != nil {
		return count, err
	}

	return count, nil
}

func (repository *ParticipationRepository) GetJoinedEventIds(ctx context.Context, userId uuid.UUID) ([]uuid.UUID, error) {
	query := "SELECT event_id FROM event_participants WHERE user_id=$1 ORDER BY joined_at ASC"

	rows, err := repository.DB.Query(ctx, query, userId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	eventIds := []uuid.UUID{}
	for rows.Next() {
		var eventId uuid.UUID
		err = rows.Scan(&eventId)
		if err != nil {
			return nil, err
		}
		eventIds = append(eventIds, eventId)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return eventIds, nil
}

func (repository *ParticipationRepository) GetParticipantUserIds(ctx context.Context, tx pgx.Tx, eventId uuid.UUID) ([]uuid.UUID, error) {
	query := "SELECT user_id FROM event_participants WHERE event_id=$1"

	rows, err := tx.Query(ctx, query, eventId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	userIds := []uuid.UUID{}
	for rows.Next() {
		var userId uuid.UUID
		err = rows.Scan(&userId)
		if err != nil {
			return nil, err
		}
		userIds = append(userIds, userId)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return userIds, nil
}

// GetParticipantsForHost goes through the event_participants_for_host SQL
// function so consent redaction and age banding stay inside the store.
func (repository *ParticipationRepository) GetParticipantsForHost(ctx context.Context, eventId uuid.UUID) ([]model.HostParticipantRow, error) {
	query := "SELECT user_id,joined_at,gender,age_band FROM event_participants_for_host($1)"

	rows, err := repository.DB.Query(ctx, query, eventId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	participants := []model.HostParticipantRow{}
	for rows.Next() {
		row := model.HostParticipantRow{}
		err = rows.Scan(&row.UserId, &row.JoinedAt, &row.Gender, &row.AgeBand)
		if err != nil {
			return nil, err
		}
		participants = append(participants, row)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return participants, nil
}

// Redis - Cache
//
// The joined-event-id list is a reflection of Postgres, never a source of
// truth. Mutations replace the whole list; a miss falls back to Postgres.

func (repository *ParticipationRepository) SetJoinedEventIdsInCache(ctx context.Context, userId uuid.UUID, eventIds []uuid.UUID) error {
	key := fmt.Sprintf("membership:joinedEvents:%s", userId)

	payload, err := sonic.Marshal(eventIds)
	if err != nil {
		return err
	}

	err = repository.DBCache.Set(ctx, key, payload, 24*time.Hour).Err()
	if err != nil {
		return err
	}

	return nil
}

func (repository *ParticipationRepository) GetJoinedEventIdsInCache(ctx context.Context, userId uuid.UUID) ([]uuid.UUID, bool, error) {
	key := fmt.Sprintf("membership:joinedEvents:%s", userId)

	payload, err := repository.DBCache.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}

	eventIds := []uuid.UUID{}
	err = sonic.Unmarshal([]byte(payload), &eventIds)
	if err != nil {
		return nil, false, err
	}

	return eventIds, true, nil
}

func (repository *ParticipationRepository) InvalidateJoinedEventIdsInCache(ctx context.Context, userIds []uuid.UUID) error {
	keys := make([]string, 0, len(userIds))
	for _, userId := range userIds {
		keys = append(keys, fmt.Sprintf("membership:joinedEvents:%s", userId))
	}

	if len(keys) == 0 {
		return nil
	}

	err := repository.DBCache.Del(ctx, keys...).Err()
	if err != nil {
		return err
	}

	return nil
}
