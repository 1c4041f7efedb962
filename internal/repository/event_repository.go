package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sportmeetapp/sportmeet/internal/constant"
	"github.com/sportmeetapp/sportmeet/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type EventRepository struct {
	Log     *zap.Logger
	DB      *pgxpool.Pool
	DBCache *redis.Client
}

func NewEventRepository(zap *zap.Logger, db *pgxpool.Pool, dbCache *redis.Client) *EventRepository {
	return &EventRepository{
		Log:     zap,
		DB:      db,
		DBCache: dbCache,
	}
}

func (repository *EventRepository) CreateEvent(ctx context.Context, tx pgx.Tx, event model.Event) error {
	query := "INSERT INTO events (id,host_id,title,sport,description,location,start_datetime,max_participants,create_datetime,update_datetime) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)"

	_, err := tx.Exec(ctx, query, event.Id, event.HostId, event.Title, event.Sport, event.Description, event.Location, event.StartDatetime, event.MaxParticipants, event.CreateDatetime, event.UpdateDatetime)
	if err != nil {
		return err
	}

	return nil
}

func (repository *EventRepository) GetEvent(ctx context.Context, eventId uuid.UUID) (model.Event, error) {
	query := "SELECT id,host_id,title,sport,description,location,start_datetime,max_participants,create_datetime,update_datetime FROM events WHERE id=$1 LIMIT 1"

	event := model.Event{}
	err := repository.DB.QueryRow(ctx, query, eventId).Scan(&event.Id, &event.HostId, &event.Title, &event.Sport, &event.Description, &event.Location, &event.StartDatetime, &event.MaxParticipants, &event.CreateDatetime, &event.UpdateDatetime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return event, &model.DomainError{
				Code:    constant.ERR_EVENT_NOT_FOUND,
				Message: "Event not found",
				Param:   "eventId",
			}
		}
		return event, err
	}

	return event, nil
}

// GetEventHostAndCapacity is the narrow read used by join and leave guards.
func (repository *EventRepository) GetEventHostAndCapacity(ctx context.Context, eventId uuid.UUID) (uuid.UUID, *int, error) {
	query := "SELECT host_id,max_participants FROM events WHERE id=$1 LIMIT 1"

	var hostId uuid.UUID
	var maxParticipants *int
	err := repository.DB.QueryRow(ctx, query, eventId).Scan(&hostId, &maxParticipants)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return hostId, maxParticipants, &model.DomainError{
				Code:    constant.ERR_EVENT_NOT_FOUND,
				Message: "Event not found",
				Param:   "eventId",
			}
		}
		return hostId, maxParticipants, err
	}

	return hostId, maxParticipants, nil
}

func (repository *EventRepository) ListEvents(ctx context.Context) ([]model.EventResponse, error) {
	query := `SELECT A.id,A.host_id,A.title,A.sport,A.description,A.location,A.start_datetime,A.max_participants,A.create_datetime,
			(SELECT COUNT(*) FROM event_participants B WHERE B.event_id = A.id)
			FROM events A
			ORDER BY A.create_datetime DESC`

	rows, err := repository.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEventResponses(rows)
}

func (repository *EventRepository) ListEventsByHost(ctx context.Context, hostId uuid.UUID) ([]model.EventResponse, error) {
	query := `SELECT A.id,A.host_id,A.title,A.sport,A.description,A.location,A.start_datetime,A.max_participants,A.create_datetime,
			(SELECT COUNT(*) FROM event_participants B WHERE B.event_id = A.id)
			FROM events A
			WHERE A.host_id=$1
			ORDER BY A.create_datetime DESC`

	rows, err := repository.DB.Query(ctx, query, hostId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEventResponses(rows)
}

func (repository *EventRepository) ListEventsByIds(ctx context.Context, eventIds []uuid.UUID) ([]model.EventResponse, error) {
	query := `SELECT A.id,A.host_id,A.title,A.sport,A.description,A.location,A.start_datetime,A.max_participants,A.create_datetime,
			(SELECT COUNT(*) FROM event_participants B WHERE B.event_id = A.id)
			FROM events A
			WHERE A.id = ANY($1)
			ORDER BY A.create_datetime DESC`

	rows, err := repository.DB.Query(ctx, query, eventIds)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEventResponses(rows)
}

func scanEventResponses(rows pgx.Rows) ([]model.EventResponse, error) {
	events := []model.EventResponse{}
	for rows.Next() {
		event := model.EventResponse{}
		err := rows.Scan(&event.Id, &event.HostId, &event.Title, &event.Sport, &event.Description, &event.Location, &event.StartDatetime, &event.MaxParticipants, &event.CreateDatetime, &event.ParticipantCount)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return events, nil
}

func (repository *EventRepository) UpdateTitle(ctx context.Context, tx pgx.Tx, eventId uuid.UUID, title string, updateDatetime time.Time) error {
	query := "UPDATE events SET title = $1, update_datetime = $2 WHERE id = $3"

	_, err := tx.Exec(ctx, query, title, updateDatetime, eventId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *EventRepository) UpdateSport(ctx context.Context, tx pgx.Tx, eventId uuid.UUID, sport string, updateDatetime time.Time) error {
	query := "UPDATE events SET sport = $1, update_datetime = $2 WHERE id = $3"

	_, err := tx.Exec(ctx, query, sport, updateDatetime, eventId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *EventRepository) UpdateDescription(ctx context.Context, tx pgx.Tx, eventId uuid.UUID, description *string, updateDatetime time.Time) error {
	query := "UPDATE events SET description = $1, update_datetime = $2 WHERE id = $3"

	_, err := tx.Exec(ctx, query, description, updateDatetime, eventId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *EventRepository) UpdateLocation(ctx context.Context, tx pgx.Tx, eventId uuid.UUID, location string, updateDatetime time.Time) error {
	query := "UPDATE events SET location = $1, update_datetime = $2 WHERE id = $3"

	_, err := tx.Exec(ctx, query, location, updateDatetime, eventId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *EventRepository) UpdateStartDatetime(ctx context.Context, tx pgx.Tx, eventId uuid.UUID, startDatetime time.Time, updateDatetime time.Time) error {
	query := "UPDATE events SET start_datetime = $1, update_datetime = $2 WHERE id = $3"

	_, err := tx.Exec(ctx, query, startDatetime, updateDatetime, eventId)
	if err != nil {
		return err
	}

	return nil
}

func (repository *EventRepository) UpdateMaxParticipants(ctx context.Context, tx pgx.Tx, eventId uuid.UUID, maxParticipants int, updateDatetime time.Time) error {
	query := "UPDATE events SET max_participants = $1, update_datetime = $2 WHERE id = $3"

	_, err := tx.Exec(ctx, query, maxParticipants, updateDatetime, eventId)
	if err != nil {
		return err
	}

	return nil
}

// DeleteEvent relies on ON DELETE CASCADE to drop participant rows with it.
func (repository *EventRepository) DeleteEvent(ctx context.Context, tx pgx.Tx, eventId uuid.UUID) error {
	query := "DELETE FROM events WHERE id=$1"

	_, err := tx.Exec(ctx, query, eventId)
	if err != nil {
		return err
	}

	return nil
}
