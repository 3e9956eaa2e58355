package calendar_event

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	WithTransaction(ctx context.Context, fn func(repo Repository) error) error
	Upsert(ctx context.Context, tenantId int, event Event) (Event, bool, error)
	GetByKey(ctx context.Context, tenantId int, key DerivedKey) (*Event, error)
	GetByLinkedEntity(ctx context.Context, tenantId int, entityType EntityType, entityId string) ([]Event, error)
	GetByType(ctx context.Context, tenantId int, eventType EventType) ([]Event, error)
	GetAll(ctx context.Context, tenantId int) ([]Event, error)
	GetEvents(ctx context.Context, tenantId int, from, to time.Time) ([]Event, error)
	UpdateSchedule(ctx context.Context, tenantId int, event Event) error
	UpdateUserFields(ctx context.Context, tenantId int, uid string, title, notes *string) error
	Delete(ctx context.Context, tenantId int, uid string) error
	DeleteByLinkedEntity(ctx context.Context, tenantId int, entityType EntityType, entityId string) error
	DeleteByTeamMember(ctx context.Context, tenantId int, teamMemberId string) error
}

type RepositoryImpl struct {
	db *sql.DB
	tx *sql.Tx
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db, tx: nil}
}

// getQueryer returns the appropriate database interface for queries (either tx or db)
func (r *RepositoryImpl) getQueryer() interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *RepositoryImpl) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	if r.tx != nil {
		// Already inside a transaction; nested sequences join it.
		return fn(r)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		// The Rollback will be a no-op if the transaction was already committed
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	txRepo := &RepositoryImpl{db: r.db, tx: tx}

	if err := fn(txRepo); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

const eventColumns = `uid, title, start_date, end_date, event_type, all_day,
		recurrence_type, recurrence_interval, team_member_id,
		linked_entity_type, linked_entity_id, occurrence_year, ordinal,
		notes, title_overridden, created_at`

// Upsert stores the event under its derived key. If an event with the same
// key already exists (including one inserted concurrently), the existing
// record is returned and the second result is false: a duplicate insert is a
// benign "already synchronized" outcome, never an error.
func (r *RepositoryImpl) Upsert(ctx context.Context, tenantId int, event Event) (Event, bool, error) {
	if event.UID == "" {
		event.UID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	query := `INSERT INTO calendar_event (` + eventColumns + `, tenant_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (tenant_id, linked_entity_type, linked_entity_id, occurrence_year, ordinal) DO NOTHING`

	var recurrenceType sql.NullString
	var recurrenceInterval sql.NullInt64
	if event.Recurrence != nil {
		recurrenceType = sql.NullString{String: event.Recurrence.Type, Valid: true}
		recurrenceInterval = sql.NullInt64{Int64: int64(event.Recurrence.Interval), Valid: true}
	}

	res, err := r.getQueryer().ExecContext(ctx, query,
		event.UID, event.Title, event.StartDate.UnixMilli(), event.EndDate.UnixMilli(),
		string(event.EventType), event.AllDay, recurrenceType, recurrenceInterval,
		nullableString(event.TeamMemberID), string(event.LinkedEntityType), event.LinkedEntityID,
		event.OccurrenceYear, event.Ordinal, event.Notes, event.TitleOverridden,
		event.CreatedAt.UnixMilli(), tenantId,
	)
	if err != nil {
		err := fmt.Errorf("could not upsert calendar event: %w", err)
		log.Error(err)
		return Event{}, false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return Event{}, false, fmt.Errorf("could not read rows affected: %w", err)
	}
	if affected > 0 {
		return event, true, nil
	}

	existing, err := r.GetByKey(ctx, tenantId, event.Key())
	if err != nil {
		return Event{}, false, err
	}
	if existing == nil {
		return Event{}, false, fmt.Errorf("event with key %s vanished during upsert", event.Key())
	}
	return *existing, false, nil
}

func (r *RepositoryImpl) GetByKey(ctx context.Context, tenantId int, key DerivedKey) (*Event, error) {
	query := `SELECT ` + eventColumns + ` FROM calendar_event
		WHERE tenant_id = $1 AND linked_entity_type = $2 AND linked_entity_id = $3
		  AND occurrence_year = $4 AND ordinal = $5`

	row := r.getQueryer().QueryRowContext(ctx, query,
		tenantId, string(key.EntityType), key.EntityID, key.Year, key.Ordinal)
	event, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		err := fmt.Errorf("could not query calendar event by key: %w", err)
		log.Error(err)
		return nil, err
	}
	return &event, nil
}

func (r *RepositoryImpl) GetByLinkedEntity(ctx context.Context, tenantId int, entityType EntityType, entityId string) ([]Event, error) {
	query := `SELECT ` + eventColumns + ` FROM calendar_event
		WHERE tenant_id = $1 AND linked_entity_type = $2 AND linked_entity_id = $3
		ORDER BY occurrence_year, ordinal`

	return r.queryEvents(ctx, query, tenantId, string(entityType), entityId)
}

func (r *RepositoryImpl) GetByType(ctx context.Context, tenantId int, eventType EventType) ([]Event, error) {
	query := `SELECT ` + eventColumns + ` FROM calendar_event
		WHERE tenant_id = $1 AND event_type = $2
		ORDER BY start_date`

	return r.queryEvents(ctx, query, tenantId, string(eventType))
}

func (r *RepositoryImpl) GetAll(ctx context.Context, tenantId int) ([]Event, error) {
	query := `SELECT ` + eventColumns + ` FROM calendar_event
		WHERE tenant_id = $1
		ORDER BY start_date`

	return r.queryEvents(ctx, query, tenantId)
}

func (r *RepositoryImpl) GetEvents(ctx context.Context, tenantId int, from, to time.Time) ([]Event, error) {
	// All events that overlap the given period.
	query := `SELECT ` + eventColumns + ` FROM calendar_event
		WHERE tenant_id = $1 AND start_date <= $2 AND end_date >= $3
		ORDER BY start_date`

	return r.queryEvents(ctx, query, tenantId, to.UnixMilli(), from.UnixMilli())
}

// UpdateSchedule rewrites the scheduling fields derived from the source
// entity (dates, all-day flag, recurrence, member link, title). The caller is
// responsible for passing a title that respects user overrides; Notes and
// TitleOverridden are never touched here.
func (r *RepositoryImpl) UpdateSchedule(ctx context.Context, tenantId int, event Event) error {
	query := `UPDATE calendar_event
		SET title = $1, start_date = $2, end_date = $3, all_day = $4,
		    recurrence_type = $5, recurrence_interval = $6, team_member_id = $7
		WHERE uid = $8 AND tenant_id = $9`

	var recurrenceType sql.NullString
	var recurrenceInterval sql.NullInt64
	if event.Recurrence != nil {
		recurrenceType = sql.NullString{String: event.Recurrence.Type, Valid: true}
		recurrenceInterval = sql.NullInt64{Int64: int64(event.Recurrence.Interval), Valid: true}
	}

	_, err := r.getQueryer().ExecContext(ctx, query,
		event.Title, event.StartDate.UnixMilli(), event.EndDate.UnixMilli(), event.AllDay,
		recurrenceType, recurrenceInterval, nullableString(event.TeamMemberID),
		event.UID, tenantId)
	if err != nil {
		err := fmt.Errorf("could not update calendar event: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

// UpdateUserFields applies a user edit. A provided title marks the event as
// title-overridden so synchronization stops rewriting it; notes are free text
// that synchronization never touches anyway.
func (r *RepositoryImpl) UpdateUserFields(ctx context.Context, tenantId int, uid string, title, notes *string) error {
	if title != nil {
		query := `UPDATE calendar_event SET title = $1, title_overridden = TRUE WHERE uid = $2 AND tenant_id = $3`
		if _, err := r.getQueryer().ExecContext(ctx, query, *title, uid, tenantId); err != nil {
			err := fmt.Errorf("could not update calendar event title: %w", err)
			log.Error(err)
			return err
		}
	}
	if notes != nil {
		query := `UPDATE calendar_event SET notes = $1 WHERE uid = $2 AND tenant_id = $3`
		if _, err := r.getQueryer().ExecContext(ctx, query, *notes, uid, tenantId); err != nil {
			err := fmt.Errorf("could not update calendar event notes: %w", err)
			log.Error(err)
			return err
		}
	}
	return nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, tenantId int, uid string) error {
	query := `DELETE FROM calendar_event WHERE uid = $1 AND tenant_id = $2`
	_, err := r.getQueryer().ExecContext(ctx, query, uid, tenantId)
	if err != nil {
		err := fmt.Errorf("could not delete calendar event: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) DeleteByLinkedEntity(ctx context.Context, tenantId int, entityType EntityType, entityId string) error {
	query := `DELETE FROM calendar_event
		WHERE tenant_id = $1 AND linked_entity_type = $2 AND linked_entity_id = $3`
	_, err := r.getQueryer().ExecContext(ctx, query, tenantId, string(entityType), entityId)
	if err != nil {
		err := fmt.Errorf("could not delete calendar events for entity: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) DeleteByTeamMember(ctx context.Context, tenantId int, teamMemberId string) error {
	query := `DELETE FROM calendar_event WHERE tenant_id = $1 AND team_member_id = $2`
	_, err := r.getQueryer().ExecContext(ctx, query, tenantId, teamMemberId)
	if err != nil {
		err := fmt.Errorf("could not delete calendar events for team member: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) queryEvents(ctx context.Context, query string, args ...interface{}) ([]Event, error) {
	rows, err := r.getQueryer().QueryContext(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query calendar events: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	events := make([]Event, 0, 10)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

type scannable interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row scannable) (Event, error) {
	var event Event
	var startMillis, endMillis, createdMillis int64
	var eventType, linkedEntityType string
	var recurrenceType sql.NullString
	var recurrenceInterval sql.NullInt64
	var teamMemberId sql.NullString

	err := row.Scan(&event.UID, &event.Title, &startMillis, &endMillis, &eventType, &event.AllDay,
		&recurrenceType, &recurrenceInterval, &teamMemberId,
		&linkedEntityType, &event.LinkedEntityID, &event.OccurrenceYear, &event.Ordinal,
		&event.Notes, &event.TitleOverridden, &createdMillis)
	if err != nil {
		return Event{}, err
	}

	event.StartDate = time.UnixMilli(startMillis).UTC()
	event.EndDate = time.UnixMilli(endMillis).UTC()
	event.EventType = EventType(eventType)
	event.LinkedEntityType = EntityType(linkedEntityType)
	event.CreatedAt = time.UnixMilli(createdMillis).UTC()
	if recurrenceType.Valid {
		event.Recurrence = &Recurrence{
			Type:     recurrenceType.String,
			Interval: int(recurrenceInterval.Int64),
		}
	}
	if teamMemberId.Valid {
		event.TeamMemberID = teamMemberId.String
	}
	return event, nil
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
