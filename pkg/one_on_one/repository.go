package one_on_one

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var ErrOneOnOneNotFound = errors.New("one-on-one not found")

type Repository interface {
	GetAll(ctx context.Context, tenantId int) ([]OneOnOne, error)
	GetById(ctx context.Context, tenantId int, id string) (OneOnOne, error)
	Create(ctx context.Context, tenantId int, oneOnOne OneOnOne) (OneOnOne, error)
	Update(ctx context.Context, tenantId int, oneOnOne OneOnOne) error
	Delete(ctx context.Context, tenantId int, id string) error
	SetNextMeetingEventRef(ctx context.Context, tenantId int, id string, eventUid *string) error
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) GetAll(ctx context.Context, tenantId int) ([]OneOnOne, error) {
	query := `SELECT id, team_member_id, next_meeting_date, next_meeting_calendar_event_id, created_at
		FROM one_on_one WHERE tenant_id = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, tenantId)
	if err != nil {
		err := fmt.Errorf("could not query one-on-ones: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	oneOnOnes := make([]OneOnOne, 0, 10)
	for rows.Next() {
		oneOnOne, err := scanOneOnOne(rows)
		if err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		oneOnOnes = append(oneOnOnes, oneOnOne)
	}
	return oneOnOnes, rows.Err()
}

func (r *RepositoryImpl) GetById(ctx context.Context, tenantId int, id string) (OneOnOne, error) {
	query := `SELECT id, team_member_id, next_meeting_date, next_meeting_calendar_event_id, created_at
		FROM one_on_one WHERE tenant_id = $1 AND id = $2`

	oneOnOne, err := scanOneOnOne(r.db.QueryRowContext(ctx, query, tenantId, id))
	if errors.Is(err, sql.ErrNoRows) {
		return OneOnOne{}, ErrOneOnOneNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not query one-on-one: %w", err)
		log.Error(err)
		return OneOnOne{}, err
	}
	return oneOnOne, nil
}

func (r *RepositoryImpl) Create(ctx context.Context, tenantId int, oneOnOne OneOnOne) (OneOnOne, error) {
	if oneOnOne.Id == "" {
		oneOnOne.Id = uuid.New().String()
	}
	oneOnOne.CreatedAt = time.Now()

	query := `INSERT INTO one_on_one (id, tenant_id, team_member_id, next_meeting_date, next_meeting_calendar_event_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query,
		oneOnOne.Id, tenantId, oneOnOne.TeamMemberId,
		nullableMillis(oneOnOne.NextMeetingDate), oneOnOne.NextMeetingCalendarEventId,
		oneOnOne.CreatedAt.UnixMilli())
	if err != nil {
		err := fmt.Errorf("could not insert one-on-one: %w", err)
		log.Error(err)
		return OneOnOne{}, err
	}
	return oneOnOne, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, tenantId int, oneOnOne OneOnOne) error {
	query := `UPDATE one_on_one SET team_member_id = $1, next_meeting_date = $2
		WHERE tenant_id = $3 AND id = $4`
	_, err := r.db.ExecContext(ctx, query,
		oneOnOne.TeamMemberId, nullableMillis(oneOnOne.NextMeetingDate), tenantId, oneOnOne.Id)
	if err != nil {
		err := fmt.Errorf("could not update one-on-one: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, tenantId int, id string) error {
	query := `DELETE FROM one_on_one WHERE tenant_id = $1 AND id = $2`
	_, err := r.db.ExecContext(ctx, query, tenantId, id)
	if err != nil {
		err := fmt.Errorf("could not delete one-on-one: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

// SetNextMeetingEventRef writes the weak back-reference to the derived event.
func (r *RepositoryImpl) SetNextMeetingEventRef(ctx context.Context, tenantId int, id string, eventUid *string) error {
	query := `UPDATE one_on_one SET next_meeting_calendar_event_id = $1 WHERE tenant_id = $2 AND id = $3`
	_, err := r.db.ExecContext(ctx, query, eventUid, tenantId, id)
	if err != nil {
		err := fmt.Errorf("could not update one-on-one event reference: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

type scannable interface {
	Scan(dest ...interface{}) error
}

func scanOneOnOne(row scannable) (OneOnOne, error) {
	var oneOnOne OneOnOne
	var meetingMillis sql.NullInt64
	var eventUid sql.NullString
	var createdMillis int64

	err := row.Scan(&oneOnOne.Id, &oneOnOne.TeamMemberId, &meetingMillis, &eventUid, &createdMillis)
	if err != nil {
		return OneOnOne{}, err
	}
	if meetingMillis.Valid {
		t := time.UnixMilli(meetingMillis.Int64).UTC()
		oneOnOne.NextMeetingDate = &t
	}
	if eventUid.Valid {
		oneOnOne.NextMeetingCalendarEventId = &eventUid.String
	}
	oneOnOne.CreatedAt = time.UnixMilli(createdMillis).UTC()
	return oneOnOne, nil
}

func nullableMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}
