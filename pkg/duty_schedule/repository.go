package duty_schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var ErrDutyScheduleNotFound = errors.New("duty schedule not found")

type Repository interface {
	GetAll(ctx context.Context, tenantId int) ([]DutySchedule, error)
	GetById(ctx context.Context, tenantId int, id string) (DutySchedule, error)
	Create(ctx context.Context, tenantId int, schedule DutySchedule) (DutySchedule, error)
	Update(ctx context.Context, tenantId int, schedule DutySchedule) error
	Delete(ctx context.Context, tenantId int, id string) error
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) GetAll(ctx context.Context, tenantId int) ([]DutySchedule, error) {
	query := `SELECT id, team_member_id, duty_type, start_date, end_date, created_at
		FROM duty_schedule WHERE tenant_id = $1 ORDER BY start_date`

	rows, err := r.db.QueryContext(ctx, query, tenantId)
	if err != nil {
		err := fmt.Errorf("could not query duty schedules: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	schedules := make([]DutySchedule, 0, 10)
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		schedules = append(schedules, schedule)
	}
	return schedules, rows.Err()
}

func (r *RepositoryImpl) GetById(ctx context.Context, tenantId int, id string) (DutySchedule, error) {
	query := `SELECT id, team_member_id, duty_type, start_date, end_date, created_at
		FROM duty_schedule WHERE tenant_id = $1 AND id = $2`

	schedule, err := scanSchedule(r.db.QueryRowContext(ctx, query, tenantId, id))
	if errors.Is(err, sql.ErrNoRows) {
		return DutySchedule{}, ErrDutyScheduleNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not query duty schedule: %w", err)
		log.Error(err)
		return DutySchedule{}, err
	}
	return schedule, nil
}

func (r *RepositoryImpl) Create(ctx context.Context, tenantId int, schedule DutySchedule) (DutySchedule, error) {
	if schedule.Id == "" {
		schedule.Id = uuid.New().String()
	}
	schedule.CreatedAt = time.Now()

	query := `INSERT INTO duty_schedule (id, tenant_id, team_member_id, duty_type, start_date, end_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query,
		schedule.Id, tenantId, schedule.TeamMemberId, schedule.DutyType,
		schedule.StartDate.UnixMilli(), schedule.EndDate.UnixMilli(), schedule.CreatedAt.UnixMilli())
	if err != nil {
		err := fmt.Errorf("could not insert duty schedule: %w", err)
		log.Error(err)
		return DutySchedule{}, err
	}
	return schedule, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, tenantId int, schedule DutySchedule) error {
	query := `UPDATE duty_schedule SET team_member_id = $1, duty_type = $2, start_date = $3, end_date = $4
		WHERE tenant_id = $5 AND id = $6`
	_, err := r.db.ExecContext(ctx, query,
		schedule.TeamMemberId, schedule.DutyType,
		schedule.StartDate.UnixMilli(), schedule.EndDate.UnixMilli(), tenantId, schedule.Id)
	if err != nil {
		err := fmt.Errorf("could not update duty schedule: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, tenantId int, id string) error {
	query := `DELETE FROM duty_schedule WHERE tenant_id = $1 AND id = $2`
	_, err := r.db.ExecContext(ctx, query, tenantId, id)
	if err != nil {
		err := fmt.Errorf("could not delete duty schedule: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

type scannable interface {
	Scan(dest ...interface{}) error
}

func scanSchedule(row scannable) (DutySchedule, error) {
	var schedule DutySchedule
	var startMillis, endMillis, createdMillis int64

	err := row.Scan(&schedule.Id, &schedule.TeamMemberId, &schedule.DutyType, &startMillis, &endMillis, &createdMillis)
	if err != nil {
		return DutySchedule{}, err
	}
	schedule.StartDate = time.UnixMilli(startMillis).UTC()
	schedule.EndDate = time.UnixMilli(endMillis).UTC()
	schedule.CreatedAt = time.UnixMilli(createdMillis).UTC()
	return schedule, nil
}
