package team_member

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var ErrTeamMemberNotFound = errors.New("team member not found")

type Repository interface {
	GetAll(ctx context.Context, tenantId int) ([]TeamMember, error)
	GetById(ctx context.Context, tenantId int, id string) (TeamMember, error)
	Create(ctx context.Context, tenantId int, member TeamMember) (TeamMember, error)
	Update(ctx context.Context, tenantId int, member TeamMember) error
	Delete(ctx context.Context, tenantId int, id string) error
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) GetAll(ctx context.Context, tenantId int) ([]TeamMember, error) {
	query := `SELECT id, name, birthday, created_at FROM team_member WHERE tenant_id = $1 ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, tenantId)
	if err != nil {
		err := fmt.Errorf("could not query team members: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	members := make([]TeamMember, 0, 10)
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			err := fmt.Errorf("could not scan row: %w", err)
			log.Error(err)
			return nil, err
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

func (r *RepositoryImpl) GetById(ctx context.Context, tenantId int, id string) (TeamMember, error) {
	query := `SELECT id, name, birthday, created_at FROM team_member WHERE tenant_id = $1 AND id = $2`

	member, err := scanMember(r.db.QueryRowContext(ctx, query, tenantId, id))
	if errors.Is(err, sql.ErrNoRows) {
		return TeamMember{}, ErrTeamMemberNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not query team member: %w", err)
		log.Error(err)
		return TeamMember{}, err
	}
	return member, nil
}

func (r *RepositoryImpl) Create(ctx context.Context, tenantId int, member TeamMember) (TeamMember, error) {
	if member.Id == "" {
		member.Id = uuid.New().String()
	}
	member.CreatedAt = time.Now()

	query := `INSERT INTO team_member (id, tenant_id, name, birthday, created_at) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, member.Id, tenantId, member.Name, member.Birthday, member.CreatedAt.UnixMilli())
	if err != nil {
		err := fmt.Errorf("could not insert team member: %w", err)
		log.Error(err)
		return TeamMember{}, err
	}
	return member, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, tenantId int, member TeamMember) error {
	query := `UPDATE team_member SET name = $1, birthday = $2 WHERE tenant_id = $3 AND id = $4`
	_, err := r.db.ExecContext(ctx, query, member.Name, member.Birthday, tenantId, member.Id)
	if err != nil {
		err := fmt.Errorf("could not update team member: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, tenantId int, id string) error {
	query := `DELETE FROM team_member WHERE tenant_id = $1 AND id = $2`
	_, err := r.db.ExecContext(ctx, query, tenantId, id)
	if err != nil {
		err := fmt.Errorf("could not delete team member: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

type scannable interface {
	Scan(dest ...interface{}) error
}

func scanMember(row scannable) (TeamMember, error) {
	var member TeamMember
	var birthday sql.NullString
	var createdMillis int64

	if err := row.Scan(&member.Id, &member.Name, &birthday, &createdMillis); err != nil {
		return TeamMember{}, err
	}
	if birthday.Valid {
		member.Birthday = &birthday.String
	}
	member.CreatedAt = time.UnixMilli(createdMillis).UTC()
	return member, nil
}
