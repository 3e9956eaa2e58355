package tenant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

var ErrTenantNotFound = errors.New("tenant not found")

type Repository interface {
	GetByUid(ctx context.Context, uid string) (Tenant, error)
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) GetByUid(ctx context.Context, uid string) (Tenant, error) {
	query := `SELECT id, uid, name FROM tenant WHERE uid = $1`

	var t Tenant
	err := r.db.QueryRowContext(ctx, query, uid).Scan(&t.Id, &t.Uid, &t.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return Tenant{}, ErrTenantNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not query tenant: %w", err)
		log.Error(err)
		return Tenant{}, err
	}
	return t, nil
}
