package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/omnipos-sales-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Tenant, error) {
	var t model.Tenant
	err := r.DB.GetContext(ctx, &t, `SELECT id, name, tax_rate, currency, timezone, is_active FROM tenants WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *PGRepository) ListActive(ctx context.Context) ([]model.Tenant, error) {
	tenants := []model.Tenant{}
	err := r.DB.SelectContext(ctx, &tenants, `SELECT id, name, tax_rate, currency, timezone, is_active FROM tenants WHERE is_active ORDER BY id`)
	return tenants, err
}
