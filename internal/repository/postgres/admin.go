package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rakibul/healthdir-api/internal/repository"
)

type adminRepository struct {
	BaseRepository
}

func NewAdminRepository(db *sqlx.DB) repository.AdminRepository {
	return &adminRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *adminRepository) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM admin_users WHERE user_id = $1
		)
	`
	var isAdmin bool
	err := r.db.GetContext(ctx, &isAdmin, query, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check admin membership: %w", err)
	}
	return isAdmin, nil
}

func (r *adminRepository) Grant(ctx context.Context, userID uuid.UUID) error {
	query := `
		INSERT INTO admin_users (user_id, created_at)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, userID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to grant admin role: %w", err)
	}
	return nil
}
