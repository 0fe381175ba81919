package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rakibul/healthdir-api/internal/model"
	"github.com/rakibul/healthdir-api/internal/repository"
	apperrors "github.com/rakibul/healthdir-api/pkg/errors"
)

const chamberColumns = `
	id, doctor_id, name, address, phone, days, timing,
	fee, serial_available, created_at, updated_at
`

type chamberRepository struct {
	BaseRepository
}

func NewChamberRepository(db *sqlx.DB) repository.ChamberRepository {
	return &chamberRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *chamberRepository) Create(ctx context.Context, chamber *model.Chamber) error {
	query := `
		INSERT INTO chambers (
			id, doctor_id, name, address, phone, days, timing,
			fee, serial_available, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	chamber.ID = uuid.New()
	chamber.CreatedAt = time.Now()
	chamber.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		chamber.ID,
		chamber.DoctorID,
		chamber.Name,
		chamber.Address,
		chamber.Phone,
		chamber.Days,
		chamber.Timing,
		chamber.Fee,
		chamber.SerialAvailable,
		chamber.CreatedAt,
		chamber.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create chamber: %w", err)
	}
	return nil
}

func (r *chamberRepository) Get(ctx context.Context, id uuid.UUID) (*model.Chamber, error) {
	query := `SELECT ` + chamberColumns + ` FROM chambers WHERE id = $1`

	var chamber model.Chamber
	err := r.db.GetContext(ctx, &chamber, query, id)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("chamber", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chamber: %w", err)
	}
	return &chamber, nil
}

func (r *chamberRepository) Update(ctx context.Context, chamber *model.Chamber) error {
	query := `
		UPDATE chambers
		SET name = $1, address = $2, phone = $3, days = $4, timing = $5,
			fee = $6, serial_available = $7, updated_at = $8
		WHERE id = $9
	`
	chamber.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		chamber.Name,
		chamber.Address,
		chamber.Phone,
		chamber.Days,
		chamber.Timing,
		chamber.Fee,
		chamber.SerialAvailable,
		chamber.UpdatedAt,
		chamber.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update chamber: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("chamber", nil)
	}
	return nil
}

// Delete leaves appointment chamber_id references dangling on purpose; the
// scheduler resolves them best-effort at read time.
func (r *chamberRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM chambers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete chamber: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("chamber", nil)
	}
	return nil
}

func (r *chamberRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Chamber, error) {
	query := `
		SELECT ` + chamberColumns + `
		FROM chambers
		WHERE doctor_id = $1
		ORDER BY created_at ASC
	`
	var chambers []*model.Chamber
	err := r.db.SelectContext(ctx, &chambers, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chambers: %w", err)
	}
	return chambers, nil
}
