package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/exp/slog"

	"tripkeeper/internal/domain/company"
)

type CompanyRepository struct {
	db  *Storage
	log *slog.Logger
}

func NewCompanyRepository(db *Storage, log *slog.Logger) *CompanyRepository {
	return &CompanyRepository{
		db:  db,
		log: log,
	}
}

// Activate consumes the invitation and writes the owner's company link record
// in one transaction. The UPDATE guards on used_by IS NULL, so two concurrent
// activations of the same code race on the row and exactly one wins.
func (r *CompanyRepository) Activate(ctx context.Context, code, ownerID string) (company.Link, error) {
	tx, err := r.db.Pool().Begin(ctx)
	if err != nil {
		return company.Link{}, fmt.Errorf("begin activation: %w", err)
	}
	defer tx.Rollback(ctx)

	var companyID, companyName string
	err = tx.QueryRow(ctx, `
		UPDATE invitations i
		SET used_by = $2, used_at = NOW()
		FROM companies c
		WHERE i.code = $1 AND i.used_by IS NULL AND c.id = i.company_id
		RETURNING c.id, c.name
	`, code, ownerID).Scan(&companyID, &companyName)
	if errors.Is(err, pgx.ErrNoRows) {
		// Either the code never existed or someone already spent it.
		var used bool
		if checkErr := tx.QueryRow(ctx,
			`SELECT used_by IS NOT NULL FROM invitations WHERE code = $1`, code).
			Scan(&used); checkErr == nil && used {
			return company.Link{}, company.ErrCodeUsed
		}
		return company.Link{}, company.ErrCodeNotFound
	}
	if err != nil {
		return company.Link{}, fmt.Errorf("consume invitation: %w", err)
	}

	link := company.Link{
		CompanyID:   companyID,
		CompanyName: companyName,
		Status:      company.StatusActive,
	}
	payload, err := json.Marshal(link)
	if err != nil {
		return company.Link{}, fmt.Errorf("marshal link: %w", err)
	}

	// The link reaches the client through the regular record fetch.
	_, err = tx.Exec(ctx, `
		INSERT INTO records (id, owner_id, entity_type, payload, version, updated_at, deleted)
		VALUES ($1, $2, 'company_link', $3, 1, $4, FALSE)
	`, uuid.NewString(), ownerID, payload, time.Now())
	if err != nil {
		return company.Link{}, fmt.Errorf("insert company link: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return company.Link{}, fmt.Errorf("commit activation: %w", err)
	}
	return link, nil
}
