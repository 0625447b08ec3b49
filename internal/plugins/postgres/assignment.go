package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// AssignmentRepo holds the client↔designer pairing used for non-admin
// presence filtering. The relation is symmetric: each side sees the other as
// a correspondent.
type AssignmentRepo struct {
	db *sql.DB
}

func NewAssignmentRepo(db *sql.DB) *AssignmentRepo {
	return &AssignmentRepo{db: db}
}

func (r *AssignmentRepo) CorrespondentIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	exec := GetExecutor(ctx, r.db)
	rows, err := exec.QueryContext(ctx, `
		SELECT designer_id FROM assignments WHERE client_id = $1
		UNION
		SELECT client_id FROM assignments WHERE designer_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *AssignmentRepo) Assign(ctx context.Context, clientID, designerID uuid.UUID) error {
	exec := GetExecutor(ctx, r.db)
	_, err := exec.ExecContext(ctx, `
		INSERT INTO assignments (client_id, designer_id)
		VALUES ($1, $2)
		ON CONFLICT (client_id, designer_id) DO NOTHING
	`, clientID, designerID)
	return err
}
