package auth

import (
	"context"
	"database/sql"
	"log/slog"

	"cosmos-server/internal/shared/database"
	"cosmos-server/internal/shared/errors"
)

type Repository struct {
	db     *database.DB
	logger *slog.Logger
}

func NewRepository(db *database.DB, logger *slog.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger.With("component", "auth_repository"),
	}
}

const operatorColumns = `id, github_id, login, display_name, email, avatar_url, role, created_at, updated_at, last_login_at`

func scanOperator(row *sql.Row) (*Operator, error) {
	var op Operator
	err := row.Scan(
		&op.ID,
		&op.GitHubID,
		&op.Login,
		&op.DisplayName,
		&op.Email,
		&op.AvatarURL,
		&op.Role,
		&op.CreatedAt,
		&op.UpdatedAt,
		&op.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}
	return &op, nil
}

// UpsertOperator inserts an operator keyed on the GitHub account id,
// refreshing profile fields and role on every sign-in.
func (r *Repository) UpsertOperator(ctx context.Context, op *Operator) (*Operator, error) {
	query := `
		INSERT INTO operators (github_id, login, display_name, email, avatar_url, role, last_login_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (github_id) DO UPDATE SET
			login = EXCLUDED.login,
			display_name = EXCLUDED.display_name,
			email = EXCLUDED.email,
			avatar_url = EXCLUDED.avatar_url,
			role = EXCLUDED.role,
			last_login_at = NOW(),
			updated_at = NOW()
		RETURNING ` + operatorColumns

	row := r.db.QueryRowContext(ctx, query,
		op.GitHubID, op.Login, op.DisplayName, op.Email, op.AvatarURL, op.Role)

	saved, err := scanOperator(row)
	if err != nil {
		return nil, errors.WrapInternal("failed to upsert operator", err)
	}

	return saved, nil
}

// GetOperatorByID returns nil when no operator exists.
func (r *Repository) GetOperatorByID(ctx context.Context, id int) (*Operator, error) {
	query := `SELECT ` + operatorColumns + ` FROM operators WHERE id = $1`

	op, err := scanOperator(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WrapInternal("failed to get operator", err)
	}

	return op, nil
}

// GetOperatorByGitHubID returns nil when no operator exists.
func (r *Repository) GetOperatorByGitHubID(ctx context.Context, githubID int64) (*Operator, error) {
	query := `SELECT ` + operatorColumns + ` FROM operators WHERE github_id = $1`

	op, err := scanOperator(r.db.QueryRowContext(ctx, query, githubID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WrapInternal("failed to get operator", err)
	}

	return op, nil
}
