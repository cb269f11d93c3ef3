package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/saeid-a/CoachChatBack/internal/models"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx so the same repository
// code runs standalone or inside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const userColumns = `id, name, email, password_hash, role, avatar_url, goal, external_ref, subscription_status, created_at, updated_at`

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.AvatarURL,
		&user.Goal,
		&user.ExternalRef,
		&user.SubscriptionStatus,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, subscription_status, created_at, updated_at
	`
	return r.db.QueryRow(ctx, query, user.Name, user.Email, user.PasswordHash, user.Role).
		Scan(&user.ID, &user.SubscriptionStatus, &user.CreatedAt, &user.UpdatedAt)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

// GetCoach resolves "the" coach account: the single coach-role user every
// trainee talks to. Resolved by query, not a hardcoded id.
func (r *UserRepository) GetCoach(ctx context.Context) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE role = $1
		ORDER BY id
		LIMIT 1
	`
	return scanUser(r.db.QueryRow(ctx, query, models.RoleCoach))
}

// CountActiveTraineesForCoach counts trainees with an active subscription among
// the coach's (non-deleted) conversations. Subscription state is owned by the
// billing side; this only reads the flag.
func (r *UserRepository) CountActiveTraineesForCoach(ctx context.Context, coachID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM users u
		JOIN conversations c ON c.trainee_id = u.id
		WHERE c.coach_id = $1
		  AND c.deleted_at IS NULL
		  AND u.role = $2
		  AND u.subscription_status = 'active'
	`
	var count int
	if err := r.db.QueryRow(ctx, query, coachID, models.RoleTrainee).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
