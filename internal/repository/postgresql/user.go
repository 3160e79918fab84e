package postgresql

import (
	"context"
	"errors"
	"time"

	"github.com/hrleave/leave-backend-go/internal/domain/user"
	"github.com/hrleave/leave-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

// Create implements user.UserRepository.
func (r *userRepositoryImpl) Create(ctx context.Context, u user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO users (
			id, email, password_hash, first_name, last_name,
			role, department, manager_id, hire_date, is_active
		)
		VALUES (
			uuidv7(), $1, $2, $3, $4, $5, $6, $7, $8, TRUE
		)
		RETURNING id, is_active, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		u.Email, u.PasswordHash, u.FirstName, u.LastName,
		string(u.Role), u.Department, u.ManagerID, u.HireDate,
	).Scan(&u.ID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, err
	}

	return u, nil
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT u.id, u.email, u.password_hash, u.first_name, u.last_name,
			   u.role, u.department, u.manager_id, u.hire_date, u.is_active,
			   u.created_at, u.updated_at,
			   m.first_name || ' ' || m.last_name AS manager_name
		FROM users u
		LEFT JOIN users m ON u.manager_id = m.id
		WHERE u.id = $1
	`

	var u user.User
	err := q.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.Role, &u.Department, &u.ManagerID, &u.HireDate, &u.IsActive,
		&u.CreatedAt, &u.UpdatedAt,
		&u.ManagerName,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

// GetByEmail implements user.UserRepository.
func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, email, password_hash, first_name, last_name,
			   role, department, manager_id, hire_date, is_active,
			   created_at, updated_at
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`

	var u user.User
	err := q.QueryRow(ctx, query, email).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.Role, &u.Department, &u.ManagerID, &u.HireDate, &u.IsActive,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

// List implements user.UserRepository.
func (r *userRepositoryImpl) List(ctx context.Context) ([]user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT u.id, u.email, u.password_hash, u.first_name, u.last_name,
			   u.role, u.department, u.manager_id, u.hire_date, u.is_active,
			   u.created_at, u.updated_at,
			   m.first_name || ' ' || m.last_name AS manager_name
		FROM users u
		LEFT JOIN users m ON u.manager_id = m.id
		ORDER BY u.last_name, u.first_name
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]user.User, 0)
	for rows.Next() {
		var u user.User
		if err := rows.Scan(
			&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
			&u.Role, &u.Department, &u.ManagerID, &u.HireDate, &u.IsActive,
			&u.CreatedAt, &u.UpdatedAt,
			&u.ManagerName,
		); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

// ListTeam implements user.UserRepository. A nil managerID lists every
// active user; otherwise only the manager's direct reports.
func (r *userRepositoryImpl) ListTeam(ctx context.Context, managerID *string, year int) ([]user.TeamMember, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT u.id, u.email, u.first_name, u.last_name, u.role,
			   u.department, u.hire_date,
			   COALESCE(SUM(lb.remaining_days), 0) AS total_remaining_days
		FROM users u
		LEFT JOIN leave_balances lb
			ON lb.user_id = u.id AND lb.year = $1
		WHERE u.is_active = TRUE
		  AND ($2::uuid IS NULL OR u.manager_id = $2)
		GROUP BY u.id
		ORDER BY u.last_name, u.first_name
	`

	rows, err := q.Query(ctx, query, year, managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]user.TeamMember, 0)
	for rows.Next() {
		var m user.TeamMember
		if err := rows.Scan(
			&m.ID, &m.Email, &m.FirstName, &m.LastName, &m.Role,
			&m.Department, &m.HireDate,
			&m.TotalRemainingDays,
		); err != nil {
			return nil, err
		}
		members = append(members, m)
	}

	return members, rows.Err()
}

// Update implements user.UserRepository. Only the set fields of req are
// written. department and manager_id are nullable, so they use an
// explicit set flag instead of COALESCE: a set field with a nil value
// clears the column.
func (r *userRepositoryImpl) Update(ctx context.Context, req user.UpdateUserRequest) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE users
		SET first_name = COALESCE($2, first_name),
			last_name  = COALESCE($3, last_name),
			role       = COALESCE($4, role),
			department = CASE WHEN $5 THEN $6 ELSE department END,
			manager_id = CASE WHEN $7 THEN $8::uuid ELSE manager_id END,
			is_active  = COALESCE($9, is_active),
			updated_at = $10
		WHERE id = $1
	`

	result, err := q.Exec(ctx, query,
		req.ID,
		req.FirstName, req.LastName, req.Role,
		req.Department.Set, req.Department.Value,
		req.ManagerID.Set, req.ManagerID.Value,
		req.IsActive,
		time.Now(),
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}

	return nil
}
