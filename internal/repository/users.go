package repository

import (
	"database/sql"
	"errors"

	"github.com/sysu-ecnc-dev/lineup-manager/backend/internal/domain"
)

const selectUsersQuery = `
	SELECT id, username, password_hash, full_name, email, role, is_active, created_at, version
	FROM users
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	user := &domain.User{}
	dst := []any{&user.ID, &user.Username, &user.PasswordHash, &user.FullName, &user.Email, &user.Role, &user.IsActive, &user.CreatedAt, &user.Version}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *Repository) getUser(where string, arg any) (*domain.User, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	return scanUser(r.dbpool.QueryRowContext(ctx, selectUsersQuery+where, arg))
}

func (r *Repository) listUsers(suffix string) ([]*domain.User, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, selectUsersQuery+suffix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *Repository) GetUserByID(id int64) (*domain.User, error) {
	return r.getUser(`WHERE id = $1`, id)
}

func (r *Repository) GetUserByUsername(username string) (*domain.User, error) {
	return r.getUser(`WHERE username = $1`, username)
}

// GetAllUsers 主教练排在前面
func (r *Repository) GetAllUsers() ([]*domain.User, error) {
	return r.listUsers(`ORDER BY role = '主教练' DESC, id`)
}

// GetActiveCoaches 返回需要接收阵容通知的教练
func (r *Repository) GetActiveCoaches() ([]*domain.User, error) {
	return r.listUsers(`WHERE is_active ORDER BY id`)
}

// UpdateUserPassword 成功后 user 中的密码哈希和版本号会被更新
func (r *Repository) UpdateUserPassword(user *domain.User, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = $1, version = version + 1
		WHERE id = $2 AND version = $3
		RETURNING version
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, passwordHash, user.ID, user.Version).Scan(&user.Version); err != nil {
		return err
	}

	user.PasswordHash = passwordHash
	return nil
}

func (r *Repository) CreateUser(user *domain.User) error {
	query := `
		INSERT INTO users (username, password_hash, full_name, email, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_active, created_at, version
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	args := []any{user.Username, user.PasswordHash, user.FullName, user.Email, user.Role}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.IsActive, &user.CreatedAt, &user.Version)
}

// EnsureHeadCoach 在用户名不存在时创建主教练账号，已存在时不做修改，返回是否新建
func (r *Repository) EnsureHeadCoach(user *domain.User) (bool, error) {
	query := `
		INSERT INTO users (username, password_hash, full_name, email, role)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (username) DO NOTHING
		RETURNING id, is_active, created_at, version
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	user.Role = domain.RoleHeadCoach
	args := []any{user.Username, user.PasswordHash, user.FullName, user.Email, user.Role}
	err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.IsActive, &user.CreatedAt, &user.Version)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	default:
		return false, err
	}
}

// DeleteUser 在教练不存在时返回 sql.ErrNoRows
func (r *Repository) DeleteUser(id int64) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	result, err := r.dbpool.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}
