package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/newspaper-backend/internal/models"
)

// RegisterUser сохраняет нового пользователя и возвращает его UID.
// Повторная регистрация существующего email не вставляет запись:
// второй результат false означает, что пользователь уже был.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, bool, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO users (email, name, role)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (email) DO NOTHING
			  RETURNING uid;`
	err := s.DB.QueryRowContext(ctx, query, user.Email, user.Name, models.RoleNormal).Scan(&newUID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	return newUID, true, nil
}

// GetUserByEmail возвращает пользователя по email или ErrNotFound.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, name, role, premium_until, last_login, last_logout
			  FROM users
			  WHERE email = $1`
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, email)

	var premiumUntil, lastLogin, lastLogout sql.NullTime
	err := row.Scan(&u.UID, &u.Email, &u.Name, &u.Role, &premiumUntil, &lastLogin, &lastLogout)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if premiumUntil.Valid {
		u.PremiumUntil = &premiumUntil.Time
	}
	if lastLogin.Valid {
		u.LastLogin = &lastLogin.Time
	}
	if lastLogout.Valid {
		u.LastLogout = &lastLogout.Time
	}
	return u, nil
}

// ListUsers возвращает всех пользователей.
func (s *Storage) ListUsers(ctx context.Context) ([]*models.User, error) {
	const op = "storage.ListUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, name, role, premium_until, last_login, last_logout
			  FROM users
			  ORDER BY email`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	result, err := scanUsers(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListUsersPage возвращает страницу пользователей и общее число записей.
func (s *Storage) ListUsersPage(ctx context.Context, limit, offset int) ([]*models.User, int, error) {
	const op = "storage.ListUsersPage"
	select {
	case <-ctx.Done():
		return nil, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var total int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT uid, email, name, role, premium_until, last_login, last_logout
			  FROM users
			  ORDER BY email
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	result, err := scanUsers(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return result, total, nil
}

// CountUserStats подсчитывает общую статистику по ролям пользователей.
func (s *Storage) CountUserStats(ctx context.Context) (*models.UserStats, error) {
	const op = "storage.CountUserStats"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*),
			      COUNT(*) FILTER (WHERE role = $1),
			      COUNT(*) FILTER (WHERE role = $2 AND premium_until IS NOT NULL)
			  FROM users`
	var stats models.UserStats
	err := s.DB.QueryRowContext(ctx, query, models.RoleNormal, models.RolePremium).
		Scan(&stats.Total, &stats.Normal, &stats.Premium)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &stats, nil
}

// SetPremium выдаёт пользователю премиум до указанной даты одним обновлением.
// Повторная выдача заменяет прежнее окно. Возвращает количество изменённых строк.
func (s *Storage) SetPremium(ctx context.Context, email string, until time.Time) (int, error) {
	const op = "storage.SetPremium"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET role = $1, premium_until = $2
			  WHERE email = $3`
	result, err := s.DB.ExecContext(ctx, query, models.RolePremium, until, email)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// SetAdmin назначает пользователя администратором.
func (s *Storage) SetAdmin(ctx context.Context, email string) (int, error) {
	const op = "storage.SetAdmin"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET role = $1
			  WHERE email = $2`
	result, err := s.DB.ExecContext(ctx, query, models.RoleAdmin, email)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// DowngradeExpired одним условным обновлением сбрасывает роль и дату окончания
// у всех пользователей с истёкшей премиум-подпиской и возвращает, кого именно
// затронуло обновление. Предикат обновления исключает уже сброшенные записи,
// поэтому повторный вызов ничего не меняет, а выдача премиума между чтением
// и записью не может быть потеряна: чтение и запись здесь один оператор.
func (s *Storage) DowngradeExpired(ctx context.Context, now time.Time) ([]models.ExpiredPremiumInfo, error) {
	const op = "storage.DowngradeExpired"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET role = $1, premium_until = NULL
			  WHERE role = $2 AND premium_until <= $3
			  RETURNING email, name, $3::timestamptz`
	rows, err := s.DB.QueryContext(ctx, query, models.RoleNormal, models.RolePremium, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []models.ExpiredPremiumInfo
	for rows.Next() {
		var info models.ExpiredPremiumInfo
		if err := rows.Scan(&info.Email, &info.Name, &info.ExpiredAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// TouchLastLogin обновляет время последнего входа пользователя.
func (s *Storage) TouchLastLogin(ctx context.Context, email string, now time.Time) (int, error) {
	const op = "storage.TouchLastLogin"
	return s.touch(ctx, op, `UPDATE users SET last_login = $1 WHERE email = $2`, email, now)
}

// TouchLastLogout обновляет время последнего выхода пользователя.
func (s *Storage) TouchLastLogout(ctx context.Context, email string, now time.Time) (int, error) {
	const op = "storage.TouchLastLogout"
	return s.touch(ctx, op, `UPDATE users SET last_logout = $1 WHERE email = $2`, email, now)
}

func (s *Storage) touch(ctx context.Context, op, query, email string, now time.Time) (int, error) {
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, query, now, email)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

func scanUsers(rows *sql.Rows) ([]*models.User, error) {
	var result []*models.User
	for rows.Next() {
		var item models.User
		var premiumUntil, lastLogin, lastLogout sql.NullTime
		if err := rows.Scan(&item.UID, &item.Email, &item.Name, &item.Role,
			&premiumUntil, &lastLogin, &lastLogout); err != nil {
			return nil, err
		}
		if premiumUntil.Valid {
			item.PremiumUntil = &premiumUntil.Time
		}
		if lastLogin.Valid {
			item.LastLogin = &lastLogin.Time
		}
		if lastLogout.Valid {
			item.LastLogout = &lastLogout.Time
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
