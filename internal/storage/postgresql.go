// Package storage реализует хранилище данных на основе PostgreSQL
// для финансовых записей и пользователей. Предоставляет методы
// создания, чтения, частичного обновления, удаления и выборок,
// а также работу с состоянием подписки пользователя.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/magabrotheeeer/finance-tracker/internal/models"
)

// pgUniqueViolation — код PostgreSQL для нарушения уникального ограничения.
const pgUniqueViolation = "23505"

// Storage инкапсулирует соединение с базой данных PostgreSQL
// и реализует методы работы с записями и пользователями.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его доступность.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет готовность базы данных.
func CheckDatabaseReady(storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRow(`SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'financial_records'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table financial_records missing or query error: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// ===== FINANCIAL RECORD METHODS =====

const recordColumns = `id, user_uid, year, month,
		services_revenue, products_revenue, other_revenue,
		goods_cost, commissions, variable_marketing,
		rent, salaries, utilities, fixed_marketing, other_fixed_costs,
		created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.Record, error) {
	var r models.Record
	err := row.Scan(&r.ID, &r.UserUID, &r.Year, &r.Month,
		&r.ServicesRevenue, &r.ProductsRevenue, &r.OtherRevenue,
		&r.GoodsCost, &r.Commissions, &r.VariableMarketing,
		&r.Rent, &r.Salaries, &r.Utilities, &r.FixedMarketing, &r.OtherFixedCosts,
		&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateRecord вставляет новую финансовую запись и возвращает её ID.
// Дубликат (пользователь, год, месяц) отклоняется ограничением уникальности
// на стороне базы и возвращается как ErrRecordExists.
func (s *Storage) CreateRecord(ctx context.Context, rec models.Record) (int, error) {
	const op = "storage.CreateRecord"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO financial_records (user_uid, year, month,
			      services_revenue, products_revenue, other_revenue,
			      goods_cost, commissions, variable_marketing,
			      rent, salaries, utilities, fixed_marketing, other_fixed_costs)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		rec.UserUID, rec.Year, rec.Month,
		rec.ServicesRevenue, rec.ProductsRevenue, rec.OtherRevenue,
		rec.GoodsCost, rec.Commissions, rec.VariableMarketing,
		rec.Rent, rec.Salaries, rec.Utilities, rec.FixedMarketing, rec.OtherFixedCosts).Scan(&newID)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%s: %w", op, ErrRecordExists)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetRecordByID возвращает запись по ID с проверкой принадлежности пользователю.
func (s *Storage) GetRecordByID(ctx context.Context, id int, userUID string) (*models.Record, error) {
	const op = "storage.GetRecordByID"

	query := `SELECT ` + recordColumns + `
			  FROM financial_records
			  WHERE id = $1 AND user_uid = $2`
	rec, err := scanRecord(s.DB.QueryRowContext(ctx, query, id, userUID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrRecordNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rec, nil
}

// GetRecordByPeriod возвращает запись пользователя за (год, месяц).
func (s *Storage) GetRecordByPeriod(ctx context.Context, userUID string, year, month int) (*models.Record, error) {
	const op = "storage.GetRecordByPeriod"

	query := `SELECT ` + recordColumns + `
			  FROM financial_records
			  WHERE user_uid = $1 AND year = $2 AND month = $3`
	rec, err := scanRecord(s.DB.QueryRowContext(ctx, query, userUID, year, month))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrRecordNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rec, nil
}

// UpdateRecord применяет частичное обновление к записи в одной транзакции:
// строка блокируется, присутствующие поля переносятся, строка перезаписывается
// целиком. При любой ошибке транзакция откатывается.
func (s *Storage) UpdateRecord(ctx context.Context, id int, userUID string, fields models.UpdateRecordFields) (*models.Record, error) {
	const op = "storage.UpdateRecord"

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `SELECT ` + recordColumns + `
			  FROM financial_records
			  WHERE id = $1 AND user_uid = $2
			  FOR UPDATE`
	rec, err := scanRecord(tx.QueryRowContext(ctx, query, id, userUID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrRecordNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	fields.Apply(rec)

	updateQuery := `UPDATE financial_records
			  SET services_revenue = $1, products_revenue = $2, other_revenue = $3,
			      goods_cost = $4, commissions = $5, variable_marketing = $6,
			      rent = $7, salaries = $8, utilities = $9,
			      fixed_marketing = $10, other_fixed_costs = $11,
			      updated_at = now()
			  WHERE id = $12`
	if _, err = tx.ExecContext(ctx, updateQuery,
		rec.ServicesRevenue, rec.ProductsRevenue, rec.OtherRevenue,
		rec.GoodsCost, rec.Commissions, rec.VariableMarketing,
		rec.Rent, rec.Salaries, rec.Utilities,
		rec.FixedMarketing, rec.OtherFixedCosts, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	rec.UpdatedAt = time.Now().UTC()
	return rec, nil
}

// DeleteRecord удаляет запись по ID с проверкой принадлежности пользователю.
func (s *Storage) DeleteRecord(ctx context.Context, id int, userUID string) error {
	const op = "storage.DeleteRecord"

	result, err := s.DB.ExecContext(ctx,
		`DELETE FROM financial_records WHERE id = $1 AND user_uid = $2`, id, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrRecordNotFound)
	}
	return nil
}

// ListRecords возвращает записи пользователя, отсортированные по году
// и месяцу по убыванию. Фильтры по году и месяцу опциональны и совместны.
func (s *Storage) ListRecords(ctx context.Context, userUID string, year, month *int) ([]*models.Record, error) {
	const op = "storage.ListRecords"

	var sb strings.Builder
	sb.WriteString(`SELECT ` + recordColumns + `
			  FROM financial_records
			  WHERE user_uid = $1`)
	args := []any{userUID}
	if year != nil {
		args = append(args, *year)
		sb.WriteString(" AND year = $" + strconv.Itoa(len(args)))
	}
	if month != nil {
		args = append(args, *month)
		sb.WriteString(" AND month = $" + strconv.Itoa(len(args)))
	}
	sb.WriteString(" ORDER BY year DESC, month DESC")

	rows, err := s.DB.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListRecordsSinceYear возвращает записи пользователя с годом не меньше
// заданного, отсортированные по возрастанию (год, месяц). Используется
// агрегатором трендов и графиками.
func (s *Storage) ListRecordsSinceYear(ctx context.Context, userUID string, year int) ([]*models.Record, error) {
	const op = "storage.ListRecordsSinceYear"

	query := `SELECT ` + recordColumns + `
			  FROM financial_records
			  WHERE user_uid = $1 AND year >= $2
			  ORDER BY year ASC, month ASC`
	rows, err := s.DB.QueryContext(ctx, query, userUID, year)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ===== USER METHODS =====

const userColumns = `uid, email, password_hash, first_name, last_name,
		      business_name, business_type, subscription_plan,
		      subscription_status, subscription_end_date, provider_customer_id, created_at`

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	var endDate sql.NullTime
	var customerID sql.NullString
	err := row.Scan(&u.UID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.BusinessName, &u.BusinessType, &u.SubscriptionPlan,
		&u.SubscriptionStatus, &endDate, &customerID, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	if endDate.Valid {
		u.SubscriptionEndDate = &endDate.Time
	}
	if customerID.Valid {
		u.ProviderCustomerID = &customerID.String
	}
	return u, nil
}

// RegisterUser сохраняет нового пользователя и возвращает его UID.
// Повторная регистрация почты возвращает ErrUserExists.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO users (uid, email, password_hash, first_name, last_name,
			      business_name, business_type, subscription_plan, subscription_status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING uid`
	if err := s.DB.QueryRowContext(ctx, query,
		user.UID, user.Email, user.PasswordHash, user.FirstName, user.LastName,
		user.BusinessName, user.BusinessType,
		user.SubscriptionPlan, user.SubscriptionStatus).Scan(&newUID); err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%s: %w", op, ErrUserExists)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetUserByEmail возвращает пользователя по его почте.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE email = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByUID возвращает пользователя по его UID.
func (s *Storage) GetUserByUID(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUserByUID"

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE uid = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, userUID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByCustomerID возвращает пользователя по идентификатору клиента
// у платёжного провайдера.
func (s *Storage) GetUserByCustomerID(ctx context.Context, customerID string) (*models.User, error) {
	const op = "storage.GetUserByCustomerID"

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE provider_customer_id = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, customerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// UpdateUserProfile применяет частичное обновление профиля в одной транзакции.
func (s *Storage) UpdateUserProfile(ctx context.Context, userUID string, fields models.UpdateProfileFields) (*models.User, error) {
	const op = "storage.UpdateUserProfile"

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE uid = $1
			  FOR UPDATE`
	u, err := scanUser(tx.QueryRowContext(ctx, query, userUID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if fields.FirstName != nil {
		u.FirstName = strings.TrimSpace(*fields.FirstName)
	}
	if fields.LastName != nil {
		u.LastName = strings.TrimSpace(*fields.LastName)
	}
	if fields.BusinessName != nil {
		u.BusinessName = strings.TrimSpace(*fields.BusinessName)
	}
	if fields.BusinessType != nil {
		u.BusinessType = strings.TrimSpace(*fields.BusinessType)
	}

	updateQuery := `UPDATE users
			  SET first_name = $1, last_name = $2, business_name = $3, business_type = $4
			  WHERE uid = $5`
	if _, err = tx.ExecContext(ctx, updateQuery,
		u.FirstName, u.LastName, u.BusinessName, u.BusinessType, userUID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// ActivateSubscription записывает оплаченный тариф, статус active,
// дату окончания периода и идентификатор клиента у провайдера.
// Вызывается после завершения checkout.
func (s *Storage) ActivateSubscription(ctx context.Context, userUID, planName, customerID string, endDate *time.Time) error {
	const op = "storage.ActivateSubscription"

	query := `UPDATE users
			  SET subscription_plan = $1, subscription_status = 'active',
			      subscription_end_date = $2, provider_customer_id = $3
			  WHERE uid = $4`
	result, err := s.DB.ExecContext(ctx, query, planName, endDate, customerID, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return nil
}

// UpdateSubscriptionByCustomerID обновляет статус подписки по идентификатору
// клиента у провайдера. Пустой planName оставляет тариф прежним,
// nil endDate оставляет дату окончания прежней.
func (s *Storage) UpdateSubscriptionByCustomerID(ctx context.Context, customerID, planName, status string, endDate *time.Time) error {
	const op = "storage.UpdateSubscriptionByCustomerID"

	query := `UPDATE users
			  SET subscription_plan = COALESCE(NULLIF($1, ''), subscription_plan),
			      subscription_status = $2,
			      subscription_end_date = COALESCE($3, subscription_end_date)
			  WHERE provider_customer_id = $4`
	result, err := s.DB.ExecContext(ctx, query, planName, status, endDate, customerID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return nil
}

// CancelSubscriptionByCustomerID возвращает пользователя на бесплатный тариф:
// статус canceled, дата окончания сбрасывается.
func (s *Storage) CancelSubscriptionByCustomerID(ctx context.Context, customerID string) error {
	const op = "storage.CancelSubscriptionByCustomerID"

	query := `UPDATE users
			  SET subscription_plan = 'free', subscription_status = 'canceled',
			      subscription_end_date = NULL
			  WHERE provider_customer_id = $1`
	result, err := s.DB.ExecContext(ctx, query, customerID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return nil
}
