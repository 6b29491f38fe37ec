package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/ogurasousui/ponto-clean-arch/internal/core/employee"
	sqldb "github.com/ogurasousui/ponto-clean-arch/internal/platform/db/mysql"
)

const (
	duplicateEntryErrno  = 1062
	noReferencedRowErrno = 1452
)

const employeeColumns = `id, name, pin_hash, lunch_break, workdays, profile_photo, biometric_id, created_at, updated_at`

// EmployeeRepository は MySQL を利用した社員永続化の実装です。
type EmployeeRepository struct {
	db sqldb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(db sqldb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// Create は社員を新規作成します。
func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := sqldb.QueryerFromContext(ctx, r.db)
	res, err := exec.ExecContext(ctx, `
        INSERT INTO employees (name, pin_hash, lunch_break, workdays, profile_photo, biometric_id, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `,
		e.Name,
		e.PINHash,
		e.LunchBreak,
		e.Workdays,
		nullableString(e.ProfilePhoto),
		nullableString(e.BiometricID),
		e.CreatedAt.UTC(),
		e.UpdatedAt.UTC(),
	)
	if err != nil {
		return nil, translateEmployeeMySQLError(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return r.FindByID(ctx, id)
}

// Update は社員情報を更新します。MySQL は値が変わらない行を影響行数に含めないため、更新後に再取得して存在を確認します。
func (r *EmployeeRepository) Update(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := sqldb.QueryerFromContext(ctx, r.db)
	if _, err := exec.ExecContext(ctx, `
        UPDATE employees
           SET name = ?,
               pin_hash = ?,
               lunch_break = ?,
               workdays = ?,
               profile_photo = ?,
               biometric_id = ?,
               updated_at = ?
         WHERE id = ?
    `,
		e.Name,
		e.PINHash,
		e.LunchBreak,
		e.Workdays,
		nullableString(e.ProfilePhoto),
		nullableString(e.BiometricID),
		e.UpdatedAt.UTC(),
		e.ID,
	); err != nil {
		return nil, translateEmployeeMySQLError(err)
	}

	return r.FindByID(ctx, e.ID)
}

// DeleteByName は名前で社員を削除します。
func (r *EmployeeRepository) DeleteByName(ctx context.Context, name string) error {
	exec := sqldb.QueryerFromContext(ctx, r.db)
	res, err := exec.ExecContext(ctx, `DELETE FROM employees WHERE name = ?`, name)
	if err != nil {
		return translateEmployeeMySQLError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// FindByID は ID で社員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id int64) (*employee.Employee, error) {
	exec := sqldb.QueryerFromContext(ctx, r.db)
	row := exec.QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = ? LIMIT 1`, id)
	return scanEmployee(row)
}

// FindByName は名前で社員を取得します。
func (r *EmployeeRepository) FindByName(ctx context.Context, name string) (*employee.Employee, error) {
	exec := sqldb.QueryerFromContext(ctx, r.db)
	row := exec.QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employees WHERE name = ? LIMIT 1`, name)
	return scanEmployee(row)
}

// List は全社員を名前順で取得します。
func (r *EmployeeRepository) List(ctx context.Context) ([]*employee.Employee, error) {
	exec := sqldb.QueryerFromContext(ctx, r.db)
	rows, err := exec.QueryContext(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	employees := make([]*employee.Employee, 0)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return employees, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (*employee.Employee, error) {
	var (
		emp         employee.Employee
		photo       sql.NullString
		biometricID sql.NullString
		createdAt   time.Time
		updatedAt   time.Time
	)

	if err := row.Scan(
		&emp.ID,
		&emp.Name,
		&emp.PINHash,
		&emp.LunchBreak,
		&emp.Workdays,
		&photo,
		&biometricID,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}

	if photo.Valid {
		p := photo.String
		emp.ProfilePhoto = &p
	}
	if biometricID.Valid {
		b := biometricID.String
		emp.BiometricID = &b
	}
	emp.CreatedAt = createdAt
	emp.UpdatedAt = updatedAt

	return &emp, nil
}

func translateEmployeeMySQLError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return employee.ErrEmployeeNotFound
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == duplicateEntryErrno {
		return employee.ErrNameAlreadyExists
	}

	return err
}

func nullableString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}
