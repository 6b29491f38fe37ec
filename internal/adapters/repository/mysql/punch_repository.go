package mysql

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/ogurasousui/ponto-clean-arch/internal/core/employee"
	"github.com/ogurasousui/ponto-clean-arch/internal/core/punch"
	sqldb "github.com/ogurasousui/ponto-clean-arch/internal/platform/db/mysql"
)

// PunchRepository は MySQL を利用した打刻記録永続化の実装です。
type PunchRepository struct {
	db sqldb.Queryer
}

// NewPunchRepository は PunchRepository を生成します。
func NewPunchRepository(db sqldb.Queryer) *PunchRepository {
	return &PunchRepository{db: db}
}

// Insert は打刻記録を保存し、写真があれば打刻写真も保存します。
func (r *PunchRepository) Insert(ctx context.Context, rec *punch.Record) (*punch.Record, error) {
	exec := sqldb.QueryerFromContext(ctx, r.db)

	res, err := exec.ExecContext(ctx, `
        INSERT INTO punch_records (employee_id, punch_date, punch_time, kind, punched_at)
        VALUES (?, ?, ?, ?, ?)
    `,
		rec.EmployeeID,
		rec.Date,
		rec.Time,
		rec.Kind,
		rec.PunchedAt.UTC(),
	)
	if err != nil {
		return nil, translatePunchMySQLError(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	if rec.Photo != nil {
		if _, err := exec.ExecContext(ctx, `INSERT INTO punch_photos (punch_record_id, photo) VALUES (?, ?)`, id, *rec.Photo); err != nil {
			return nil, translatePunchMySQLError(err)
		}
	}

	stored := *rec
	stored.ID = id
	return &stored, nil
}

// List は打刻記録を日付・時刻の降順で取得します。
func (r *PunchRepository) List(ctx context.Context, filter punch.ListFilter) ([]*punch.Record, string, error) {
	if filter.Limit <= 0 {
		return nil, "", punch.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", punch.ErrInvalidPageToken
	}

	limitWithBuffer := filter.Limit + 1

	args := make([]any, 0, 5)
	conditions := make([]string, 0, 3)

	if filter.EmployeeName != "" {
		conditions = append(conditions, "e.name = ?")
		args = append(args, filter.EmployeeName)
	}
	if filter.From != nil {
		conditions = append(conditions, "r.punch_date >= ?")
		args = append(args, filter.From.Format(punch.DateLayout))
	}
	if filter.To != nil {
		conditions = append(conditions, "r.punch_date <= ?")
		args = append(args, filter.To.Format(punch.DateLayout))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "\n         WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, limitWithBuffer, filter.Offset)

	query := `
        SELECT r.id,
               r.employee_id,
               e.name,
               DATE_FORMAT(r.punch_date, '%Y-%m-%d'),
               TIME_FORMAT(r.punch_time, '%H:%i:%s'),
               r.kind,
               r.punched_at
          FROM punch_records r
          JOIN employees e ON e.id = r.employee_id` + whereClause + `
         ORDER BY r.punch_date DESC, r.punch_time DESC, r.id DESC
         LIMIT ? OFFSET ?
    `

	exec := sqldb.QueryerFromContext(ctx, r.db)
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	records := make([]*punch.Record, 0, filter.Limit)
	for rows.Next() {
		var rec punch.Record
		if err := rows.Scan(
			&rec.ID,
			&rec.EmployeeID,
			&rec.EmployeeName,
			&rec.Date,
			&rec.Time,
			&rec.Kind,
			&rec.PunchedAt,
		); err != nil {
			return nil, "", err
		}
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	var nextToken string
	if len(records) == limitWithBuffer {
		records = records[:filter.Limit]
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
	}

	return records, nextToken, nil
}

func translatePunchMySQLError(err error) error {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == noReferencedRowErrno {
		return employee.ErrEmployeeNotFound
	}
	return err
}
