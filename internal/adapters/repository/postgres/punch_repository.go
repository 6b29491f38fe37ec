package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/ponto-clean-arch/internal/core/employee"
	"github.com/ogurasousui/ponto-clean-arch/internal/core/punch"
	pgdb "github.com/ogurasousui/ponto-clean-arch/internal/platform/db/postgres"
)

// PunchRepository は PostgreSQL を利用した打刻記録永続化の実装です。
type PunchRepository struct {
	pool pgdb.Queryer
}

// NewPunchRepository は PunchRepository を生成します。
func NewPunchRepository(pool pgdb.Queryer) *PunchRepository {
	return &PunchRepository{pool: pool}
}

// Insert は打刻記録を保存し、写真があれば同じ実行コンテキストで打刻写真も保存します。
// 両者を不可分にするには呼び出し側でトランザクションを開始してください。
func (r *PunchRepository) Insert(ctx context.Context, rec *punch.Record) (*punch.Record, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)

	var id int64
	if err := exec.QueryRow(ctx, `
        INSERT INTO punch_records (employee_id, punch_date, punch_time, kind, punched_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id
    `,
		rec.EmployeeID,
		rec.Date,
		rec.Time,
		rec.Kind,
		rec.PunchedAt,
	).Scan(&id); err != nil {
		return nil, translatePunchPgError(err)
	}

	if rec.Photo != nil {
		if _, err := exec.Exec(ctx, `
        INSERT INTO punch_photos (punch_record_id, photo)
        VALUES ($1, $2)
    `, id, *rec.Photo); err != nil {
			return nil, translatePunchPgError(err)
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
		args = append(args, filter.EmployeeName)
		conditions = append(conditions, "e.name = $"+strconv.Itoa(len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, "r.punch_date >= $"+strconv.Itoa(len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, "r.punch_date <= $"+strconv.Itoa(len(args)))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "\n         WHERE " + strings.Join(conditions, " AND ")
	}

	args = append(args, limitWithBuffer)
	limitPlaceholder := "$" + strconv.Itoa(len(args))
	args = append(args, filter.Offset)
	offsetPlaceholder := "$" + strconv.Itoa(len(args))

	query := `
        SELECT r.id,
               r.employee_id,
               e.name,
               to_char(r.punch_date, 'YYYY-MM-DD'),
               to_char(r.punch_time, 'HH24:MI:SS'),
               r.kind,
               r.punched_at
          FROM punch_records r
          JOIN employees e ON e.id = r.employee_id` + whereClause + `
         ORDER BY r.punch_date DESC, r.punch_time DESC, r.id DESC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translatePunchPgError(err)
	}
	defer rows.Close()

	records := make([]*punch.Record, 0, filter.Limit)
	for rows.Next() {
		rec, err := scanPunchRecord(rows)
		if err != nil {
			return nil, "", translatePunchPgError(err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, "", translatePunchPgError(err)
	}

	var nextToken string
	if len(records) == limitWithBuffer {
		records = records[:filter.Limit]
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
	}

	return records, nextToken, nil
}

func scanPunchRecord(row pgx.Row) (*punch.Record, error) {
	var (
		rec       punch.Record
		punchedAt time.Time
	)

	if err := row.Scan(
		&rec.ID,
		&rec.EmployeeID,
		&rec.EmployeeName,
		&rec.Date,
		&rec.Time,
		&rec.Kind,
		&punchedAt,
	); err != nil {
		return nil, err
	}

	rec.PunchedAt = punchedAt
	return &rec, nil
}

func translatePunchPgError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode {
		// 社員の存在確認後に削除された場合など。
		return employee.ErrEmployeeNotFound
	}

	return err
}
