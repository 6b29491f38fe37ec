package mysql

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/ogurasousui/ponto-clean-arch/internal/core/employee"
	"github.com/ogurasousui/ponto-clean-arch/internal/core/punch"
	sqldb "github.com/ogurasousui/ponto-clean-arch/internal/platform/db/mysql"
)

var punchColumnNames = []string{"id", "employee_id", "name", "punch_date", "punch_time", "kind", "punched_at"}

func TestPunchRepository_InsertWithPhotoInTransaction(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewPunchRepository(db)
	tm := sqldb.NewTransactionManager(db)
	punchedAt := time.Date(2025, 5, 6, 6, 1, 0, 0, punch.ReferenceLocation)
	photo := "data:image/jpeg;base64,AAAA"

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO punch_records`).
		WithArgs(int64(7), "2025-05-06", "06:01:00", "Entrada (⚠️ ATRASO)", punchedAt.UTC()).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec(`INSERT INTO punch_photos`).
		WithArgs(int64(42), photo).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	var stored *punch.Record
	err := tm.WithinReadWrite(context.Background(), func(ctx context.Context) error {
		rec, err := repo.Insert(ctx, &punch.Record{
			EmployeeID: 7,
			Date:       "2025-05-06",
			Time:       "06:01:00",
			Kind:       "Entrada (⚠️ ATRASO)",
			PunchedAt:  punchedAt,
			Photo:      &photo,
		})
		stored = rec
		return err
	})
	if err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}
	if stored.ID != 42 {
		t.Fatalf("expected id 42, got %d", stored.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPunchRepository_InsertForeignKeyViolation(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewPunchRepository(db)

	mock.ExpectExec(`INSERT INTO punch_records`).
		WillReturnError(&mysql.MySQLError{Number: noReferencedRowErrno, Message: "Cannot add or update a child row"})

	_, err := repo.Insert(context.Background(), &punch.Record{EmployeeID: 9, Kind: "Entrada", PunchedAt: time.Now()})
	if !errors.Is(err, employee.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestPunchRepository_List_WithFilters(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewPunchRepository(db)
	from := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC()

	query := regexp.QuoteMeta(`WHERE e.name = ? AND r.punch_date >= ? AND r.punch_date <= ?`) +
		`\s+ORDER BY r.punch_date DESC, r.punch_time DESC, r.id DESC\s+LIMIT \? OFFSET \?`

	mock.ExpectQuery(query).
		WithArgs("Maria", "2025-05-01", "2025-05-31", 3, 0).
		WillReturnRows(sqlmock.NewRows(punchColumnNames).
			AddRow(int64(3), int64(1), "Maria", "2025-05-03", "05:50:00", "Entrada", now).
			AddRow(int64(2), int64(1), "Maria", "2025-05-02", "17:00:00", "Saída", now).
			AddRow(int64(1), int64(1), "Maria", "2025-05-02", "06:10:00", "Entrada (⚠️ ATRASO)", now))

	records, nextToken, err := repo.List(context.Background(), punch.ListFilter{
		EmployeeName: "Maria",
		From:         &from,
		To:           &to,
		Limit:        2,
	})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if nextToken != "2" {
		t.Fatalf("expected next token '2', got %s", nextToken)
	}
	if records[1].Kind != "Saída" || records[1].Time != "17:00:00" {
		t.Fatalf("unexpected second record %+v", records[1])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPunchRepository_List_InvalidFilter(t *testing.T) {
	t.Parallel()

	repo := NewPunchRepository(nil)

	if _, _, err := repo.List(context.Background(), punch.ListFilter{Limit: -1}); !errors.Is(err, punch.ErrInvalidPageSize) {
		t.Fatalf("expected ErrInvalidPageSize, got %v", err)
	}
	if _, _, err := repo.List(context.Background(), punch.ListFilter{Limit: 1, Offset: -5}); !errors.Is(err, punch.ErrInvalidPageToken) {
		t.Fatalf("expected ErrInvalidPageToken, got %v", err)
	}
}
