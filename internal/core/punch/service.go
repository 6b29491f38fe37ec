package punch

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ogurasousui/ponto-clean-arch/internal/core/employee"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

const (
	defaultListPageSize = 200
	maxListPageSize     = 1000
	maxKindLength       = 60
)

// Options は打刻ユースケースの挙動を切り替える設定です。
type Options struct {
	// Location は遅刻判定と日付・時刻の記録に使うタイムゾーンです。nil の場合は ReferenceLocation。
	Location *time.Location
	// RequirePIN が true の場合、打刻時に社員の PIN を照合します。
	RequirePIN bool
}

// Service は打刻に関するユースケースをまとめます。
type Service struct {
	repo      Repository
	employees EmployeeFinder
	pins      PINVerifier
	clock     Clock
	tx        TransactionManager
	loc       *time.Location
	needPIN   bool
}

// UseCase は打刻ユースケースの公開インターフェースです。
type UseCase interface {
	RecordPunch(ctx context.Context, in RecordPunchInput) (*Record, error)
	ListPunches(ctx context.Context, in ListPunchesInput) (*ListPunchesResult, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, employees EmployeeFinder, pins PINVerifier, clock Clock, tx TransactionManager, opts Options) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	loc := opts.Location
	if loc == nil {
		loc = ReferenceLocation
	}
	return &Service{
		repo:      repo,
		employees: employees,
		pins:      pins,
		clock:     clock,
		tx:        tx,
		loc:       loc,
		needPIN:   opts.RequirePIN,
	}
}

// RecordPunchInput は打刻時の入力です。
type RecordPunchInput struct {
	EmployeeName string
	Kind         string
	Photo        *string
	PIN          string
}

// ListPunchesInput は打刻一覧取得時の入力です。From / To は YYYY-MM-DD 形式で両端を含みます。
type ListPunchesInput struct {
	EmployeeName string
	From         string
	To           string
	PageSize     int
	PageToken    string
}

// ListPunchesResult は打刻一覧の取得結果です。
type ListPunchesResult struct {
	Records       []*Record
	NextPageToken string
}

// RecordPunch は社員の打刻を記録します。
// 社員の存在確認と PIN 照合に失敗した場合は種別判定の前に終了します。
func (s *Service) RecordPunch(ctx context.Context, in RecordPunchInput) (*Record, error) {
	name, err := employee.NormalizeName(in.EmployeeName)
	if err != nil {
		return nil, ErrInvalidEmployeeName
	}

	kind := strings.TrimSpace(in.Kind)
	if kind == "" || utf8.RuneCountInString(kind) > maxKindLength {
		return nil, ErrInvalidKind
	}

	var photo *string
	if in.Photo != nil && *in.Photo != "" {
		clone := *in.Photo
		photo = &clone
	}

	var recorded *Record
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		emp, err := s.employees.FindByName(txCtx, name)
		if err != nil {
			return err
		}

		if s.needPIN {
			if err := s.pins.VerifyPIN(emp, in.PIN); err != nil {
				return err
			}
		}

		now := s.clock.Now().In(s.loc)
		result, err := s.repo.Insert(txCtx, &Record{
			EmployeeID:   emp.ID,
			EmployeeName: emp.Name,
			Date:         now.Format(DateLayout),
			Time:         now.Format(TimeLayout),
			Kind:         Classify(kind, now, s.loc),
			PunchedAt:    now,
			Photo:        photo,
		})
		if err != nil {
			return err
		}

		recorded = result
		return nil
	}); err != nil {
		return nil, err
	}

	return recorded, nil
}

// ListPunches は打刻履歴を新しい順に取得します。
func (s *Service) ListPunches(ctx context.Context, in ListPunchesInput) (*ListPunchesResult, error) {
	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}

	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	from, err := parseDate(in.From)
	if err != nil {
		return nil, err
	}
	to, err := parseDate(in.To)
	if err != nil {
		return nil, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, ErrInvalidDateRange
	}

	// 空の場合は社員で絞り込みません。
	name := strings.TrimSpace(in.EmployeeName)
	if name != "" {
		if name, err = employee.NormalizeName(name); err != nil {
			return nil, ErrInvalidEmployeeName
		}
	}

	var (
		records   []*Record
		nextToken string
	)

	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, token, err := s.repo.List(txCtx, ListFilter{
			EmployeeName: name,
			From:         from,
			To:           to,
			Limit:        limit,
			Offset:       offset,
		})
		if err != nil {
			return err
		}
		records = found
		nextToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListPunchesResult{Records: records, NextPageToken: nextToken}, nil
}

func parseDate(raw string) (*time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(DateLayout, trimmed, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", trimmed, ErrInvalidDateRange)
	}
	return &t, nil
}

func normalizePageSize(pageSize int) (int, error) {
	if pageSize < 0 || pageSize > maxListPageSize {
		return 0, ErrInvalidPageSize
	}
	if pageSize == 0 {
		return defaultListPageSize, nil
	}
	return pageSize, nil
}

func parsePageToken(token string) (int, error) {
	if strings.TrimSpace(token) == "" {
		return 0, nil
	}

	offset, err := strconv.Atoi(token)
	if err != nil || offset < 0 {
		return 0, ErrInvalidPageToken
	}

	return offset, nil
}
