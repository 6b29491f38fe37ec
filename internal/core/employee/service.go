package employee

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
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
	maxNameLength = 120
	// これ以下の長さのプロフィール写真はクライアントの空値とみなします。
	minProfilePhotoLength = 100
)

// Service は社員に関するユースケースをまとめます。
type Service struct {
	repo   Repository
	clock  Clock
	tx     TransactionManager
	hasher PINHasher
}

// UseCase は社員ユースケースの公開インターフェースです。
type UseCase interface {
	SaveEmployee(ctx context.Context, in SaveEmployeeInput) (*Employee, error)
	GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error)
	ListEmployees(ctx context.Context) ([]*Employee, error)
	DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) error
}

// NewService は Service を生成します。hasher が nil の場合は bcrypt を利用します。
func NewService(repo Repository, clock Clock, tx TransactionManager, hasher PINHasher) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	if hasher == nil {
		hasher = BcryptHasher{}
	}
	return &Service{repo: repo, clock: clock, tx: tx, hasher: hasher}
}

// SaveEmployeeInput は社員の登録・更新 (upsert) 時の入力です。
// ID が 0 の場合は新規登録、それ以外は既存社員の更新として扱います。
type SaveEmployeeInput struct {
	ID           int64
	Name         string
	PIN          *string
	LunchBreak   string
	Workdays     string
	ProfilePhoto *string
	BiometricID  *string
}

// GetEmployeeInput は社員取得時の入力です。
type GetEmployeeInput struct {
	ID int64
}

// DeleteEmployeeInput は社員削除時の入力です。
type DeleteEmployeeInput struct {
	Name string
}

// SaveEmployee は社員を新規登録、または既存社員を更新します。
func (s *Service) SaveEmployee(ctx context.Context, in SaveEmployeeInput) (*Employee, error) {
	if in.ID < 0 {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	name, err := NormalizeName(in.Name)
	if err != nil {
		return nil, err
	}

	var pinHash string
	if in.PIN != nil {
		pin := strings.TrimSpace(*in.PIN)
		if err := ValidatePIN(pin); err != nil {
			return nil, err
		}
		if pinHash, err = s.hasher.Hash(pin); err != nil {
			return nil, err
		}
	}

	photo := normalizeProfilePhoto(in.ProfilePhoto)
	biometricID := normalizeOptional(in.BiometricID)

	if in.ID == 0 {
		if pinHash == "" {
			if pinHash, err = s.hasher.Hash(DefaultPIN); err != nil {
				return nil, err
			}
		}
		return s.create(ctx, &Employee{
			Name:         name,
			PINHash:      pinHash,
			LunchBreak:   strings.TrimSpace(in.LunchBreak),
			Workdays:     strings.TrimSpace(in.Workdays),
			ProfilePhoto: photo,
			BiometricID:  biometricID,
		})
	}

	var updated *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}

		if name != existing.Name {
			if err := s.ensureNameNotExists(txCtx, name); err != nil {
				return err
			}
			existing.Name = name
		}

		if pinHash != "" {
			existing.PINHash = pinHash
		}
		if photo != nil {
			existing.ProfilePhoto = photo
		}
		existing.LunchBreak = strings.TrimSpace(in.LunchBreak)
		existing.Workdays = strings.TrimSpace(in.Workdays)
		existing.BiometricID = biometricID
		existing.UpdatedAt = s.clock.Now()

		result, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}
		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

func (s *Service) create(ctx context.Context, emp *Employee) (*Employee, error) {
	var created *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.ensureNameNotExists(txCtx, emp.Name); err != nil {
			return err
		}

		now := s.clock.Now()
		emp.CreatedAt = now
		emp.UpdatedAt = now

		result, err := s.repo.Create(txCtx, emp)
		if err != nil {
			return err
		}
		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// GetEmployee は社員を取得します。
func (s *Service) GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error) {
	if in.ID <= 0 {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var result *Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// ListEmployees は全社員を名前順で取得します。
func (s *Service) ListEmployees(ctx context.Context) ([]*Employee, error) {
	var employees []*Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.List(txCtx)
		if err != nil {
			return err
		}
		employees = found
		return nil
	}); err != nil {
		return nil, err
	}

	return employees, nil
}

// DeleteEmployee は名前で社員を削除します。打刻履歴は永続化層でカスケード削除されます。
func (s *Service) DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) error {
	name, err := NormalizeName(in.Name)
	if err != nil {
		return err
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.repo.DeleteByName(txCtx, name)
	})
}

// VerifyPIN は社員の PIN を照合します。
func (s *Service) VerifyPIN(emp *Employee, pin string) error {
	if emp == nil {
		return ErrEmployeeNotFound
	}
	if emp.PINHash == "" {
		return ErrPINMismatch
	}
	return s.hasher.Compare(emp.PINHash, strings.TrimSpace(pin))
}

func (s *Service) ensureNameNotExists(ctx context.Context, name string) error {
	emp, err := s.repo.FindByName(ctx, name)
	if err != nil && !errors.Is(err, ErrEmployeeNotFound) {
		return err
	}
	if emp != nil {
		return ErrNameAlreadyExists
	}
	return nil
}

// NormalizeName は社員名を NFC に正規化して前後の空白を除去し、長さを検証します。
// 打刻時の社員検索キーになるため、合成済み・分解済みのアクセントを同一視させます。
func NormalizeName(raw string) (string, error) {
	trimmed := strings.TrimSpace(norm.NFC.String(raw))
	if trimmed == "" || utf8.RuneCountInString(trimmed) > maxNameLength {
		return "", ErrInvalidName
	}
	return trimmed, nil
}

func normalizeProfilePhoto(photo *string) *string {
	if photo == nil || len(*photo) <= minProfilePhotoLength {
		return nil
	}
	clone := *photo
	return &clone
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
