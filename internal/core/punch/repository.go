package punch

import (
	"context"
	"time"

	"github.com/ogurasousui/ponto-clean-arch/internal/core/employee"
)

// Repository は打刻記録永続化の抽象です。
type Repository interface {
	// Insert は打刻記録と、写真があればその写真を保存します。
	Insert(ctx context.Context, record *Record) (*Record, error)
	List(ctx context.Context, filter ListFilter) ([]*Record, string, error)
}

// EmployeeFinder は打刻者の検索に利用する社員参照の抽象です。
type EmployeeFinder interface {
	FindByName(ctx context.Context, name string) (*employee.Employee, error)
}

// PINVerifier は社員の PIN 照合を行います。
type PINVerifier interface {
	VerifyPIN(emp *employee.Employee, pin string) error
}

// ListFilter は打刻一覧取得用フィルタです。
type ListFilter struct {
	EmployeeName string
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}
