package employee

import "context"

// Repository は社員永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, employee *Employee) (*Employee, error)
	Update(ctx context.Context, employee *Employee) (*Employee, error)
	DeleteByName(ctx context.Context, name string) error
	FindByID(ctx context.Context, id int64) (*Employee, error)
	FindByName(ctx context.Context, name string) (*Employee, error)
	List(ctx context.Context) ([]*Employee, error)
}
