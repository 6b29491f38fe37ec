package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	mysqlrepo "github.com/ogurasousui/ponto-clean-arch/internal/adapters/repository/mysql"
	pgrepo "github.com/ogurasousui/ponto-clean-arch/internal/adapters/repository/postgres"
	"github.com/ogurasousui/ponto-clean-arch/internal/core/employee"
	"github.com/ogurasousui/ponto-clean-arch/internal/core/punch"
	"github.com/ogurasousui/ponto-clean-arch/internal/platform/config"
	sqldb "github.com/ogurasousui/ponto-clean-arch/internal/platform/db/mysql"
	pg "github.com/ogurasousui/ponto-clean-arch/internal/platform/db/postgres"
	"github.com/ogurasousui/ponto-clean-arch/internal/platform/server"
)

// storage は設定されたドライバーごとのリポジトリとトランザクション制御をまとめます。
type storage struct {
	employees employee.Repository
	punches   punch.Repository
	tx        punch.TransactionManager
	close     func()
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("failed to load .env: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	store, err := openStorage(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("failed to initialize %s storage: %v", cfg.Database.Driver, err)
	}
	defer store.close()

	employeeSvc := employee.NewService(store.employees, nil, store.tx, employee.BcryptHasher{})
	punchSvc := punch.NewService(store.punches, store.employees, employeeSvc, nil, store.tx, punch.Options{
		Location:   cfg.Punch.Location,
		RequirePIN: cfg.Punch.RequirePIN,
	})

	srv, err := server.New(cfg.Server, punchSvc, employeeSvc)
	if err != nil {
		log.Fatalf("failed to build server: %v", err)
	}

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server stopped with error: %v", err)
	}
}

func openStorage(ctx context.Context, cfg config.DatabaseConfig) (*storage, error) {
	switch cfg.Driver {
	case config.DriverMySQL:
		db, err := sqldb.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &storage{
			employees: mysqlrepo.NewEmployeeRepository(db),
			punches:   mysqlrepo.NewPunchRepository(db),
			tx:        sqldb.NewTransactionManager(db),
			close:     func() { _ = db.Close() },
		}, nil
	default:
		pool, err := pg.NewPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &storage{
			employees: pgrepo.NewEmployeeRepository(pool),
			punches:   pgrepo.NewPunchRepository(pool),
			tx:        pg.NewTransactionManager(pool),
			close:     pool.Close,
		}, nil
	}
}
