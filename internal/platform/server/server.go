package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/ponto-clean-arch/internal/adapters/http/handler"
	"github.com/ogurasousui/ponto-clean-arch/internal/adapters/http/middleware"
	"github.com/ogurasousui/ponto-clean-arch/internal/core/employee"
	"github.com/ogurasousui/ponto-clean-arch/internal/core/punch"
	"github.com/ogurasousui/ponto-clean-arch/internal/platform/config"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const readHeaderTimeout = 10 * time.Second

// Server は HTTP API サーバーと gRPC ヘルスチェックサーバーのライフサイクルを管理します。
type Server struct {
	cfg        config.ServerConfig
	httpServer *http.Server
	grpcServer *grpc.Server
	health     *health.Server
}

// New は設定とユースケースから Server を構築します。
func New(cfg config.ServerConfig, punches punch.UseCase, employees employee.UseCase, opts ...grpc.ServerOption) (*Server, error) {
	engine, err := NewEngine(cfg, punches, employees)
	if err != nil {
		return nil, err
	}

	grpcServer := grpc.NewServer(opts...)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)

	return &Server{
		cfg: cfg,
		httpServer: &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           engine,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		grpcServer: grpcServer,
		health:     hs,
	}, nil
}

// NewEngine は API ルートとミドルウェアを登録した gin.Engine を生成します。
func NewEngine(cfg config.ServerConfig, punches punch.UseCase, employees employee.UseCase) (*gin.Engine, error) {
	corsCfg, err := buildCORSConfig(cfg.CORSOrigins)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.AccessLog(nil),
		cors.New(corsCfg),
		bodyLimit(cfg.BodyLimit),
	)

	if err := handler.Register(r, handler.NewPunchHandler(punches), handler.NewEmployeeHandler(employees)); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	if cfg.StaticDir != "" {
		mountStatic(r, cfg.StaticDir)
	}

	return r, nil
}

// Run は設定されたアドレスで待ち受け、コンテキストがキャンセルされるまでサービスを提供します。
// server.health_addr が空の場合、gRPC ヘルスチェックサーバーは起動しません。
func (s *Server) Run(ctx context.Context) error {
	httpLis, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.ListenAddr, err)
	}

	var healthLis net.Listener
	if s.cfg.HealthAddr != "" {
		healthLis, err = net.Listen("tcp", s.cfg.HealthAddr)
		if err != nil {
			_ = httpLis.Close()
			return fmt.Errorf("listen on %s: %w", s.cfg.HealthAddr, err)
		}
	}

	return s.Serve(ctx, httpLis, healthLis)
}

// Serve は渡されたリスナーでサーバーを起動します。healthLis は nil でも構いません。
// コンテキストのキャンセル時はヘルス状態を NOT_SERVING にしてから両サーバーを停止します。
func (s *Server) Serve(ctx context.Context, httpLis, healthLis net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	g.Go(func() error {
		log.Printf("HTTP server listening on %s", httpLis.Addr())
		if err := s.httpServer.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve HTTP: %w", err)
		}
		return nil
	})

	if healthLis != nil {
		g.Go(func() error {
			log.Printf("gRPC health server listening on %s", healthLis.Addr())
			if err := s.grpcServer.Serve(healthLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("serve gRPC: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		s.health.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()

		err := s.httpServer.Shutdown(shutdownCtx)
		s.grpcServer.GracefulStop()
		if err != nil {
			return fmt.Errorf("shutdown HTTP: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func buildCORSConfig(origins []string) (cors.Config, error) {
	corsCfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.HeaderRequestID},
		ExposeHeaders: []string{middleware.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}

	allowed := make([]string, 0, len(origins))
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		switch {
		case origin == "":
			continue
		case origin == "*":
			corsCfg.AllowAllOrigins = true
			return corsCfg, nil
		case !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://"):
			return cors.Config{}, fmt.Errorf("server: cors origin %q must start with http:// or https://", origin)
		}
		allowed = append(allowed, origin)
	}

	if len(allowed) == 0 {
		corsCfg.AllowAllOrigins = true
		return corsCfg, nil
	}

	corsCfg.AllowOrigins = allowed
	return corsCfg, nil
}

func bodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

// mountStatic は dir 配下の静的ファイルを配信し、/ には index.html を返します。
func mountStatic(r *gin.Engine, dir string) {
	index := filepath.Join(dir, "index.html")
	r.GET("/", func(c *gin.Context) {
		c.File(index)
	})

	files := http.FileServer(http.Dir(dir))
	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.JSON(http.StatusNotFound, gin.H{"message": "Rota não encontrada."})
			return
		}
		files.ServeHTTP(c.Writer, c.Request)
	})
}
