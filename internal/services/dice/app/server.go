// Package server wires the dice runtime: gRPC, HTTP and roll history.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/roll/internal/platform/config"
	"github.com/louisbranch/roll/internal/platform/discovery"
	platformgrpc "github.com/louisbranch/roll/internal/platform/grpc"
	"github.com/louisbranch/roll/internal/platform/timeouts"
	"github.com/louisbranch/roll/internal/services/dice/api/grpc/rolls"
	"github.com/louisbranch/roll/internal/services/dice/api/grpc/rollv1"
	"github.com/louisbranch/roll/internal/services/dice/api/rest"
	"github.com/louisbranch/roll/internal/services/dice/service"
	"github.com/louisbranch/roll/internal/services/dice/storage"
	rollredis "github.com/louisbranch/roll/internal/services/dice/storage/redis"
	rollsqlite "github.com/louisbranch/roll/internal/services/dice/storage/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// History store kinds.
const (
	StoreNone   = "none"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Config holds the dice server settings.
type Config struct {
	Port     int    `env:"ROLL_DICE_PORT" envDefault:"8090"`
	HTTPAddr string `env:"ROLL_DICE_HTTP_ADDR" envDefault:"localhost:8091"`

	Store         string        `env:"ROLL_HISTORY_STORE" envDefault:"none"`
	SQLitePath    string        `env:"ROLL_HISTORY_SQLITE_PATH" envDefault:"data/rolls.db"`
	RedisAddr     string        `env:"ROLL_HISTORY_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"ROLL_HISTORY_REDIS_PASSWORD"`
	RedisDB       int           `env:"ROLL_HISTORY_REDIS_DB"`
	RedisPrefix   string        `env:"ROLL_HISTORY_REDIS_PREFIX" envDefault:"roll:history:"`
	RedisTTL      time.Duration `env:"ROLL_HISTORY_REDIS_TTL"`

	CORSOrigins []string `env:"ROLL_HTTP_CORS_ORIGINS" envSeparator:","`

	Dice service.Config
}

// LoadConfig reads Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Server hosts the dice gRPC and HTTP APIs.
type Server struct {
	listener     net.Listener
	httpListener net.Listener
	grpcServer   *grpc.Server
	httpServer   *http.Server
	health       *health.Server
	store        storage.RollStore
}

// New creates a server listening on the configured gRPC port and HTTP address.
func New(cfg Config) (*Server, error) {
	return NewWithAddr(fmt.Sprintf(":%d", cfg.Port), cfg)
}

// NewWithAddr creates a server with an explicit gRPC address. An empty
// cfg.HTTPAddr disables the HTTP API.
func NewWithAddr(addr string, cfg Config) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	var httpListener net.Listener
	if httpAddr := strings.TrimSpace(cfg.HTTPAddr); httpAddr != "" {
		httpListener, err = net.Listen("tcp", httpAddr)
		if err != nil {
			_ = listener.Close()
			return nil, fmt.Errorf("listen on %s: %w", httpAddr, err)
		}
	}
	closeListeners := func() {
		_ = listener.Close()
		if httpListener != nil {
			_ = httpListener.Close()
		}
	}

	store, err := openStore(context.Background(), cfg)
	if err != nil {
		closeListeners()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := service.NewMetrics(registry)
	if err != nil {
		closeListeners()
		closeStore(store)
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	opts := []service.Option{service.WithMetrics(metrics), service.WithMaxCount(cfg.Dice.MaxCount)}
	if store != nil {
		opts = append(opts, service.WithStore(store))
	}
	diceService := service.New(opts...)

	grpcServer, healthServer := platformgrpc.NewServer()
	rollv1.RegisterDiceServiceServer(grpcServer, rolls.NewService(diceService))
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(rollv1.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	var httpServer *http.Server
	if httpListener != nil {
		httpServer = &http.Server{
			Handler: rest.NewRouter(diceService,
				rest.WithGatherer(registry),
				rest.WithCORSOrigins(cfg.CORSOrigins),
			),
			ReadHeaderTimeout: timeouts.ReadHeader,
		}
	}

	return &Server{
		listener:     listener,
		httpListener: httpListener,
		grpcServer:   grpcServer,
		httpServer:   httpServer,
		health:       healthServer,
		store:        store,
	}, nil
}

// Addr returns the gRPC listener address.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// HTTPAddr returns the HTTP listener address, empty when HTTP is disabled.
func (s *Server) HTTPAddr() string {
	if s == nil || s.httpListener == nil {
		return ""
	}
	return s.httpListener.Addr().String()
}

// Run creates and serves a dice server until context cancellation.
func Run(ctx context.Context, cfg Config) error {
	server, err := New(cfg)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve runs the gRPC and HTTP servers until ctx is cancelled or one fails.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	group, ctx := errgroup.WithContext(ctx)

	log.Printf("dice gRPC server listening at %v", s.listener.Addr())
	group.Go(func() error {
		if err := platformgrpc.Serve(ctx, s.grpcServer, s.listener); err != nil {
			return fmt.Errorf("serve gRPC: %w", err)
		}
		return nil
	})

	if s.httpServer != nil {
		log.Printf("dice HTTP server listening at %v", s.httpListener.Addr())
		group.Go(func() error {
			err := s.httpServer.Serve(s.httpListener)
			if err == nil || errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("serve HTTP: %w", err)
		})
		group.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
			defer cancel()
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown HTTP: %w", err)
			}
			return nil
		})
	}

	group.Go(func() error {
		<-ctx.Done()
		if s.health != nil {
			s.health.Shutdown()
		}
		return nil
	})

	return group.Wait()
}

// Close releases server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.health != nil {
		s.health.Shutdown()
	}
	if s.grpcServer != nil {
		s.grpcServer.Stop()
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if s.httpListener != nil {
		_ = s.httpListener.Close()
	}
	closeStore(s.store)
	s.store = nil
}

func openStore(ctx context.Context, cfg Config) (storage.RollStore, error) {
	switch kind := strings.ToLower(strings.TrimSpace(cfg.Store)); kind {
	case "", StoreNone:
		return nil, nil
	case StoreSQLite:
		path := strings.TrimSpace(cfg.SQLitePath)
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create storage dir: %w", err)
			}
		}
		store, err := rollsqlite.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open roll sqlite store: %w", err)
		}
		return store, nil
	case StoreRedis:
		addr := discovery.OrDefaultTCPAddr(cfg.RedisAddr, discovery.ServiceRedis)
		store, err := rollredis.New(addr, cfg.RedisPassword, cfg.RedisDB,
			rollredis.WithPrefix(cfg.RedisPrefix),
			rollredis.WithTTL(cfg.RedisTTL),
		)
		if err != nil {
			return nil, fmt.Errorf("open roll redis store: %w", err)
		}
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown history store %q (want none, sqlite or redis)", cfg.Store)
	}
}

func closeStore(store storage.RollStore) {
	if store == nil {
		return
	}
	if err := store.Close(); err != nil {
		log.Printf("close roll store: %v", err)
	}
}
