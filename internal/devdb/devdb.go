// Package devdb starts throwaway database containers for development and
// integration tests.
package devdb

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/localnerve/gigcrew/internal/config"
	"github.com/localnerve/gigcrew/internal/logging"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// Defaults for a development Postgres.
const (
	DefaultImage    = "postgres:17-alpine"
	DefaultDatabase = "gigcrew"
	DefaultUser     = "gigcrew"
	DefaultPassword = "gigcrew"
)

// Options describe the Postgres container. Zero values take the defaults.
type Options struct {
	Image    string
	Database string
	User     string
	Password string
	// HostPort binds the container port to a fixed host port when set.
	HostPort string
}

func (o *Options) defaults() {
	if o.Image == "" {
		o.Image = DefaultImage
	}
	if o.Database == "" {
		o.Database = DefaultDatabase
	}
	if o.User == "" {
		o.User = DefaultUser
	}
	if o.Password == "" {
		o.Password = DefaultPassword
	}
}

// Postgres is a running database container.
type Postgres struct {
	Container testcontainers.Container
	Host      string
	Port      string
	opts      Options
}

// StartPostgres runs a Postgres container and waits until it accepts connections.
func StartPostgres(ctx context.Context, opts Options) (*Postgres, error) {
	opts.defaults()

	tcpPort, err := nat.NewPort("tcp", "5432")
	if err != nil {
		return nil, fmt.Errorf("failed to create DB port: %w", err)
	}

	exposed := string(tcpPort)
	if opts.HostPort != "" {
		exposed = opts.HostPort + ":" + string(tcpPort)
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        opts.Image,
			ExposedPorts: []string{exposed},
			Env: map[string]string{
				"POSTGRES_DB":       opts.Database,
				"POSTGRES_USER":     opts.User,
				"POSTGRES_PASSWORD": opts.Password,
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort(tcpPort),
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			).WithDeadline(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get postgres host: %w", err)
	}
	mapped, err := container.MappedPort(ctx, tcpPort)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get postgres port: %w", err)
	}

	logging.L().Info("postgres container started",
		zap.String("host", host),
		zap.String("port", mapped.Port()),
		zap.String("database", opts.Database))

	return &Postgres{Container: container, Host: host, Port: mapped.Port(), opts: opts}, nil
}

// Apply points cfg at the container.
func (p *Postgres) Apply(cfg *config.Config) {
	cfg.DBType = "postgres"
	cfg.DBHost = p.Host
	cfg.DBPort = p.Port
	cfg.DBDatabase = p.opts.Database
	cfg.DBAppUser = p.opts.User
	cfg.DBAppPassword = p.opts.Password
	if cfg.DBAppConnectionLimit == 0 {
		cfg.DBAppConnectionLimit = 5
	}
}

// Env returns the DB_* variables that reach the container.
func (p *Postgres) Env() map[string]string {
	return map[string]string{
		"DB_TYPE":         "postgres",
		"DB_HOST":         p.Host,
		"DB_PORT":         p.Port,
		"DB_DATABASE":     p.opts.Database,
		"DB_APP_USER":     p.opts.User,
		"DB_APP_PASSWORD": p.opts.Password,
	}
}

// Terminate stops and removes the container.
func (p *Postgres) Terminate(ctx context.Context) error {
	if p == nil || p.Container == nil {
		return nil
	}
	return p.Container.Terminate(ctx)
}
