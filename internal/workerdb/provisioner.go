package workerdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"

	"gtr/internal/config"
)

// ErrInvalidDatabaseName is returned for names that cannot be used unquoted
var ErrInvalidDatabaseName = errors.New("invalid database name")

var databaseNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{1,64}$`)

// ValidateDatabaseName rejects anything but letters, digits and underscores
func ValidateDatabaseName(name string) error {
	if !databaseNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidDatabaseName, name)
	}
	return nil
}

// Credentials locate the MySQL server used by the test databases
type Credentials struct {
	Host     string
	Port     string
	User     string
	Password string
}

// LoadCredentials reads DB_* from the project .env file, with the process
// environment taking precedence.
func LoadCredentials(projectPath string) Credentials {
	vars, err := godotenv.Read(filepath.Join(projectPath, config.EnvFileName))
	if err != nil {
		// .env file might not exist, that's okay - use environment variables
		vars = map[string]string{}
	}
	get := func(key, def string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		if v := vars[key]; v != "" {
			return v
		}
		return def
	}

	return Credentials{
		Host:     get("DB_HOST", "127.0.0.1"),
		Port:     get("DB_PORT", "3306"),
		User:     get("DB_USERNAME", "root"),
		Password: get("DB_PASSWORD", ""),
	}
}

// DSN returns a server level DSN without a default database
func (c Credentials) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(c.Host, c.Port)
	cfg.Timeout = 5 * time.Second
	return cfg.FormatDSN()
}

// Ensurer makes sure every worker has a database
type Ensurer interface {
	Ensure(ctx context.Context, workerCount int) ([]int, error)
}

// Provisioner creates the per-worker test databases
type Provisioner struct {
	config *config.Config
	creds  Credentials
	logger *slog.Logger
}

// NewProvisioner creates a new Provisioner
func NewProvisioner(cfg *config.Config, logger *slog.Logger) *Provisioner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provisioner{
		config: cfg,
		creds:  LoadCredentials(cfg.ProjectPath),
		logger: logger,
	}
}

// Ensure creates missing worker databases and returns the worker ids that
// have one.
func (p *Provisioner) Ensure(ctx context.Context, workerCount int) ([]int, error) {
	db, err := sql.Open("mysql", p.creds.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database server: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database server: %w", err)
	}

	available := make([]int, 0, workerCount)
	created := 0
	for i := 1; i <= workerCount; i++ {
		name := p.config.GetDatabaseName(i)
		if err := ValidateDatabaseName(name); err != nil {
			return nil, err
		}

		exists, err := databaseExists(ctx, db, name)
		if err != nil {
			return nil, fmt.Errorf("failed to check database %s: %w", name, err)
		}
		if !exists {
			if _, err := db.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", name)); err != nil {
				return nil, fmt.Errorf("failed to create database %s: %w", name, err)
			}
			created++
		}
		available = append(available, i)
	}

	p.logger.Info("worker databases ready", "workers", len(available), "created", created)
	return available, nil
}

func databaseExists(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT SCHEMA_NAME FROM INFORMATION_SCHEMA.SCHEMATA WHERE SCHEMA_NAME = ?)"
	err := db.QueryRowContext(ctx, query, name).Scan(&exists)
	return exists, err
}
