// Package pgstore is an optional durable index over Luxera projects,
// jobs, and audit events, fronting Postgres via GORM the way the
// teacher's services/database.DatabaseService fronts its own store. It
// never replaces the canonical on-disk project JSON written by
// internal/project.Save — this is a queryable side index for
// multi-user deployments (listing projects, searching audit history)
// on top of the content-addressed filesystem that stays authoritative.
package pgstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"luxera/internal/project"
)

// ProjectRow indexes a project by name and root directory.
type ProjectRow struct {
	ID        string `gorm:"primaryKey"`
	Name      string `gorm:"index"`
	RootDir   string
	SchemaVer int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// JobRow indexes one run of a job against a project, pointing at the
// content-addressed result directory rather than duplicating result
// data.
type JobRow struct {
	ID          string `gorm:"primaryKey"`
	ProjectID   string `gorm:"index"`
	JobID       string
	JobHash     string `gorm:"index"`
	ResultDir   string
	SolverVer   string
	BackendID   string
	CreatedAt   time.Time
}

// AuditRow indexes one formatted agent/ops audit line against its
// project, so a deployment can query history without reading every
// project.json off disk. Its ID is a non-content-addressed uuid (spec
// invariant 7's content hashing governs job/result identity, not
// audit-row identity, which only needs to be unique per insert).
type AuditRow struct {
	ID        string `gorm:"primaryKey"`
	ProjectID string `gorm:"index"`
	Line      string
	CreatedAt time.Time
}

// Store wraps a *gorm.DB with the Luxera-specific read/write helpers.
// It carries a *zap.Logger field the way the teacher's
// TransactionManager does, for structured logging around connect and
// migrate.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Config configures the Postgres connection, mirroring the fields
// db.Connect derives from DATABASE_URL and the DB_* environment
// variables.
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogLevel        gormlogger.LogLevel
}

// DefaultConfig returns the pool-tuning defaults loadConnectionConfig
// falls back to when no DB_* overrides are present.
func DefaultConfig(dsn string) Config {
	return Config{
		DSN:             dsn,
		MaxOpenConns:    100,
		MaxIdleConns:    25,
		ConnMaxLifetime: time.Hour,
		LogLevel:        gormlogger.Warn,
	}
}

// Open connects to Postgres and configures the connection pool.
func Open(cfg Config, logger *zap.Logger) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("pgstore: DSN is empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(cfg.LogLevel),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("pgstore: connect: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("pgstore: underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	logger.Info("pgstore connected",
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.MaxIdleConns))

	return &Store{db: db, logger: logger}, nil
}

// Migrate creates or updates the project/job/audit tables.
func (s *Store) Migrate(ctx context.Context) error {
	err := s.db.WithContext(ctx).AutoMigrate(&ProjectRow{}, &JobRow{}, &AuditRow{})
	if err != nil {
		return fmt.Errorf("pgstore: migrate: %w", err)
	}
	return nil
}

// UpsertProject indexes a project's identity fields. It is safe to call
// on every Save; it never touches the project's authored content.
func (s *Store) UpsertProject(ctx context.Context, p *project.Project) error {
	row := ProjectRow{
		ID:        p.Name,
		Name:      p.Name,
		RootDir:   p.RootDir,
		SchemaVer: p.SchemaVersion,
		UpdatedAt: timeNow(),
	}
	err := s.db.WithContext(ctx).
		Where(ProjectRow{ID: row.ID}).
		Assign(row).
		FirstOrCreate(&row).Error
	if err != nil {
		return fmt.Errorf("pgstore: upsert project %s: %w", p.Name, err)
	}
	return nil
}

// RecordJob indexes one job result alongside its content-addressed
// result directory.
func (s *Store) RecordJob(ctx context.Context, projectID string, ref project.JobResultRef, job project.JobSpec) error {
	row := JobRow{
		ID:        projectID + "/" + ref.JobHash,
		ProjectID: projectID,
		JobID:     ref.JobID,
		JobHash:   ref.JobHash,
		ResultDir: ref.ResultDir,
		SolverVer: job.SolverVersion,
		BackendID: job.BackendID,
		CreatedAt: timeNow(),
	}
	err := s.db.WithContext(ctx).
		Where(JobRow{ID: row.ID}).
		Assign(row).
		FirstOrCreate(&row).Error
	if err != nil {
		return fmt.Errorf("pgstore: record job %s: %w", ref.JobID, err)
	}
	return nil
}

// AppendAudit indexes one formatted audit line (the same strings
// appended to project.Project.AgentHistory) for cross-project queries.
func (s *Store) AppendAudit(ctx context.Context, projectID, line string) error {
	row := AuditRow{ID: uuid.NewString(), ProjectID: projectID, Line: line, CreatedAt: timeNow()}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("pgstore: append audit: %w", err)
	}
	return nil
}

// ListProjects returns every indexed project, most recently updated
// first.
func (s *Store) ListProjects(ctx context.Context) ([]ProjectRow, error) {
	var rows []ProjectRow
	if err := s.db.WithContext(ctx).Order("updated_at desc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("pgstore: list projects: %w", err)
	}
	return rows, nil
}

// AuditHistory returns a project's indexed audit lines, oldest first.
func (s *Store) AuditHistory(ctx context.Context, projectID string) ([]AuditRow, error) {
	var rows []AuditRow
	err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("pgstore: audit history: %w", err)
	}
	return rows, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("pgstore: underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

func timeNow() time.Time {
	return time.Now().UTC()
}
