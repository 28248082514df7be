package storage

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/go-monolith/mono"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// StorageModule owns the SQLite database and the repositories built on
// it. Other modules receive the repositories by injection in main.
type StorageModule struct {
	db       *gorm.DB
	messages *MessageRepository
	levels   *LevelRepository
	dbPath   string
}

// Compile-time interface checks.
var _ mono.Module = (*StorageModule)(nil)
var _ mono.HealthCheckableModule = (*StorageModule)(nil)

// NewModule creates a new StorageModule.
func NewModule() *StorageModule {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "hunt-chat.db"
	}
	return &StorageModule{
		dbPath: dbPath,
	}
}

// Name returns the module name.
func (m *StorageModule) Name() string {
	return "storage"
}

// Messages returns the message repository. Valid after Start.
func (m *StorageModule) Messages() *MessageRepository {
	return m.messages
}

// Levels returns the level repository. Valid after Start.
func (m *StorageModule) Levels() *LevelRepository {
	return m.levels
}

// Start opens the database, runs migrations and seeds dev levels.
func (m *StorageModule) Start(ctx context.Context) error {
	log.Printf("[storage] Connecting to SQLite database: %s", m.dbPath)

	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "true" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	if err := m.db.AutoMigrate(&ChatMessage{}, &Level{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	m.messages = NewMessageRepository(m.db)
	m.levels = NewLevelRepository(m.db)

	if err := m.seedLevels(ctx); err != nil {
		return err
	}

	log.Println("[storage] Module started successfully")
	return nil
}

// seedLevels creates placeholder levels 1..SEED_LEVELS when the table
// is empty. Real level data is uploaded by the game's admin tooling;
// this only keeps local development usable.
func (m *StorageModule) seedLevels(ctx context.Context) error {
	seed := os.Getenv("SEED_LEVELS")
	if seed == "" {
		return nil
	}

	n, err := strconv.Atoi(seed)
	if err != nil || n <= 0 {
		return fmt.Errorf("invalid SEED_LEVELS value: %q", seed)
	}

	count, err := m.levels.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for i := 1; i <= n; i++ {
		level := &Level{
			Number: i,
			Name:   fmt.Sprintf("Level %d", i),
		}
		if err := m.levels.Create(ctx, level); err != nil {
			return err
		}
	}

	log.Printf("[storage] Seeded %d placeholder levels", n)
	return nil
}

// Stop gracefully closes the database connection.
func (m *StorageModule) Stop(_ context.Context) error {
	if m.db == nil {
		return nil
	}

	log.Println("[storage] Closing database connection...")

	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	log.Println("[storage] Database connection closed")
	return nil
}

// Health performs a health check on the storage module.
func (m *StorageModule) Health(ctx context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get sql.DB: %v", err),
		}
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"driver": "sqlite",
			"path":   m.dbPath,
		},
	}
}
