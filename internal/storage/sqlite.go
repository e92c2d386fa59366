// internal/storage/sqlite.go
package storage

import (
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

type SQLiteStorage struct {
	db  *sql.DB
	log *zap.Logger
}

func NewSQLiteStorage(dbPath string, log *zap.Logger) (*SQLiteStorage, error) {
	if log == nil {
		log = zap.NewNop()
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite has a single writer.
	db.SetMaxOpenConns(1)

	storage := &SQLiteStorage{db: db, log: log}
	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	log.Debug("database ready", zap.String("path", dbPath))
	return storage, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS cuisines (
        id TEXT PRIMARY KEY,
        name TEXT NOT NULL,
        description TEXT NOT NULL DEFAULT ''
    );

    CREATE TABLE IF NOT EXISTS ingredients (
        id TEXT PRIMARY KEY,
        cuisine_id TEXT NOT NULL,
        name TEXT NOT NULL,
        category TEXT NOT NULL,
        calories_per_100g REAL NOT NULL,
        protein_per_100g REAL NOT NULL,
        carbs_per_100g REAL NOT NULL,
        fats_per_100g REAL NOT NULL,
        cost_per_100g REAL NOT NULL,
        position INTEGER NOT NULL DEFAULT 0,
        FOREIGN KEY (cuisine_id) REFERENCES cuisines(id) ON DELETE CASCADE
    );

    CREATE TABLE IF NOT EXISTS signature_meals (
        id TEXT PRIMARY KEY,
        name TEXT NOT NULL,
        description TEXT,
        cuisine_id TEXT,
        image_url TEXT,
        total_calories REAL,
        total_protein REAL,
        total_carbs REAL,
        total_fats REAL,
        base_price REAL,
        tier TEXT,
        chef_notes TEXT,
        is_featured INTEGER NOT NULL DEFAULT 0,
        is_active INTEGER NOT NULL DEFAULT 1
    );

    CREATE TABLE IF NOT EXISTS user_profiles (
        id TEXT PRIMARY KEY,
        full_name TEXT NOT NULL DEFAULT '',
        age REAL NOT NULL DEFAULT 0,
        weight REAL NOT NULL DEFAULT 0,
        height REAL NOT NULL DEFAULT 0,
        activity_level TEXT NOT NULL DEFAULT '',
        fitness_goal TEXT NOT NULL DEFAULT '',
        daily_calories INTEGER NOT NULL DEFAULT 0,
        daily_protein INTEGER NOT NULL DEFAULT 0,
        created_at TEXT NOT NULL,
        updated_at TEXT NOT NULL
    );

    CREATE TABLE IF NOT EXISTS user_meals (
        id TEXT PRIMARY KEY,
        user_id TEXT NOT NULL,
        name TEXT NOT NULL,
        meal_type TEXT NOT NULL DEFAULT '',
        signature_meal_id TEXT NOT NULL DEFAULT '',
        ingredients TEXT NOT NULL DEFAULT '[]',
        total_calories REAL NOT NULL,
        total_protein REAL NOT NULL,
        total_carbs REAL NOT NULL,
        total_fats REAL NOT NULL,
        total_cost REAL NOT NULL,
        tier TEXT NOT NULL,
        created_at TEXT NOT NULL
    );

    CREATE TABLE IF NOT EXISTS user_stats (
        id TEXT PRIMARY KEY,
        user_id TEXT NOT NULL,
        date TEXT NOT NULL,
        calories_consumed REAL NOT NULL DEFAULT 0,
        calories_burned REAL NOT NULL DEFAULT 0,
        current_weight REAL NOT NULL DEFAULT 0,
        strength_index REAL NOT NULL DEFAULT 0,
        created_at TEXT NOT NULL,
        updated_at TEXT NOT NULL,
        UNIQUE (user_id, date)
    );

    CREATE INDEX IF NOT EXISTS idx_ingredients_cuisine ON ingredients(cuisine_id);
    CREATE INDEX IF NOT EXISTS idx_user_meals_user_created ON user_meals(user_id, created_at);
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// timeLayout is fixed-width RFC 3339 so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
