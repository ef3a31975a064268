package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DB is the global database connection
var DB *sqlx.DB

// Connect establishes a connection to the database. DB_TYPE selects the
// backend: "sqlite" (default, file under data/) or "postgres" (DATABASE_URL).
func Connect() error {
	dbType := os.Getenv("DB_TYPE")
	if dbType == "" {
		dbType = "sqlite"
	}

	if dbType == "postgres" {
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			return fmt.Errorf("DATABASE_URL environment variable is not set")
		}
		db, err := sqlx.Connect("postgres", dsn)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %v", err)
		}
		DB = db
		return initializeSchema()
	}

	// SQLite
	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dataDir := "data"
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %v", err)
		}
		dbPath = filepath.Join(dataDir, "studyplanner.db")
	}

	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %v", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %v", err)
	}

	// SQLite doesn't support multiple writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	DB = db
	return initializeSchema()
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// pk returns the primary key column DDL for the active backend
func pk() string {
	if DB.DriverName() == "postgres" {
		return "BIGSERIAL PRIMARY KEY"
	}
	return "INTEGER PRIMARY KEY AUTOINCREMENT"
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema() error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id {PK},
			name TEXT NOT NULL,
			grade TEXT NOT NULL,
			board TEXT NOT NULL,
			daily_duration_minutes INTEGER NOT NULL,
			weekly_frequency INTEGER NOT NULL,
			subjects TEXT NOT NULL,
			notification_enabled BOOLEAN DEFAULT true,
			notification_hour INTEGER DEFAULT 17,
			telegram_id BIGINT DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS newsletters (
			id {PK},
			user_id INTEGER NOT NULL,
			month TEXT NOT NULL,
			year INTEGER NOT NULL,
			file_path TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id)
		)`,
		`CREATE TABLE IF NOT EXISTS curriculum_items (
			id {PK},
			newsletter_id INTEGER NOT NULL,
			subject TEXT NOT NULL,
			topic TEXT NOT NULL,
			start_date DATE NOT NULL,
			end_date DATE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (newsletter_id) REFERENCES newsletters(id)
		)`,
		`CREATE TABLE IF NOT EXISTS learning_history (
			id {PK},
			user_id INTEGER NOT NULL,
			subject TEXT NOT NULL,
			topic TEXT NOT NULL,
			easiness_factor REAL DEFAULT 2.5,
			interval INTEGER DEFAULT 1,
			repetitions INTEGER DEFAULT 0,
			last_reviewed DATE,
			next_review DATE NOT NULL,
			version INTEGER DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id),
			UNIQUE(user_id, subject, topic)
		)`,
		`CREATE TABLE IF NOT EXISTS study_sessions (
			id {PK},
			user_id INTEGER NOT NULL,
			learning_history_id INTEGER NOT NULL,
			session_date DATE NOT NULL,
			session_type TEXT NOT NULL,
			quality_rating INTEGER,
			notes TEXT DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id),
			FOREIGN KEY (learning_history_id) REFERENCES learning_history(id)
		)`,
		`CREATE TABLE IF NOT EXISTS weekly_plans (
			id {PK},
			plan_id TEXT NOT NULL UNIQUE,
			user_id INTEGER NOT NULL,
			week_start_date DATE NOT NULL,
			plan_data TEXT NOT NULL,
			focus_request TEXT DEFAULT '',
			events TEXT DEFAULT '',
			generated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id)
		)`,
	}

	for _, ddl := range tables {
		if _, err := DB.Exec(strings.Replace(ddl, "{PK}", pk(), 1)); err != nil {
			return fmt.Errorf("failed to create table: %v", err)
		}
	}
	return nil
}
