package database

import (
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/neolearn/neolearn/core"
)

// Open connects to the SQLite database file, creating its parent directory
// if needed.
func Open(conf *core.Config) (*sqlx.DB, error) {
	if dir := filepath.Dir(conf.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "creating data directory")
		}
	}

	db, err := sqlx.Connect("sqlite3", conf.Database.Path)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}

	// SQLite does not support multiple writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		username TEXT PRIMARY KEY,
		password_hash TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS progress (
		user_id TEXT,
		topic TEXT,
		passed BOOLEAN,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS topics (
		title TEXT PRIMARY KEY,
		prompt TEXT
	)`,
}

// defaultTopics seed an empty catalog. The prompt texts instruct the tutor
// to quiz briefly and reply with the completion marker on success; they are
// sent to the model verbatim, never parsed by this system.
var defaultTopics = [][2]string{
	{
		"Python Grundlagen",
		"Du bist ein Python-Lehrer. Erkläre einfach. Nach 2 Fragen starte Quiz. " +
			"Wenn richtig, antworte NUR mit JSON: {'status': 'passed'}",
	},
	{
		"Online Marketing",
		"Du bist Marketing-Profi. Prüfe Wissen nach 2 Fragen. " +
			"Wenn richtig, antworte NUR mit JSON: {'status': 'passed'}",
	},
}

// Migrate creates the tables and seeds the topic catalog when it is empty.
func Migrate(db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return errors.Wrap(err, "migrating database")
		}
	}

	var count int
	if err := db.Get(&count, "SELECT count(*) FROM topics"); err != nil {
		return errors.Wrap(err, "counting topics")
	}
	if count == 0 {
		for _, t := range defaultTopics {
			if _, err := db.Exec("INSERT INTO topics (title, prompt) VALUES (?, ?)", t[0], t[1]); err != nil {
				return errors.Wrap(err, "seeding topics")
			}
		}
	}
	return nil
}
