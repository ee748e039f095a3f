// Copyright © 2024 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package archive stores finished games in a sqlite database.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Game is a finished game.
type Game struct {
	ID      string
	Session string

	EngineWhite bool

	Started time.Time
	Ended   time.Time

	Result string // result marker, "*" if unknown
	Reason string

	Moves []string
}

var (
	ErrNotFound  = errors.New("archive: game not found")
	ErrAmbiguous = errors.New("archive: game id is ambiguous")
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id           TEXT PRIMARY KEY,
	session      TEXT NOT NULL,
	engine_white INTEGER NOT NULL,
	started      INTEGER NOT NULL,
	ended        INTEGER NOT NULL,
	result       TEXT NOT NULL,
	reason       TEXT NOT NULL,
	moves        TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS games_ended ON games (ended);
`

// Store is a sqlite backed game archive.
type Store struct {
	db *sql.DB
}

// Open opens the archive at the given path, creating it if necessary.
// The path ":memory:" opens a temporary in-memory archive.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("archive: open %s: %w", path, err)
	}

	// a single connection serializes writers, and keeps in-memory
	// databases from being split across connections
	db.SetMaxOpenConns(1)

	pragmas := []string{"PRAGMA busy_timeout=10000"}
	if path != ":memory:" {
		pragmas = append(pragmas, "PRAGMA journal_mode=WAL")
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("archive: %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("archive: create schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (store *Store) Close() error {
	return store.db.Close()
}

// Record stores the given game, assigning it a new identifier unless it
// already has one. It returns the identifier of the stored game.
func (store *Store) Record(ctx context.Context, game Game) (string, error) {
	if game.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return "", fmt.Errorf("archive: new id: %w", err)
		}

		game.ID = id.String()
	}

	if game.Result == "" {
		game.Result = "*"
	}

	if game.Ended.IsZero() {
		game.Ended = time.Now()
	}

	_, err := store.db.ExecContext(ctx,
		`INSERT INTO games (id, session, engine_white, started, ended, result, reason, moves)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		game.ID, game.Session, game.EngineWhite,
		unix(game.Started), unix(game.Ended),
		game.Result, game.Reason, strings.Join(game.Moves, " "),
	)

	if err != nil {
		return "", fmt.Errorf("archive: record %s: %w", game.ID, err)
	}

	return game.ID, nil
}

// List returns the most recently ended games, newest first. A limit less
// than one lists every game.
func (store *Store) List(ctx context.Context, limit int) ([]Game, error) {
	if limit < 1 {
		limit = -1
	}

	rows, err := store.db.QueryContext(ctx,
		`SELECT id, session, engine_white, started, ended, result, reason, moves
		FROM games ORDER BY ended DESC, id DESC LIMIT ?`, limit,
	)

	if err != nil {
		return nil, fmt.Errorf("archive: list: %w", err)
	}

	defer rows.Close()

	var games []Game
	for rows.Next() {
		game, err := scan(rows)
		if err != nil {
			return nil, err
		}

		games = append(games, game)
	}

	return games, rows.Err()
}

// Get returns the game with the given identifier, or the only game whose
// identifier starts with it.
func (store *Store) Get(ctx context.Context, id string) (Game, error) {
	if id == "" {
		return Game{}, ErrNotFound
	}

	rows, err := store.db.QueryContext(ctx,
		`SELECT id, session, engine_white, started, ended, result, reason, moves
		FROM games WHERE id = ? OR substr(id, 1, ?) = ? LIMIT 2`,
		id, len(id), id,
	)

	if err != nil {
		return Game{}, fmt.Errorf("archive: get %s: %w", id, err)
	}

	defer rows.Close()

	var games []Game
	for rows.Next() {
		game, err := scan(rows)
		if err != nil {
			return Game{}, err
		}

		games = append(games, game)
	}

	if err := rows.Err(); err != nil {
		return Game{}, err
	}

	switch len(games) {
	case 0:
		return Game{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	case 1:
		return games[0], nil
	default:
		return Game{}, fmt.Errorf("%w: %s", ErrAmbiguous, id)
	}
}

func scan(rows *sql.Rows) (Game, error) {
	var (
		game           Game
		started, ended int64
		moves          string
	)

	err := rows.Scan(
		&game.ID, &game.Session, &game.EngineWhite,
		&started, &ended,
		&game.Result, &game.Reason, &moves,
	)

	if err != nil {
		return Game{}, fmt.Errorf("archive: scan: %w", err)
	}

	game.Started, game.Ended = fromUnix(started), fromUnix(ended)
	game.Moves = strings.Fields(moves)
	return game, nil
}

func unix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}

	return t.UnixMilli()
}

func fromUnix(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}

	return time.UnixMilli(ms)
}
