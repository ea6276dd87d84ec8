// Package store keeps a library of level files in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/pixelplumber/plumber/levelfile"
	_ "modernc.org/sqlite"
)

const (
	ErrTypeLevelNotFound  = "level_not_found"
	ErrTypeDigestMismatch = "level_digest_mismatch"
)

// LevelInfo describes a stored level.
type LevelInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Digest    string    `json:"digest"`
	Size      int       `json:"size"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Entities  int       `json:"entities"`
	CreatedAt time.Time `json:"created_at"`
}

// DB is a level library backed by SQLite.
type DB struct {
	conn *sql.DB
}

// Open opens or creates the library at path.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.New("opening level database failed").
			WithTag("path", path).
			Wrap(err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, errors.New("configuring level database failed").
				WithTag("path", path).
				WithTag("pragma", pragma).
				Wrap(err)
		}
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS levels (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		digest TEXT NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		entities INTEGER NOT NULL,
		data BLOB NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_levels_name ON levels(name);
	CREATE INDEX IF NOT EXISTS idx_levels_digest ON levels(digest);
	`
	if _, err := db.conn.Exec(schema); err != nil {
		return errors.New("migrating level database failed").Wrap(err)
	}
	return nil
}

// Digest returns the keccak256 digest of an encoded level file.
func Digest(data []byte) string {
	return crypto.Keccak256Hash(data).Hex()
}

// Save stores f under name and returns the description of the new entry.
func (db *DB) Save(ctx context.Context, name string, f *levelfile.File) (LevelInfo, error) {
	data, err := levelfile.Marshal(f)
	if err != nil {
		return LevelInfo{}, errors.New("encoding level failed").
			WithTag("name", name).
			Wrap(err)
	}

	info := LevelInfo{
		ID:        uuid.NewString(),
		Name:      name,
		Digest:    Digest(data),
		Size:      len(data),
		Width:     f.Width,
		Height:    f.Height,
		Entities:  len(f.Entities),
		CreatedAt: time.Now().UTC(),
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO levels (id, name, digest, width, height, entities, data, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		info.ID,
		info.Name,
		info.Digest,
		info.Width,
		info.Height,
		info.Entities,
		data,
		info.CreatedAt.UnixNano(),
	)
	if err != nil {
		return LevelInfo{}, errors.New("saving level failed").
			WithTag("name", name).
			Wrap(err)
	}

	logs.WithTag("level_id", info.ID).
		WithTag("name", info.Name).
		WithTag("digest", info.Digest).
		Info("level saved")
	return info, nil
}

// Load returns the level stored under id. The stored content is checked
// against its digest.
func (db *DB) Load(ctx context.Context, id string) (*levelfile.File, LevelInfo, error) {
	var (
		info      LevelInfo
		data      []byte
		createdAt int64
	)

	err := db.conn.QueryRowContext(ctx, `
		SELECT id, name, digest, width, height, entities, data, created_at
		FROM levels WHERE id = ?`, id).
		Scan(&info.ID, &info.Name, &info.Digest, &info.Width, &info.Height, &info.Entities, &data, &createdAt)
	if err == sql.ErrNoRows {
		return nil, LevelInfo{}, errors.New("level not found").
			WithType(ErrTypeLevelNotFound).
			WithTag("level_id", id)
	}
	if err != nil {
		return nil, LevelInfo{}, errors.New("loading level failed").
			WithTag("level_id", id).
			Wrap(err)
	}
	info.Size = len(data)
	info.CreatedAt = time.Unix(0, createdAt).UTC()

	if digest := Digest(data); digest != info.Digest {
		return nil, LevelInfo{}, errors.New("level content does not match its digest").
			WithType(ErrTypeDigestMismatch).
			WithTag("level_id", id).
			WithTag("expected", info.Digest).
			WithTag("actual", digest)
	}

	f, err := levelfile.Unmarshal(data)
	if err != nil {
		return nil, LevelInfo{}, errors.New("decoding level failed").
			WithTag("level_id", id).
			Wrap(err)
	}
	return f, info, nil
}

// List returns the stored levels, oldest first.
func (db *DB) List(ctx context.Context) ([]LevelInfo, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, name, digest, width, height, entities, length(data), created_at
		FROM levels ORDER BY created_at, id`)
	if err != nil {
		return nil, errors.New("listing levels failed").Wrap(err)
	}
	defer rows.Close()

	var levels []LevelInfo
	for rows.Next() {
		var (
			info      LevelInfo
			createdAt int64
		)
		if err := rows.Scan(&info.ID, &info.Name, &info.Digest, &info.Width, &info.Height, &info.Entities, &info.Size, &createdAt); err != nil {
			return nil, errors.New("reading level row failed").Wrap(err)
		}
		info.CreatedAt = time.Unix(0, createdAt).UTC()
		levels = append(levels, info)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.New("listing levels failed").Wrap(err)
	}
	return levels, nil
}

// Delete removes the level stored under id.
func (db *DB) Delete(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM levels WHERE id = ?`, id)
	if err != nil {
		return errors.New("deleting level failed").
			WithTag("level_id", id).
			Wrap(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return errors.New("deleting level failed").
			WithTag("level_id", id).
			Wrap(err)
	}
	if n == 0 {
		return errors.New("level not found").
			WithType(ErrTypeLevelNotFound).
			WithTag("level_id", id)
	}

	logs.WithTag("level_id", id).Info("level deleted")
	return nil
}
