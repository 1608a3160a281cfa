package store

import (
	"database/sql"
	"errors"
	"time"

	blink "github.com/blinkmojo/blink/pkg"
	"github.com/mattn/go-sqlite3"
)

const SETUP_SQL string = `
CREATE TABLE IF NOT EXISTS bundle (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	network TEXT NOT NULL,
	spend_bundle BLOB NOT NULL,
	created INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS bundle_network_i ON bundle (network);
`

// interface guard ensures SQLite implements blink.Store
var _ blink.Store = SQLite{}

type SQLite struct {
	db *sql.DB
}

// NewSQLite returns a blink.Store implementor that uses sqlite
func NewSQLite(fileName string) (SQLite, error) {
	db, err := sql.Open("sqlite3", fileName)
	if err != nil {
		return SQLite{}, dbErr(err, "NewSQLite: opening database")
	}
	// init tables / indexes
	_, err = db.Exec(SETUP_SQL)
	if err != nil {
		db.Close()
		return SQLite{}, dbErr(err, "NewSQLite: creating database schema")
	}
	return SQLite{db}, nil
}

// Defer this until shutdown
func (s SQLite) Close() {
	s.db.Close()
}

func (s SQLite) StoreSpendBundle(rec blink.BundleRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return dbErr(err, "StoreSpendBundle: beginning transaction")
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT INTO bundle (name, network, spend_bundle, created) VALUES (?, ?, ?, ?)")
	if err != nil {
		return dbErr(err, "StoreSpendBundle: preparing insert")
	}
	defer stmt.Close()

	_, err = stmt.Exec(rec.Name.String(), rec.Network, rec.Bundle.Serialize(), rec.Created.Unix())
	if err != nil {
		return dbErr(err, "StoreSpendBundle: executing insert")
	}
	if err = tx.Commit(); err != nil {
		return dbErr(err, "StoreSpendBundle: committing")
	}
	return nil
}

func (s SQLite) GetSpendBundle(name blink.Bytes32) (blink.BundleRecord, error) {
	row := s.db.QueryRow("SELECT network, spend_bundle, created FROM bundle WHERE name = ?", name.String())
	rec, err := scanBundle(row)
	if err == sql.ErrNoRows {
		return blink.BundleRecord{}, blink.NewErr(blink.NotFound, "spend bundle not found: %v", name)
	}
	if err != nil {
		return blink.BundleRecord{}, dbErr(err, "GetSpendBundle: scanning row")
	}
	return rec, nil
}

func (s SQLite) ListSpendBundles(cursor int, limit int) (items []blink.BundleRecord, next_cursor int, err error) {
	rows, err := s.db.Query("SELECT id, network, spend_bundle, created FROM bundle WHERE (? = 0 OR id < ?) ORDER BY id DESC LIMIT ?", cursor, cursor, limit)
	if err != nil {
		return nil, 0, dbErr(err, "ListSpendBundles: querying bundles")
	}
	defer rows.Close()
	lastID := 0
	for rows.Next() {
		var id int
		var network string
		var raw []byte
		var created int64
		if err := rows.Scan(&id, &network, &raw, &created); err != nil {
			return nil, 0, dbErr(err, "ListSpendBundles: scanning row")
		}
		rec, err := decodeBundle(network, raw, created)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rec)
		lastID = id
	}
	if err = rows.Err(); err != nil {
		return nil, 0, dbErr(err, "ListSpendBundles: querying bundles")
	}
	if len(items) == limit && lastID > 1 {
		next_cursor = lastID
	}
	return items, next_cursor, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBundle(row scanner) (blink.BundleRecord, error) {
	var network string
	var raw []byte
	var created int64
	if err := row.Scan(&network, &raw, &created); err != nil {
		return blink.BundleRecord{}, err
	}
	return decodeBundle(network, raw, created)
}

func decodeBundle(network string, raw []byte, created int64) (blink.BundleRecord, error) {
	sb, err := blink.ParseSpendBundle(raw)
	if err != nil {
		return blink.BundleRecord{}, err
	}
	return blink.BundleRecord{
		Name:    sb.Name(),
		Network: network,
		Bundle:  sb,
		Created: time.Unix(created, 0).UTC(),
	}, nil
}

func dbErr(err error, where string) error {
	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) {
		if sqErr.ExtendedCode == sqlite3.ErrConstraintUnique || sqErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			// MUST detect 'AlreadyExists' to fulfil the API contract!
			return blink.NewErr(blink.AlreadyExists, "SQLiteStore error: %s: %v", where, err)
		}
	}
	return blink.NewErr(blink.NotAvailable, "SQLiteStore error: %s: %v", where, err)
}
