package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/TableAdmin-lab/productloaderV2/internal"
)

// sessionKey is where the whole form session lives in the metadata table,
// mirroring the single blob the browser build kept in localStorage.
const sessionKey = "productData"

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS emails (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  provider TEXT NOT NULL,
  messageId TEXT NOT NULL,
  subject TEXT,
  sender TEXT,
  receivedAt TEXT,
  hash TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'fetched',
  rawRef TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(provider, messageId)
);

CREATE TABLE IF NOT EXISTS menus (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  emailId INTEGER,
  sourceRef TEXT NOT NULL,
  origin TEXT NOT NULL,
  itemCount INTEGER NOT NULL,
  itemsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(emailId) REFERENCES emails(id)
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// LoadSession returns the stored session, or a fresh one when nothing has
// been saved yet. Fields absent from an older stored blob keep their
// defaults.
func (d *DB) LoadSession() (internal.SessionState, error) {
	state := internal.SessionState{
		Products:                  []internal.CatalogRow{},
		PLUCounter:                1000,
		CurrentModifierGroups:     []internal.ModifierGroup{},
		RememberCategoriesChecked: true,
	}

	value, err := d.GetMetadata(sessionKey)
	if err != nil {
		return state, err
	}
	if value == nil {
		return state, nil
	}
	if err := json.Unmarshal([]byte(*value), &state); err != nil {
		return state, err
	}

	if state.Products == nil {
		state.Products = []internal.CatalogRow{}
	}
	if state.CurrentModifierGroups == nil {
		state.CurrentModifierGroups = []internal.ModifierGroup{}
	}
	if state.PLUCounter == 0 {
		state.PLUCounter = 1000
	}
	return state, nil
}

func (d *DB) SaveSession(state internal.SessionState) error {
	encoded, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return d.SetMetadata(sessionKey, string(encoded))
}

func (d *DB) ClearSession() error {
	_, err := d.conn.Exec(`DELETE FROM metadata WHERE key = ?`, sessionKey)
	return err
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func (d *DB) UpsertEmail(provider, messageID, subject, sender, receivedAt, hash, rawRef, status string) (internal.EmailRow, error) {
	_, err := d.conn.Exec(`
INSERT INTO emails (provider, messageId, subject, sender, receivedAt, hash, status, rawRef)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(provider, messageId) DO UPDATE SET
  subject=excluded.subject,
  sender=excluded.sender,
  receivedAt=excluded.receivedAt,
  hash=excluded.hash,
  rawRef=excluded.rawRef,
  updatedAt=CURRENT_TIMESTAMP
`, provider, messageID, subject, sender, receivedAt, hash, status, rawRef)
	if err != nil {
		return internal.EmailRow{}, err
	}

	row, err := d.GetEmailByProviderMessageID(provider, messageID)
	if err != nil {
		return internal.EmailRow{}, err
	}
	if row == nil {
		return internal.EmailRow{}, errors.New("failed to upsert email")
	}
	return *row, nil
}

func (d *DB) GetEmailByProviderMessageID(provider, messageID string) (*internal.EmailRow, error) {
	var row internal.EmailRow
	err := d.conn.QueryRow(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM emails WHERE provider = ? AND messageId = ?
`, provider, messageID).Scan(
		&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) GetEmailByID(id int) (*internal.EmailRow, error) {
	var row internal.EmailRow
	err := d.conn.QueryRow(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM emails WHERE id = ?
`, id).Scan(
		&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) ListEmailsByStatus(status string, limit int) ([]internal.EmailRow, error) {
	rows, err := d.conn.Query(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM emails WHERE status = ? ORDER BY receivedAt ASC LIMIT ?
`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.EmailRow
	for rows.Next() {
		var row internal.EmailRow
		if err := rows.Scan(&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) UpdateEmailStatus(emailID int, status string) error {
	_, err := d.conn.Exec(`UPDATE emails SET status = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, status, emailID)
	return err
}

func (d *DB) InsertMenu(emailID *int, sourceRef, origin string, items []internal.CanonicalMenuItem) (int64, error) {
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return 0, err
	}
	result, err := d.conn.Exec(`
INSERT INTO menus (emailId, sourceRef, origin, itemCount, itemsJson)
VALUES (?, ?, ?, ?, ?)
`, emailID, sourceRef, origin, len(items), string(itemsJSON))
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (d *DB) ListMenus(limit int) ([]internal.MenuRow, error) {
	rows, err := d.conn.Query(`
SELECT id, emailId, sourceRef, origin, itemCount, itemsJson, createdAt
FROM menus ORDER BY id DESC LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.MenuRow
	for rows.Next() {
		var row internal.MenuRow
		if err := rows.Scan(&row.ID, &row.EmailID, &row.SourceRef, &row.Origin, &row.ItemCount, &row.ItemsJSON, &row.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) GetMenu(id int) (*internal.MenuRow, error) {
	var row internal.MenuRow
	err := d.conn.QueryRow(`
SELECT id, emailId, sourceRef, origin, itemCount, itemsJson, createdAt
FROM menus WHERE id = ?
`, id).Scan(&row.ID, &row.EmailID, &row.SourceRef, &row.Origin, &row.ItemCount, &row.ItemsJSON, &row.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
