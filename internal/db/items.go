package db

import (
	"log"
	"time"
)

// Item is one row of the item catalog.
type Item struct {
	TypeID         int32  `json:"type_id"`
	Name           string `json:"name"`
	Manufacturable bool   `json:"manufacturable"`
}

// UpsertItems bulk-upserts item records. Best effort: row failures are
// logged and skipped so one bad record does not abort a reload.
func (d *DB) UpsertItems(items []Item) {
	if len(items) == 0 {
		return
	}

	tx, err := d.sql.Begin()
	if err != nil {
		log.Printf("[DB] UpsertItems begin tx: %v", err)
		return
	}

	stmt, err := tx.Prepare(`INSERT INTO items (type_id, name, is_manufacturable, updated_at)
		VALUES (?,?,?,?)
		ON CONFLICT(type_id) DO UPDATE SET
			name = excluded.name,
			is_manufacturable = excluded.is_manufacturable,
			updated_at = excluded.updated_at`)
	if err != nil {
		tx.Rollback()
		log.Printf("[DB] UpsertItems prepare: %v", err)
		return
	}
	defer stmt.Close()

	now := time.Now().Format(time.RFC3339)
	for _, it := range items {
		manufacturable := 0
		if it.Manufacturable {
			manufacturable = 1
		}
		stmt.Exec(it.TypeID, it.Name, manufacturable, now)
	}

	if err := tx.Commit(); err != nil {
		log.Printf("[DB] UpsertItems commit: %v", err)
	}
}

// ItemName looks up the display name for a type ID.
func (d *DB) ItemName(typeID int32) (string, bool) {
	var name string
	err := d.sql.QueryRow("SELECT name FROM items WHERE type_id = ?", typeID).Scan(&name)
	if err != nil {
		return "", false
	}
	return name, true
}

// ItemCount returns the number of known items.
func (d *DB) ItemCount() int {
	var n int
	d.sql.QueryRow("SELECT COUNT(*) FROM items").Scan(&n)
	return n
}
