package postgres

import "time"

type documentTableModel struct {
	Collection string    `db:"collection"`
	DocID      string    `db:"doc_id"`
	Data       []byte    `db:"data"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type documentInsertModel struct {
	Collection string `db:"collection"`
	DocID      string `db:"doc_id"`
	Data       string `db:"data"`
}
