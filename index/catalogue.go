// Package index records generated dataset documents in a PostgreSQL
// table so a collection can be queried without re-reading sidecars.
package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/sansa-eo/spot-eo3/eo3"
	"github.com/sansa-eo/spot-eo3/utils"
)

const createTable = `create table if not exists spot_eo3_datasets (
	id          uuid primary key,
	label       text not null,
	product     text not null,
	path        text not null,
	document    jsonb not null,
	indexed_at  timestamptz not null default now()
)`

// Re-indexing a file replaces its row; indexed_at records the last run.
const upsertDataset = `insert into spot_eo3_datasets (id, label, product, path, document)
values ($1, $2, $3, $4, $5)
on conflict (id) do update set
	label = excluded.label,
	product = excluded.product,
	path = excluded.path,
	document = excluded.document,
	indexed_at = now()`

type Catalogue struct {
	db *sql.DB
}

// Open connects to the database named by a lib/pq connection string or
// URL and makes sure the datasets table exists.
func Open(ctx context.Context, dsn string) (*Catalogue, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, utils.NewError(utils.KindIndex, "", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, utils.NewError(utils.KindIndex, "", err)
	}

	if _, err := db.ExecContext(ctx, createTable); err != nil {
		db.Close()
		return nil, utils.Errorf(utils.KindIndex, "", "creating datasets table: %v", err)
	}
	return &Catalogue{db: db}, nil
}

// Index upserts doc, which was written to sidecarPath.
func (c *Catalogue) Index(ctx context.Context, doc *eo3.Dataset, sidecarPath string) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return utils.NewError(utils.KindIndex, sidecarPath, err)
	}

	_, err = c.db.ExecContext(ctx, upsertDataset, doc.ID, doc.Label, doc.Product.Name, sidecarPath, string(payload))
	if err != nil {
		return utils.NewError(utils.KindIndex, sidecarPath, err)
	}
	return nil
}

// Lookup returns the stored document with the given id.
func (c *Catalogue) Lookup(ctx context.Context, id string) (*eo3.Dataset, string, error) {
	var payload, path string
	err := c.db.QueryRowContext(ctx, `select document::text, path from spot_eo3_datasets where id = $1`, id).Scan(&payload, &path)
	if err == sql.ErrNoRows {
		return nil, "", fmt.Errorf("dataset %s is not indexed", id)
	}
	if err != nil {
		return nil, "", utils.NewError(utils.KindIndex, id, err)
	}

	doc, err := eo3.Decode([]byte(payload), eo3.FormatJSON)
	if err != nil {
		return nil, "", utils.NewError(utils.KindIndex, id, err)
	}
	return doc, path, nil
}

func (c *Catalogue) Close() error {
	return c.db.Close()
}
