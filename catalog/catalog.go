// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	bolt "go.etcd.io/bbolt"

	"blockwatch.cc/easkit/schema"
)

var (
	ErrExists   = errors.New("schema already registered")
	ErrNotFound = errors.New("schema not found")
)

var schemaBucket = []byte("schemas")

// DefaultOptions are used by Open.
var DefaultOptions = bolt.Options{
	// open timeout when file is locked
	Timeout: time.Second,
	// faster for large databases
	FreelistType: bolt.FreelistMapType,
}

// SchemaRecord is a registered schema keyed by its registry UID.
type SchemaRecord struct {
	UID          common.Hash    `json:"uid"`
	Schema       string         `json:"schema"`
	Resolver     common.Address `json:"resolver"`
	Revocable    bool           `json:"revocable"`
	RegisteredAt time.Time      `json:"registered_at"`
}

// Catalog is a file backed schema registry. It is safe for concurrent use.
type Catalog struct {
	db   *bolt.DB
	path string
}

func Open(path string, readOnly bool) (*Catalog, error) {
	opts := DefaultOptions
	opts.ReadOnly = readOnly
	return OpenWithOptions(path, &opts)
}

func OpenWithOptions(path string, opts *bolt.Options) (*Catalog, error) {
	db, err := bolt.Open(path, 0600, opts)
	if err != nil {
		return nil, fmt.Errorf("catalog: opening %s failed: %w", path, err)
	}
	if !db.IsReadOnly() {
		err = db.Update(func(tx *bolt.Tx) error {
			_, err := tx.CreateBucketIfNotExists(schemaBucket)
			return err
		})
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("catalog: init %s failed: %w", path, err)
		}
	}
	log.Debugf("catalog: opened %s readonly=%t", path, db.IsReadOnly())
	return &Catalog{db: db, path: path}, nil
}

func (c *Catalog) Path() string {
	return c.path
}

func (c *Catalog) Close() error {
	log.Debugf("catalog: closing %s", c.path)
	return c.db.Close()
}

// Register parses s, computes its UID and stores it. Registering the same
// (schema, resolver, revocable) triple twice fails with ErrExists.
func (c *Catalog) Register(s string, resolver common.Address, revocable bool) (SchemaRecord, error) {
	d, err := schema.Parse(s)
	if err != nil {
		return SchemaRecord{}, err
	}
	rec := SchemaRecord{
		UID:          d.UID(resolver, revocable),
		Schema:       s,
		Resolver:     resolver,
		Revocable:    revocable,
		RegisteredAt: time.Now().UTC().Truncate(time.Second),
	}
	buf, err := json.Marshal(rec)
	if err != nil {
		return SchemaRecord{}, err
	}
	err = c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(schemaBucket)
		if b.Get(rec.UID[:]) != nil {
			return fmt.Errorf("catalog: %w %s", ErrExists, rec.UID)
		}
		return b.Put(rec.UID[:], buf)
	})
	if err != nil {
		return SchemaRecord{}, err
	}
	log.Infof("Registered schema %s %q", rec.UID, s)
	return rec, nil
}

func (c *Catalog) Get(uid common.Hash) (SchemaRecord, error) {
	var rec SchemaRecord
	err := c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(schemaBucket)
		if b == nil {
			return fmt.Errorf("catalog: %w %s", ErrNotFound, uid)
		}
		buf := b.Get(uid[:])
		if buf == nil {
			return fmt.Errorf("catalog: %w %s", ErrNotFound, uid)
		}
		return json.Unmarshal(buf, &rec)
	})
	return rec, err
}

// List returns all records in UID order.
func (c *Catalog) List() ([]SchemaRecord, error) {
	list := make([]SchemaRecord, 0)
	err := c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(schemaBucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var rec SchemaRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("catalog: decoding %x: %w", k, err)
			}
			list = append(list, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}
