// SPDX-License-Identifier: MPL-2.0

package rule

import (
	"encoding/json"
	"os"

	"kenshin-cli/internal/issue"
)

// OIDCatalogTable is the reserved catalog name for the external OID catalog.
const OIDCatalogTable = "$oid_catalog$"

// Table is a single named key→value lookup table.
type Table map[string]string

// Catalog is the immutable collection of lookup tables for one run. It is
// built once at startup and safe to share across goroutines afterwards.
type Catalog struct {
	tables map[string]Table
}

// NewCatalog copies the inline tables from configuration into a catalog.
func NewCatalog(inline map[string]map[string]string) *Catalog {
	tables := make(map[string]Table, len(inline))
	for name, entries := range inline {
		t := make(Table, len(entries))
		for k, v := range entries {
			t[k] = v
		}
		tables[name] = t
	}
	return &Catalog{tables: tables}
}

// LoadOIDCatalog reads the external OID catalog file and registers it under
// the reserved table name. Must be called before the catalog is shared.
func (c *Catalog) LoadOIDCatalog(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &issue.ConfigError{Path: path, Reason: "cannot read OID catalog", Cause: err}
	}
	var t Table
	if err := json.Unmarshal(data, &t); err != nil {
		return &issue.ConfigError{Path: path, Reason: "OID catalog must be a flat JSON object", Cause: err}
	}
	c.tables[OIDCatalogTable] = t
	return nil
}

// Lookup resolves key in the named table. ok is false when the table does
// not exist or the key is absent.
func (c *Catalog) Lookup(table, key string) (value string, ok bool) {
	t, ok := c.tables[table]
	if !ok {
		return "", false
	}
	value, ok = t[key]
	return value, ok
}

// HasTable reports whether the named table exists.
func (c *Catalog) HasTable(name string) bool {
	_, ok := c.tables[name]
	return ok
}
