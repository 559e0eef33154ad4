package config

import (
	"net/url"
	"path/filepath"
)

type SQLite struct {
	Path      string
	BatchSize int
}

func ParseSQLite(params Params) (SQLite, error) {
	if err := params.Required("path"); err != nil {
		return SQLite{}, err
	}

	batchSize, err := params.BatchSize()
	if err != nil {
		return SQLite{}, err
	}

	return SQLite{Path: filepath.Clean(params["path"]), BatchSize: batchSize}, nil
}

// ToDSN opens the database read-only, a source is never written to.
func (s SQLite) ToDSN() string {
	u := &url.URL{
		Scheme:   "file",
		Opaque:   filepath.ToSlash(s.Path),
		RawQuery: url.Values{"mode": []string{"ro"}}.Encode(),
	}
	return u.String()
}
