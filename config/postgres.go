package config

import (
	"fmt"
	"net/url"
)

type PostgreSQL struct {
	Host       string
	Port       int
	Username   string
	Password   string
	Database   string
	Schema     string
	DisableSSL bool
	BatchSize  int
}

func ParsePostgreSQL(params Params) (PostgreSQL, error) {
	if err := params.Required("host", "username", "password", "database"); err != nil {
		return PostgreSQL{}, err
	}

	port, err := params.Port(5432)
	if err != nil {
		return PostgreSQL{}, err
	}

	disableSSL, err := params.Bool("disable_ssl")
	if err != nil {
		return PostgreSQL{}, err
	}

	batchSize, err := params.BatchSize()
	if err != nil {
		return PostgreSQL{}, err
	}

	return PostgreSQL{
		Host:       params["host"],
		Port:       port,
		Username:   params["username"],
		Password:   params["password"],
		Database:   params["database"],
		Schema:     params.String("schema", "public"),
		DisableSSL: disableSSL,
		BatchSize:  batchSize,
	}, nil
}

func (p PostgreSQL) ToDSN() string {
	query := url.Values{}
	if p.DisableSSL {
		query.Add("sslmode", "disable")
	}

	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.Username, p.Password),
		Host:     fmt.Sprintf("%s:%d", p.Host, p.Port),
		Path:     "/" + p.Database,
		RawQuery: query.Encode(),
	}

	return u.String()
}
