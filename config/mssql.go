package config

import (
	"fmt"
	"net/url"
)

type MSSQL struct {
	Host      string
	Port      int
	Username  string
	Password  string
	Database  string
	Schema    string
	BatchSize int
}

func ParseMSSQL(params Params) (MSSQL, error) {
	if err := params.Required("host", "username", "password", "database"); err != nil {
		return MSSQL{}, err
	}

	port, err := params.Port(1433)
	if err != nil {
		return MSSQL{}, err
	}

	batchSize, err := params.BatchSize()
	if err != nil {
		return MSSQL{}, err
	}

	return MSSQL{
		Host:      params["host"],
		Port:      port,
		Username:  params["username"],
		Password:  params["password"],
		Database:  params["database"],
		Schema:    params.String("schema", "dbo"),
		BatchSize: batchSize,
	}, nil
}

func (m MSSQL) ToDSN() string {
	query := url.Values{}
	query.Add("database", m.Database)

	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(m.Username, m.Password),
		Host:     fmt.Sprintf("%s:%d", m.Host, m.Port),
		RawQuery: query.Encode(),
	}

	return u.String()
}
