package config

import (
	"github.com/snowflakedb/gosnowflake"
)

type Snowflake struct {
	Account   string
	Username  string
	Password  string
	Warehouse string
	Database  string
	Schema    string
	Role      string
	BatchSize int
}

func ParseSnowflake(params Params) (Snowflake, error) {
	if err := params.Required("account", "username", "password", "warehouse", "database", "schema"); err != nil {
		return Snowflake{}, err
	}

	batchSize, err := params.BatchSize()
	if err != nil {
		return Snowflake{}, err
	}

	return Snowflake{
		Account:   params["account"],
		Username:  params["username"],
		Password:  params["password"],
		Warehouse: params["warehouse"],
		Database:  params["database"],
		Schema:    params["schema"],
		Role:      params["role"],
		BatchSize: batchSize,
	}, nil
}

func (s Snowflake) ToDSN() (string, error) {
	return gosnowflake.DSN(&gosnowflake.Config{
		Account:   s.Account,
		User:      s.Username,
		Password:  s.Password,
		Warehouse: s.Warehouse,
		Database:  s.Database,
		Schema:    s.Schema,
		Role:      s.Role,
	})
}
