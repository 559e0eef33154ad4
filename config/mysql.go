package config

import (
	"fmt"

	"github.com/go-sql-driver/mysql"
)

type MySQL struct {
	Host      string
	Port      int
	Username  string
	Password  string
	Database  string
	BatchSize int
}

func ParseMySQL(params Params) (MySQL, error) {
	if err := params.Required("host", "username", "password", "database"); err != nil {
		return MySQL{}, err
	}

	port, err := params.Port(3306)
	if err != nil {
		return MySQL{}, err
	}

	batchSize, err := params.BatchSize()
	if err != nil {
		return MySQL{}, err
	}

	return MySQL{
		Host:      params["host"],
		Port:      port,
		Username:  params["username"],
		Password:  params["password"],
		Database:  params["database"],
		BatchSize: batchSize,
	}, nil
}

func (m MySQL) ToDSN() string {
	config := mysql.NewConfig()
	config.User = m.Username
	config.Passwd = m.Password
	config.Net = "tcp"
	config.Addr = fmt.Sprintf("%s:%d", m.Host, m.Port)
	config.DBName = m.Database
	return config.FormatDSN()
}
