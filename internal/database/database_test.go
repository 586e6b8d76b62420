package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"docflow/internal/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPostgresDSN(t *testing.T) {
	base := config.DatabaseConfig{Host: "db", Port: "5432", User: "docflow", Name: "docflow"}
	with := func(mut func(*config.DatabaseConfig)) config.DatabaseConfig {
		c := base
		mut(&c)
		return c
	}

	tests := []struct {
		name    string
		config  config.DatabaseConfig
		want    string
		wantErr bool
	}{
		{"password and sslmode", with(func(c *config.DatabaseConfig) { c.Password = "pass"; c.SSLMode = "disable" }),
			"postgres://docflow:pass@db:5432/docflow?sslmode=disable", false},
		{"no password", with(func(c *config.DatabaseConfig) { c.SSLMode = "require" }),
			"postgres://docflow@db:5432/docflow?sslmode=require", false},
		{"no sslmode", base, "postgres://docflow@db:5432/docflow", false},
		{"password is escaped", with(func(c *config.DatabaseConfig) { c.Password = "p@ss/word" }),
			"postgres://docflow:p%40ss%2Fword@db:5432/docflow", false},
		{"missing host", with(func(c *config.DatabaseConfig) { c.Host = "" }), "", true},
		{"missing port", with(func(c *config.DatabaseConfig) { c.Port = "" }), "", true},
		{"missing user", with(func(c *config.DatabaseConfig) { c.User = "" }), "", true},
		{"missing name", with(func(c *config.DatabaseConfig) { c.Name = "" }), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildPostgresDSN(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewPostgres(t *testing.T) {
	conf := config.DatabaseConfig{
		Host:               "localhost",
		Port:               "5432",
		User:               "user",
		Password:           "pass",
		Name:               "dbname",
		MaxOpenConns:       10,
		MaxIdleConns:       5,
		ConnMaxLifetimeSec: 300,
	}

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()

		// Mock sqlOpen to return the mock db
		origSqlOpen := sqlOpen
		sqlOpen = func(driverName, dataSourceName string) (*sql.DB, error) {
			return db, nil
		}
		defer func() { sqlOpen = origSqlOpen }()

		mock.ExpectPing()

		gotDB, err := NewPostgres(context.Background(), conf)
		require.NoError(t, err)
		assert.Equal(t, 10, gotDB.Stats().MaxOpenConnections)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("sqlOpen error", func(t *testing.T) {
		// Mock sqlOpen to return error
		origSqlOpen := sqlOpen
		sqlOpen = func(driverName, dataSourceName string) (*sql.DB, error) {
			return nil, errors.New("open error")
		}
		defer func() { sqlOpen = origSqlOpen }()

		gotDB, err := NewPostgres(context.Background(), conf)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "sql open: open error")
		assert.Nil(t, gotDB)
	})

	t.Run("ping error", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		// No need to defer db.Close() because NewPostgres should close it on ping error

		origSqlOpen := sqlOpen
		sqlOpen = func(driverName, dataSourceName string) (*sql.DB, error) {
			return db, nil
		}
		defer func() { sqlOpen = origSqlOpen }()

		mock.ExpectPing().WillReturnError(errors.New("ping failed"))

		gotDB, err := NewPostgres(context.Background(), conf)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "db ping: ping failed")
		assert.Nil(t, gotDB)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid DSN", func(t *testing.T) {
		invalidConf := config.DatabaseConfig{} // missing host etc
		gotDB, err := NewPostgres(context.Background(), invalidConf)
		assert.Error(t, err)
		assert.Nil(t, gotDB)
	})
}
