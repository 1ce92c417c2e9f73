package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperationFromSQL(t *testing.T) {
	cases := map[string]string{
		"SELECT id FROM materials":                         "SELECT",
		"  insert into requests (batch_id) values (?)":     "INSERT",
		"WITH x AS (SELECT 1) UPDATE requests SET status=?": "SELECT",
		"PRAGMA table_info(requests)":                      "PRAGMA",
		"":                                                 "UNKNOWN",
	}
	for sql, want := range cases {
		assert.Equal(t, want, operationFromSQL(sql), sql)
	}
}

func TestParamsFilterDropsValues(t *testing.T) {
	l := NewGormLogger(DefaultGormLoggerConfig())
	sql, params := l.ParamsFilter(context.Background(), "UPDATE settings SET value = ?", "$argon2id$secret")
	assert.Equal(t, "UPDATE settings SET value = ?", sql)
	assert.Nil(t, params)
}
