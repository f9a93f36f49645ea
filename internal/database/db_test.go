package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	assert.Equal(t,
		"lms:secret@tcp(db:3306)/classroom?charset=utf8mb4&parseTime=true&loc=UTC",
		DSN("lms", "secret", "db", "3306", "classroom"))
	assert.Equal(t,
		"lms@tcp(db:3306)/classroom?charset=utf8mb4&parseTime=true&loc=UTC",
		DSN("lms", "", "db", "3306", "classroom"))
}
