package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_AppliesPragmas(t *testing.T) {
	t.Parallel()

	conn, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	var fk int
	require.NoError(t, conn.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)

	var mode string
	require.NoError(t, conn.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestOpenPostgres_RejectsBadInput(t *testing.T) {
	t.Parallel()

	_, err := OpenPostgres(context.Background(), "")
	assert.Error(t, err)

	_, err = OpenPostgres(context.Background(), "postgres://%zz")
	assert.Error(t, err)
}

func TestContainsPattern(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":       "%%",
		"shop":   "%shop%",
		"50%":    `%50\%%`,
		"a_b":    `%a\_b%`,
		`c:\tmp`: `%c:\\tmp%`,
	}
	for in, want := range tests {
		assert.Equal(t, want, ContainsPattern(in), in)
	}
}
