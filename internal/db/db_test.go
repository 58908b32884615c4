package db

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationNames_SortedSQLOnly(t *testing.T) {
	names, err := migrationNames()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "001_init.sql", names[0])
	assert.IsIncreasing(t, names)
}

func TestMigrationSchema_DefinesTables(t *testing.T) {
	data, err := schemaFS.ReadFile("schema/001_init.sql")
	require.NoError(t, err)
	for _, table := range []string{"users", "saved_cvs", "api_usage"} {
		assert.Contains(t, string(data), "CREATE TABLE IF NOT EXISTS "+table)
	}
}

func TestConnect_RequiresURL(t *testing.T) {
	_, err := Connect(context.Background(), "")
	assert.Error(t, err)

	_, err = Connect(context.Background(), "postgres://%zz")
	assert.ErrorContains(t, err, "parse")
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ada@example.com", NormalizeEmail("  Ada@Example.COM "))
}

func TestNullableJSON(t *testing.T) {
	assert.Nil(t, nullableJSON(nil))
	assert.Nil(t, nullableJSON(json.RawMessage("null")))
	assert.Equal(t, []byte(`{"a":1}`), nullableJSON(json.RawMessage(`{"a":1}`)))
}

func TestSaveCV_RequiresData(t *testing.T) {
	var db DB
	_, err := db.SaveCV(context.Background(), &SavedCV{})
	assert.Error(t, err)
	_, err = db.SaveCV(context.Background(), nil)
	assert.Error(t, err)
}
