package sql

import (
	"database/sql"
	"testing"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	db := initDB(t)

	t.Run("Initialize database extensions", func(t *testing.T) {
		err := Init(db.Instance)
		assert.NoError(t, err)

		// Verify pgvector extension is created
		var exists bool
		err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_extension WHERE extname = 'vector');").Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, "pgvector extension should be created")
	})

	t.Run("Initialize database extensions is idempotent", func(t *testing.T) {
		err := Init(db.Instance)
		assert.NoError(t, err)

		err = Init(db.Instance)
		assert.NoError(t, err)
	})
}

func TestLoadSql(t *testing.T) {
	db := initDB(t)
	defer db.Close()

	tests := []struct {
		name      string
		load      func(db *sql.DB, force bool) error
		functions []string
	}{
		{"entities", LoadEntitiesSql, EntitiesFunctions},
		{"relations", LoadRelationsSql, RelationsFunctions},
		{"runs", LoadRunsSql, RunsFunctions},
	}

	for _, tt := range tests {
		t.Run("Load "+tt.name+" SQL functions", func(t *testing.T) {
			err := tt.load(db.Instance, false)
			assert.NoError(t, err)

			for _, funcName := range tt.functions {
				var exists bool
				err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);", funcName).Scan(&exists)
				require.NoError(t, err)
				assert.True(t, exists, "Function %s should exist", funcName)
			}
		})

		t.Run("Load "+tt.name+" SQL is idempotent without force", func(t *testing.T) {
			err := tt.load(db.Instance, false)
			assert.NoError(t, err)
		})

		t.Run("Load "+tt.name+" SQL with force reloads", func(t *testing.T) {
			err := tt.load(db.Instance, true)
			assert.NoError(t, err)
		})
	}
}

func TestLoadAllSql(t *testing.T) {
	db := initDB(t)
	defer db.Close()

	t.Run("Load all SQL functions", func(t *testing.T) {
		err := LoadAllSql(db.Instance, false)
		assert.NoError(t, err)

		for _, functions := range [][]string{EntitiesFunctions, RelationsFunctions, RunsFunctions} {
			exists, err := checkFunctions(db.Instance, functions)
			require.NoError(t, err)
			assert.True(t, exists, "Expected all of %v to exist", functions)
		}
	})

	t.Run("Load all SQL is idempotent without force", func(t *testing.T) {
		err := LoadAllSql(db.Instance, false)
		assert.NoError(t, err)
	})

	t.Run("Tables are created by the init functions", func(t *testing.T) {
		require.NoError(t, LoadAllSql(db.Instance, false))

		_, err := db.Instance.Exec(`SELECT init_entities(384);`)
		require.NoError(t, err)
		_, err = db.Instance.Exec(`SELECT init_relations();`)
		require.NoError(t, err)
		_, err = db.Instance.Exec(`SELECT init_runs();`)
		require.NoError(t, err)

		for _, table := range []string{"entities", "relations", "relation_sources", "runs", "run_sources"} {
			var exists bool
			err = db.Instance.QueryRow(`SELECT EXISTS(SELECT 1 FROM information_schema.tables WHERE table_name = $1);`, table).Scan(&exists)
			require.NoError(t, err)
			assert.True(t, exists, "Table %s should exist", table)
		}
	})
}

func TestCheckFunctions(t *testing.T) {
	db := initDB(t)
	defer db.Close()

	t.Run("Check functions returns false when functions don't exist", func(t *testing.T) {
		exists, err := checkFunctions(db.Instance, []string{"nonexistent_function"})
		assert.NoError(t, err)
		assert.False(t, exists, "Should return false for nonexistent function")
	})

	t.Run("Check functions returns true when all functions exist", func(t *testing.T) {
		err := LoadRelationsSql(db.Instance, false)
		require.NoError(t, err)

		exists, err := checkFunctions(db.Instance, RelationsFunctions)
		assert.NoError(t, err)
		assert.True(t, exists, "Should return true when all functions exist")
	})

	t.Run("Check functions returns false when some functions don't exist", func(t *testing.T) {
		exists, err := checkFunctions(db.Instance, []string{"init_relations", "nonexistent_function"})
		assert.NoError(t, err)
		assert.False(t, exists, "Should return false when some functions don't exist")
	})

	t.Run("Check functions with empty list", func(t *testing.T) {
		exists, err := checkFunctions(db.Instance, []string{})
		assert.NoError(t, err)
		assert.False(t, exists, "Should return false for empty function list")
	})
}

func TestEmbeddedSQL(t *testing.T) {
	assert.Contains(t, initSQL, "CREATE EXTENSION IF NOT EXISTS vector", "Should enable pgvector")
	assert.Contains(t, entitiesSQL, "CREATE TABLE IF NOT EXISTS entities")
	assert.Contains(t, relationsSQL, "CREATE TABLE IF NOT EXISTS relation_sources")
	assert.Contains(t, runsSQL, "CREATE TABLE IF NOT EXISTS run_sources")

	for _, functions := range [][]string{EntitiesFunctions, RelationsFunctions, RunsFunctions} {
		for _, f := range functions {
			assert.Contains(t, entitiesSQL+relationsSQL+runsSQL, "FUNCTION "+f+"(", "Expected %s to be defined", f)
		}
	}
}
