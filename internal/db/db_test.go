package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFrom_EmptyRows(t *testing.T) {
	n, err := CopyFrom(context.TODO(), nil, "records", []string{"a", "b"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyFrom_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"records"}, []string{"page_id", "persona_id"}).WillReturnResult(2)

	rows := [][]any{{"home", "cfo"}, {"pricing", "cfo"}}
	n, err := CopyFrom(context.Background(), mock, "records", []string{"page_id", "persona_id"}, rows)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"records"}, []string{"page_id"}).WillReturnError(fmt.Errorf("copy failed"))

	_, err = CopyFrom(context.Background(), mock, "records", []string{"page_id"}, [][]any{{"home"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO records")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertSQL(t *testing.T) {
	sql, err := UpsertSQL("snapshots",
		[]string{"run_id", "kind", "payload", "created_at"},
		[]string{"run_id", "kind"},
		nil,
	)
	require.NoError(t, err)
	assert.Equal(t,
		"INSERT INTO snapshots (run_id, kind, payload, created_at) VALUES ($1, $2, $3, $4) "+
			"ON CONFLICT (run_id, kind) DO UPDATE SET payload = EXCLUDED.payload, created_at = EXCLUDED.created_at",
		sql)
}

func TestUpsertSQL_ExplicitUpdateCols(t *testing.T) {
	sql, err := UpsertSQL("runs",
		[]string{"id", "status", "updated_at"},
		[]string{"id"},
		[]string{"status"},
	)
	require.NoError(t, err)
	assert.Contains(t, sql, "DO UPDATE SET status = EXCLUDED.status")
	assert.NotContains(t, sql, "updated_at = EXCLUDED")
}

func TestUpsertSQL_Validation(t *testing.T) {
	_, err := UpsertSQL("t", nil, []string{"id"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no columns")

	_, err = UpsertSQL("t", []string{"id"}, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no conflict keys")
}
