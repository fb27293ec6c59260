package history

import (
	"bytes"
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	mock.ExpectPing()
	store, err := NewPostgresStore(db)
	require.NoError(t, err)

	return store, mock, db
}

func assessmentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "patient_id", "agent_id", "phenotype", "success",
		"summary", "response", "created_at", "updated_at",
	})
}

func TestNewPostgresStore_NilDB(t *testing.T) {
	store, err := NewPostgresStore(nil)

	require.Error(t, err)
	assert.Nil(t, store)
	assert.Contains(t, err.Error(), "database connection is required")
}

func TestPostgresStore_Save(t *testing.T) {
	store, mock, db := setupMockStore(t)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO assessments").
		WithArgs(
			"patient-001", "identify_phenotype", "A", true,
			"Phenotype identification complete: A", `{"success":true}`,
			sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	assessment := &Assessment{
		PatientID: "patient-001",
		AgentID:   "identify_phenotype",
		Phenotype: "A",
		Success:   true,
		Summary:   "Phenotype identification complete: A",
		Response:  `{"success":true}`,
	}

	err := store.Save(context.Background(), assessment)

	require.NoError(t, err)
	assert.Equal(t, int64(42), assessment.ID)
	assert.False(t, assessment.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Get(t *testing.T) {
	store, mock, db := setupMockStore(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM assessments").
		WithArgs("patient-001", "identify_phenotype").
		WillReturnRows(assessmentRows().AddRow(
			int64(7), "patient-001", "identify_phenotype", "B", true,
			"Phenotype identification complete: B", `{"success":true}`,
			now, now,
		))

	retrieved, err := store.Get(context.Background(), "patient-001", "identify_phenotype")

	require.NoError(t, err)
	require.NotNil(t, retrieved)
	assert.Equal(t, int64(7), retrieved.ID)
	assert.Equal(t, "B", retrieved.Phenotype)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Get_NotFound(t *testing.T) {
	store, mock, db := setupMockStore(t)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM assessments").
		WithArgs("patient-999", "patient_intake").
		WillReturnError(sql.ErrNoRows)

	retrieved, err := store.Get(context.Background(), "patient-999", "patient_intake")

	require.NoError(t, err)
	assert.Nil(t, retrieved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_List(t *testing.T) {
	store, mock, db := setupMockStore(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM assessments").
		WithArgs("patient-001", 10, 0).
		WillReturnRows(assessmentRows().
			AddRow(int64(2), "patient-001", "identify_phenotype", "A", true, "", `{}`, now, now).
			AddRow(int64(1), "patient-001", "patient_intake", "", true, "", `{}`, now, now))

	list, err := store.List(context.Background(), "patient-001", 10, 0)

	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, "identify_phenotype", list[0].AgentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_List_AllPatients(t *testing.T) {
	store, mock, db := setupMockStore(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM assessments").
		WithArgs(5, 0).
		WillReturnRows(assessmentRows().
			AddRow(int64(3), "patient-002", "recommend_labs", "", true, "", `{}`, now, now))

	list, err := store.List(context.Background(), "", 5, 0)

	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, "patient-002", list[0].PatientID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Count(t *testing.T) {
	store, mock, db := setupMockStore(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM assessments`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(9)))

	count, err := store.Count(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(9), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Delete(t *testing.T) {
	store, mock, db := setupMockStore(t)
	defer db.Close()

	mock.ExpectExec("DELETE FROM assessments").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Delete(context.Background(), 7)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ImportJSON_SkipsExisting(t *testing.T) {
	store, mock, db := setupMockStore(t)
	defer db.Close()

	// Existing row matches the first entry, second is fresh
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM assessments`).
		WithArgs("patient-001", "identify_phenotype", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM assessments`).
		WithArgs("patient-002", "patient_intake", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectQuery("INSERT INTO assessments").
		WithArgs(
			"patient-002", "patient_intake", "", true,
			"", `{"success":true}`, sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))

	jsonData := `{
		"version": "1.0",
		"count": 2,
		"assessments": [
			{
				"patient_id": "patient-001",
				"agent_id": "identify_phenotype",
				"success": true,
				"response": "{\"success\":true}",
				"created_at": "2025-11-02T09:30:00Z"
			},
			{
				"patient_id": "patient-002",
				"agent_id": "patient_intake",
				"success": true,
				"response": "{\"success\":true}",
				"created_at": "2025-11-03T14:00:00Z"
			}
		]
	}`

	imported, skipped, err := store.ImportJSON(context.Background(), bytes.NewReader([]byte(jsonData)))

	require.NoError(t, err)
	assert.Equal(t, 1, imported)
	assert.Equal(t, 1, skipped)
	assert.NoError(t, mock.ExpectationsWereMet())
}
