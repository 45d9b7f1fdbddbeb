package audit

import (
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestPostgresSinkWriteExecutesUpsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO audit_records").WillReturnResult(sqlmock.NewResult(1, 1))

	sink := NewPostgresSink(db)
	record := Record{
		RecordID:  "r1",
		ScanID:    "s1",
		Timestamp: time.Now().UTC(),
		ScanMode:  "full",
		Hash:      "abc",
	}
	require.NoError(t, sink.Write(record))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSinkWritePropagatesError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO audit_records").WillReturnError(sqlErr{})

	sink := NewPostgresSink(db)
	require.Error(t, sink.Write(Record{RecordID: "r2"}))
}

type sqlErr struct{}

func (sqlErr) Error() string { return "connection refused" }
