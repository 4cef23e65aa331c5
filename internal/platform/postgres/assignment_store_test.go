package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insighthr/dossier-api/internal/domain"
	"github.com/insighthr/dossier-api/internal/store"
)

// stubConn is a scripted driver connection. It records every statement
// it executes, reports a fixed rows-affected count, and answers the
// follow-up status lookup from statusRow (nil means no matching row).
type stubConn struct {
	execQueries []string
	execRows    int64
	statusRow   []driver.Value
}

func (c *stubConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (c *stubConn) Close() error                        { return nil }
func (c *stubConn) Begin() (driver.Tx, error)           { return nil, errors.New("not supported") }

func (c *stubConn) ExecContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Result, error) {
	c.execQueries = append(c.execQueries, query)
	return driver.RowsAffected(c.execRows), nil
}

func (c *stubConn) QueryContext(_ context.Context, _ string, _ []driver.NamedValue) (driver.Rows, error) {
	rows := &stubRows{cols: []string{"status"}}
	if c.statusRow != nil {
		rows.vals = [][]driver.Value{c.statusRow}
	}
	return rows, nil
}

type stubRows struct {
	cols []string
	vals [][]driver.Value
	i    int
}

func (r *stubRows) Columns() []string { return r.cols }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.i >= len(r.vals) {
		return io.EOF
	}
	copy(dest, r.vals[r.i])
	r.i++
	return nil
}

type stubConnector struct{ conn *stubConn }

func (c stubConnector) Connect(context.Context) (driver.Conn, error) { return c.conn, nil }
func (c stubConnector) Driver() driver.Driver                        { return stubDriver{} }

type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) { return nil, errors.New("not supported") }

func newStubStore(t *testing.T, conn *stubConn) *PostgresAssignmentStore {
	t.Helper()
	db := sql.OpenDB(stubConnector{conn: conn})
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresAssignmentStore(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func completingAssignment(t *testing.T) *domain.FormAssignment {
	t.Helper()
	assignment, err := domain.NewFormAssignment(
		uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New(), nil)
	require.NoError(t, err)
	require.NoError(t, assignment.MarkOpened(time.Now().UTC()))
	require.NoError(t, assignment.MarkCompleted(time.Now().UTC(), uuid.New()))
	return assignment
}

func TestUpdateGuardsCompletedRows(t *testing.T) {
	conn := &stubConn{execRows: 1}
	s := newStubStore(t, conn)

	err := s.Update(context.Background(), completingAssignment(t))
	require.NoError(t, err)

	require.Len(t, conn.execQueries, 1)
	assert.Contains(t, conn.execQueries[0], "status <> 'completed'")
}

func TestUpdateLosingRaceToCompletion(t *testing.T) {
	// The UPDATE matched nothing but the row is there, already
	// completed. The first writer won; this one must not overwrite.
	conn := &stubConn{execRows: 0, statusRow: []driver.Value{"completed"}}
	s := newStubStore(t, conn)

	err := s.Update(context.Background(), completingAssignment(t))
	assert.ErrorIs(t, err, store.ErrAssignmentCompleted)
}

func TestUpdateMissingRow(t *testing.T) {
	conn := &stubConn{execRows: 0}
	s := newStubStore(t, conn)

	err := s.Update(context.Background(), completingAssignment(t))
	assert.ErrorIs(t, err, store.ErrAssignmentNotFound)
}
