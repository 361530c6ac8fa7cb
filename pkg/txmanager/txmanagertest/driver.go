// Package txmanagertest предоставляет скриптуемый database/sql драйвер для тестов
// репозиториев и менеджера транзакций без живого PostgreSQL.
package txmanagertest

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"sync"
)

// ErrUnexpectedStatement возвращается, когда скрипт ответов исчерпан
var ErrUnexpectedStatement = errors.New("txmanagertest: unexpected statement")

// Result ответ драйвера на один Exec или Query
type Result struct {
	Columns      []string
	Rows         [][]driver.Value
	RowsAffected int64
	Err          error
}

// Driver отдает заранее заданные ответы по порядку и считает транзакции
type Driver struct {
	mu        sync.Mutex
	results   []Result
	commitErr error

	queries   []string
	commits   int
	rollbacks int
}

// Open создает *sql.DB поверх скрипта ответов
func Open(results ...Result) (*sql.DB, *Driver) {
	d := &Driver{results: results}
	return sql.OpenDB(d), d
}

// FailCommit задает ошибку, которую вернет Commit
func (d *Driver) FailCommit(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.commitErr = err
}

// Queries возвращает выполненные запросы
func (d *Driver) Queries() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.queries...)
}

// Commits возвращает число зафиксированных транзакций
func (d *Driver) Commits() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.commits
}

// Rollbacks возвращает число откаченных транзакций
func (d *Driver) Rollbacks() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rollbacks
}

// Connect реализует driver.Connector
func (d *Driver) Connect(context.Context) (driver.Conn, error) {
	return &conn{d: d}, nil
}

// Driver реализует driver.Connector
func (d *Driver) Driver() driver.Driver {
	return openerFunc(func(string) (driver.Conn, error) { return &conn{d: d}, nil })
}

func (d *Driver) next(query string) (Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.queries = append(d.queries, query)
	if len(d.results) == 0 {
		return Result{}, ErrUnexpectedStatement
	}
	r := d.results[0]
	d.results = d.results[1:]
	return r, r.Err
}

type openerFunc func(name string) (driver.Conn, error)

func (f openerFunc) Open(name string) (driver.Conn, error) { return f(name) }

type conn struct {
	d *Driver
}

func (c *conn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("txmanagertest: prepared statements are not supported")
}

func (c *conn) Close() error { return nil }

func (c *conn) Begin() (driver.Tx, error) {
	return &tx{d: c.d}, nil
}

func (c *conn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	return &tx{d: c.d}, nil
}

// CheckNamedValue принимает аргументы как есть
func (c *conn) CheckNamedValue(*driver.NamedValue) error { return nil }

func (c *conn) ExecContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Result, error) {
	r, err := c.d.next(query)
	if err != nil {
		return nil, err
	}
	return driver.RowsAffected(r.RowsAffected), nil
}

func (c *conn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	r, err := c.d.next(query)
	if err != nil {
		return nil, err
	}
	return &rows{columns: r.Columns, values: r.Rows}, nil
}

type tx struct {
	d *Driver
}

func (t *tx) Commit() error {
	t.d.mu.Lock()
	defer t.d.mu.Unlock()
	if t.d.commitErr != nil {
		return t.d.commitErr
	}
	t.d.commits++
	return nil
}

func (t *tx) Rollback() error {
	t.d.mu.Lock()
	defer t.d.mu.Unlock()
	t.d.rollbacks++
	return nil
}

type rows struct {
	columns []string
	values  [][]driver.Value
}

func (r *rows) Columns() []string { return r.columns }

func (r *rows) Close() error { return nil }

func (r *rows) Next(dest []driver.Value) error {
	if len(r.values) == 0 {
		return io.EOF
	}
	copy(dest, r.values[0])
	r.values = r.values[1:]
	return nil
}
