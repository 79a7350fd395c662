package engine

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/leengari/localtable/internal/condition"
	"github.com/leengari/localtable/internal/domain/data"
	"github.com/leengari/localtable/internal/domain/schema"
	"github.com/leengari/localtable/internal/indexing"
)

// Flag modifies a cursor movement or commit
type Flag uint8

const (
	// NoCommit skips the implicit commit of the current record before a move
	NoCommit Flag = 1 << iota
	// NoIndexUpdate commits the record without maintaining the indexes
	NoIndexUpdate
)

func has(flags []Flag, f Flag) bool {
	for _, x := range flags {
		if x&f != 0 {
			return true
		}
	}
	return false
}

// Table is an in-memory record table with one cursor. It is not safe for
// concurrent use; a Table belongs to a single goroutine at a time.
type Table struct {
	id        uuid.UUID
	name      string
	logger    *slog.Logger
	observers []Observer

	schema  *schema.Schema
	factory schema.ObjectFactory
	records []data.Record

	// cursor
	cur   data.Record
	recno int
	bof   bool
	eof   bool

	setDeleted bool
	filter     *condition.Compiled

	// 0 physical order, -1 maintenance suspended, n the nth index
	curOrder int
	indexes  []*indexing.Index

	vars condition.Env
	err  error
}

// Option configures a Table at construction
type Option func(*Table)

// WithLogger sets the logger diagnostics are written to
func WithLogger(l *slog.Logger) Option {
	return func(t *Table) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithObjectFactory sets the factory that builds object fields with a class identity
func WithObjectFactory(f schema.ObjectFactory) Option {
	return func(t *Table) { t.factory = f }
}

// WithName names the table in logs
func WithName(name string) Option {
	return func(t *Table) { t.name = name }
}

// New creates an empty table for a field definition list
func New(fields []schema.Field, opts ...Option) (*Table, error) {
	t := &Table{
		id:         uuid.New(),
		name:       "localtable",
		logger:     slog.Default(),
		setDeleted: true,
		vars:       condition.Env{},
	}
	for _, opt := range opts {
		opt(t)
	}

	s, err := schema.Compile(fields, t.factory)
	if err != nil {
		return nil, err
	}
	t.schema = s
	t.logger = t.logger.With("table", t.name, "table_id", t.id.String())

	t.recno = 1
	t.eof = true
	t.cur = s.EmptyRecord()

	t.logger.Debug("table created", "fields", len(fields))
	return t, nil
}

// ID returns the table identity used in logs and events
func (t *Table) ID() uuid.UUID { return t.id }

func (t *Table) Name() string { return t.name }

// Logger returns the table's logger
func (t *Table) Logger() *slog.Logger { return t.logger }

// Err returns the diagnostic of the most recent failed operation
func (t *Table) Err() error { return t.err }

// Recno returns the current record number; reccount+1 at end of file
func (t *Table) Recno() int { return t.recno }

// Reccount returns the number of records, deleted ones included
func (t *Table) Reccount() int { return len(t.records) }

func (t *Table) Bof() bool { return t.bof }

func (t *Table) Eof() bool { return t.eof }

// Found reports whether the cursor is on a record
func (t *Table) Found() bool { return !t.eof }

// Bind makes a variable or function visible to every expression the table
// evaluates, e.g. Bind("m", map[string]interface{}{"code": "A1"}).
// A nil value removes the binding.
func (t *Table) Bind(name string, value interface{}) {
	if value == nil {
		delete(t.vars, name)
		return
	}
	if fn, ok := value.(func(args ...interface{}) (interface{}, error)); ok {
		t.vars[name] = condition.Func(fn)
		return
	}
	t.vars[name] = data.Normalize(value)
}

// compile binds expr to the table's fields under the default scope
func (t *Table) compile(expr string) (*condition.Compiled, error) {
	return condition.Compile(expr, t.schema, condition.DefaultScope)
}

// Eval evaluates an expression against the current record and the bound
// variables. On failure it returns nil, false and records the error.
func (t *Table) Eval(expr string) (interface{}, bool) {
	c, err := t.compile(expr)
	if err != nil {
		t.fail("eval", err)
		return nil, false
	}
	v, err := c.Eval(t.cur, t.vars)
	if err != nil {
		t.fail("eval", err)
		return nil, false
	}
	return v, true
}
