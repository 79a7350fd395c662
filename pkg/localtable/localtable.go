// Package localtable is an in-memory, xBase-style cursor table: ordered
// records addressed by record number, one movable cursor, secondary
// indexes, logical deletion and filters.
package localtable

import (
	"log/slog"

	"github.com/leengari/localtable/internal/domain/data"
	"github.com/leengari/localtable/internal/domain/schema"
	"github.com/leengari/localtable/internal/engine"
)

type (
	Table  = engine.Table
	Option = engine.Option
	Flag   = engine.Flag

	Field         = schema.Field
	FieldType     = schema.FieldType
	ObjectFactory = schema.ObjectFactory
	Registry      = schema.Registry
	Constructor   = schema.Constructor

	Record = data.Record

	Observer  = engine.Observer
	Event     = engine.Event
	EventType = engine.EventType
)

const (
	NoCommit      = engine.NoCommit
	NoIndexUpdate = engine.NoIndexUpdate
)

const (
	ShortText = schema.FieldTypeShortText
	LongText  = schema.FieldTypeLongText
	General   = schema.FieldTypeGeneral
	Number    = schema.FieldTypeNumber
	Date      = schema.FieldTypeDate
	Logical   = schema.FieldTypeLogical
	Object    = schema.FieldTypeObject
)

const (
	EventCommit      = engine.EventCommit
	EventAppend      = engine.EventAppend
	EventIndexBuilt  = engine.EventIndexBuilt
	EventReindex     = engine.EventReindex
	EventPack        = engine.EventPack
	EventZap         = engine.EventZap
	EventRestructure = engine.EventRestructure
	EventBulkUpdate  = engine.EventBulkUpdate
)

// New creates an empty table with the given structure
func New(fields []Field, opts ...Option) (*Table, error) { return engine.New(fields, opts...) }

func WithLogger(l *slog.Logger) Option          { return engine.WithLogger(l) }
func WithObjectFactory(f ObjectFactory) Option { return engine.WithObjectFactory(f) }
func WithName(name string) Option              { return engine.WithName(name) }

// NewRegistry returns an empty ObjectFactory for SetObjectClass and O fields
func NewRegistry() *Registry { return schema.NewRegistry() }

// NewLoggingObserver logs every table event at debug level
func NewLoggingObserver(l *slog.Logger) Observer { return engine.NewLoggingObserver(l) }

// LoadStructure reads a field list from a YAML or JSON file
func LoadStructure(path string) ([]Field, error) { return schema.LoadStructure(path) }
