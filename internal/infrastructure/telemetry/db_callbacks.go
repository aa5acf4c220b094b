package telemetry

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
)

// gormHook is one GORM callback chain that instrumentation wraps. The
// register closures keep GORM's unexported callback types out of sight.
type gormHook struct {
	name      string // chain name used in callback names
	operation string // SQL verb, empty when it has to be read from the statement
	otelAfter string // otelgorm's after callback, which ends the span
	before    func(db *gorm.DB, cbName string, fn func(*gorm.DB)) error
	after     func(db *gorm.DB, cbName, ahead string, fn func(*gorm.DB)) error
}

var gormHooks = []gormHook{
	{
		name: "create", operation: "INSERT", otelAfter: "otel:after:create",
		before: func(db *gorm.DB, n string, fn func(*gorm.DB)) error {
			return db.Callback().Create().Before("gorm:create").Register(n, fn)
		},
		after: func(db *gorm.DB, n, ahead string, fn func(*gorm.DB)) error {
			cb := db.Callback().Create().After("gorm:create")
			if ahead != "" {
				cb = cb.Before(ahead)
			}
			return cb.Register(n, fn)
		},
	},
	{
		name: "query", operation: "SELECT", otelAfter: "otel:after:select",
		before: func(db *gorm.DB, n string, fn func(*gorm.DB)) error {
			return db.Callback().Query().Before("gorm:query").Register(n, fn)
		},
		after: func(db *gorm.DB, n, ahead string, fn func(*gorm.DB)) error {
			cb := db.Callback().Query().After("gorm:query")
			if ahead != "" {
				cb = cb.Before(ahead)
			}
			return cb.Register(n, fn)
		},
	},
	{
		name: "update", operation: "UPDATE", otelAfter: "otel:after:update",
		before: func(db *gorm.DB, n string, fn func(*gorm.DB)) error {
			return db.Callback().Update().Before("gorm:update").Register(n, fn)
		},
		after: func(db *gorm.DB, n, ahead string, fn func(*gorm.DB)) error {
			cb := db.Callback().Update().After("gorm:update")
			if ahead != "" {
				cb = cb.Before(ahead)
			}
			return cb.Register(n, fn)
		},
	},
	{
		name: "delete", operation: "DELETE", otelAfter: "otel:after:delete",
		before: func(db *gorm.DB, n string, fn func(*gorm.DB)) error {
			return db.Callback().Delete().Before("gorm:delete").Register(n, fn)
		},
		after: func(db *gorm.DB, n, ahead string, fn func(*gorm.DB)) error {
			cb := db.Callback().Delete().After("gorm:delete")
			if ahead != "" {
				cb = cb.Before(ahead)
			}
			return cb.Register(n, fn)
		},
	},
	{
		name: "row", otelAfter: "otel:after:row",
		before: func(db *gorm.DB, n string, fn func(*gorm.DB)) error {
			return db.Callback().Row().Before("gorm:row").Register(n, fn)
		},
		after: func(db *gorm.DB, n, ahead string, fn func(*gorm.DB)) error {
			cb := db.Callback().Row().After("gorm:row")
			if ahead != "" {
				cb = cb.Before(ahead)
			}
			return cb.Register(n, fn)
		},
	},
	{
		name: "raw", otelAfter: "otel:after:raw",
		before: func(db *gorm.DB, n string, fn func(*gorm.DB)) error {
			return db.Callback().Raw().Before("gorm:raw").Register(n, fn)
		},
		after: func(db *gorm.DB, n, ahead string, fn func(*gorm.DB)) error {
			cb := db.Callback().Raw().After("gorm:raw")
			if ahead != "" {
				cb = cb.Before(ahead)
			}
			return cb.Register(n, fn)
		},
	},
}

// hookOptions tunes registerGormHooks.
type hookOptions struct {
	// beforeSpanEnd orders the after callbacks ahead of otelgorm's, while
	// the statement span is still recording.
	beforeSpanEnd bool
}

type queryTimingKey string

// stampStart returns a before callback that records the start time under key.
func stampStart(key queryTimingKey) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}
		db.Statement.Context = context.WithValue(ctx, key, time.Now())
	}
}

// elapsedSince reports the time since the start stamped under key.
func elapsedSince(ctx context.Context, key queryTimingKey) (time.Duration, bool) {
	if ctx == nil {
		return 0, false
	}
	start, ok := ctx.Value(key).(time.Time)
	if !ok {
		return 0, false
	}
	return time.Since(start), true
}

// registerGormHooks installs "<prefix>:before_<chain>" and
// "<prefix>:after_<chain>" on every chain. A nil before skips the first.
func registerGormHooks(db *gorm.DB, prefix string, opts hookOptions, before func(*gorm.DB), after func(gormHook) func(*gorm.DB)) error {
	for _, h := range gormHooks {
		if before != nil {
			if err := h.before(db, prefix+":before_"+h.name, before); err != nil {
				return err
			}
		}
		ahead := ""
		if opts.beforeSpanEnd {
			ahead = h.otelAfter
		}
		if err := h.after(db, prefix+":after_"+h.name, ahead, after(h)); err != nil {
			return err
		}
	}
	return nil
}

// operationOf names the SQL verb of a finished statement.
func operationOf(h gormHook, db *gorm.DB) string {
	if h.operation != "" {
		return h.operation
	}
	return detectOperationType(db.Statement.SQL.String())
}

var sqlVerbs = []struct{ prefix, verb string }{
	{"SELECT", "SELECT"},
	{"WITH", "SELECT"},
	{"INSERT", "INSERT"},
	{"UPDATE", "UPDATE"},
	{"DELETE", "DELETE"},
}

// detectOperationType reads the verb off a raw statement. CTEs count as SELECT.
func detectOperationType(sql string) string {
	sql = strings.ToUpper(strings.TrimSpace(sql))
	for _, v := range sqlVerbs {
		if strings.HasPrefix(sql, v.prefix) {
			return v.verb
		}
	}
	return "OTHER"
}
