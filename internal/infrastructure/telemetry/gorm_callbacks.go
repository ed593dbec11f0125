package telemetry

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

type queryStartKey struct{}

// markQueryStart stores the statement start time for the after callbacks.
func markQueryStart(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}
	db.Statement.Context = context.WithValue(ctx, queryStartKey{}, time.Now())
}

// queryElapsed returns the time since markQueryStart, or false when unknown.
func queryElapsed(db *gorm.DB) (time.Duration, bool) {
	if db.Statement.Context == nil {
		return 0, false
	}
	start, ok := db.Statement.Context.Value(queryStartKey{}).(time.Time)
	if !ok {
		return 0, false
	}
	return time.Since(start), true
}

// registerAroundCallbacks hooks before and after every gorm processor.
// after receives the SQL verb; row and raw statements get it from the SQL text.
func registerAroundCallbacks(db *gorm.DB, prefix string, after func(op string) func(*gorm.DB)) error {
	cb := db.Callback()
	return errors.Join(
		cb.Create().Before("gorm:create").Register(prefix+":before_create", markQueryStart),
		cb.Query().Before("gorm:query").Register(prefix+":before_query", markQueryStart),
		cb.Update().Before("gorm:update").Register(prefix+":before_update", markQueryStart),
		cb.Delete().Before("gorm:delete").Register(prefix+":before_delete", markQueryStart),
		cb.Row().Before("gorm:row").Register(prefix+":before_row", markQueryStart),
		cb.Raw().Before("gorm:raw").Register(prefix+":before_raw", markQueryStart),

		cb.Create().After("gorm:create").Register(prefix+":after_create", after("INSERT")),
		cb.Query().After("gorm:query").Register(prefix+":after_query", after("SELECT")),
		cb.Update().After("gorm:update").Register(prefix+":after_update", after("UPDATE")),
		cb.Delete().After("gorm:delete").Register(prefix+":after_delete", after("DELETE")),
		cb.Row().After("gorm:row").Register(prefix+":after_row", after("")),
		cb.Raw().After("gorm:raw").Register(prefix+":after_raw", after("")),
	)
}

// detectOperationType returns the leading SQL verb.
func detectOperationType(sql string) string {
	sql = strings.ToUpper(strings.TrimSpace(sql))
	for _, verb := range []string{"SELECT", "INSERT", "UPDATE", "DELETE"} {
		if strings.HasPrefix(sql, verb) {
			return verb
		}
	}
	return "OTHER"
}

func operationOf(db *gorm.DB, op string) string {
	if op != "" {
		return op
	}
	return detectOperationType(db.Statement.SQL.String())
}
