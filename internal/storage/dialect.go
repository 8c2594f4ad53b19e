package storage

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// sqliteTimeLayout sorts lexicographically in chronological order, which
// the range scans rely on.
const sqliteTimeLayout = "2006-01-02 15:04:05.000000"

// Dialect captures the differences between the supported SQL engines.
type Dialect struct {
	Name          string
	driverName    string
	migrationsDir string
	// amountExpr is the comparable numeric form of transactions.amount.
	amountExpr string
	numbered   bool
}

var (
	SQLite = Dialect{
		Name:          "sqlite",
		driverName:    "sqlite",
		migrationsDir: "migrations/sqlite",
		amountExpr:    "CAST(t.amount AS REAL)",
	}
	Postgres = Dialect{
		Name:          "postgres",
		driverName:    "pgx",
		migrationsDir: "migrations/postgres",
		amountExpr:    "t.amount",
		numbered:      true,
	}
)

// rebind rewrites ? placeholders into $n for engines that need numbered ones.
func (d Dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d Dialect) timeArg(t time.Time) any {
	t = t.UTC()
	if d.numbered {
		return t
	}
	return t.Format(sqliteTimeLayout)
}

// scanTime accepts the representations the drivers hand back for timestamps.
func scanTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		return parseTimeText(t)
	case []byte:
		return parseTimeText(string(t))
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
	}
}

func parseTimeText(s string) (time.Time, error) {
	for _, layout := range []string{sqliteTimeLayout, time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q", s)
}
