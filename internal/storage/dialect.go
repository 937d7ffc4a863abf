package storage

import (
	"fmt"
	"strconv"
	"strings"
)

// dialect covers the few places where the SQL differs between backends:
// placeholder syntax, column types and upserts.
type dialect struct {
	name   string
	driver string // database/sql driver name
	types  *strings.Replacer
}

func dialectFor(name string) (dialect, error) {
	switch name {
	case "sqlite", "":
		return dialect{
			name:   "sqlite",
			driver: "sqlite",
			types:  strings.NewReplacer("{{id}}", "TEXT", "{{name}}", "TEXT", "{{text}}", "TEXT", "{{ts}}", "DATETIME"),
		}, nil
	case "postgres":
		return dialect{
			name:   "postgres",
			driver: "postgres",
			types:  strings.NewReplacer("{{id}}", "VARCHAR(191)", "{{name}}", "TEXT", "{{text}}", "TEXT", "{{ts}}", "TIMESTAMPTZ"),
		}, nil
	case "mysql":
		return dialect{
			name:   "mysql",
			driver: "mysql",
			types:  strings.NewReplacer("{{id}}", "VARCHAR(191)", "{{name}}", "VARCHAR(512)", "{{text}}", "LONGTEXT", "{{ts}}", "DATETIME(6)"),
		}, nil
	}
	return dialect{}, fmt.Errorf("unsupported database driver %q", name)
}

func (d dialect) ddl(stmt string) string {
	return d.types.Replace(stmt)
}

// rebind turns ? placeholders into $1, $2... for postgres.
func (d dialect) rebind(q string) string {
	if d.name != "postgres" {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for _, r := range q {
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

// upsert builds an insert that overwrites cols on primary key conflict.
func (d dialect) upsert(table string, key string, cols ...string) string {
	all := append([]string{key}, cols...)
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(all)), ", ")
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(all, ", "), marks)

	sets := make([]string, len(cols))
	if d.name == "mysql" {
		for i, c := range cols {
			sets[i] = fmt.Sprintf("%s = VALUES(%s)", c, c)
		}
		return q + " ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", ")
	}
	for i, c := range cols {
		sets[i] = fmt.Sprintf("%s = excluded.%s", c, c)
	}
	return q + fmt.Sprintf(" ON CONFLICT(%s) DO UPDATE SET ", key) + strings.Join(sets, ", ")
}
