package repository

import (
	"fmt"
	"strings"
)

// live is the soft-delete predicate. Every existence lookup goes through it so a
// row with deleted_at set is indistinguishable from a missing one.
func live(alias string) string {
	if alias == "" {
		return "deleted_at IS NULL"
	}
	return fmt.Sprintf("%s.deleted_at IS NULL", alias)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching s literally anywhere in the
// value. Use with ESCAPE '\'.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
