package repositories

import (
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
)

// pg builds Postgres statements with numbered placeholders. Used where the
// WHERE clause carries a variable-length IN list.
var pg = goqu.Dialect("postgres")
