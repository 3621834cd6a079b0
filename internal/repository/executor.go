package repository

import "github.com/jmoiron/sqlx"

// executor returns q when the caller runs inside a transaction and the pool otherwise.
func executor(db *sqlx.DB, q sqlx.ExtContext) sqlx.ExtContext {
	if q != nil {
		return q
	}
	return db
}

func likePattern(search string) string {
	return "%" + search + "%"
}
