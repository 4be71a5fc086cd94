// Package db is the local store: on-device SQLite, the source of truth for
// every read. The remote mirror may lag or diverge; only the sync pass and
// repository write-throughs bring remote data in here.
package db

import "database/sql"

func nullStr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
