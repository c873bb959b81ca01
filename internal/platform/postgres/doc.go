// Package postgres contains PostgreSQL implementations of the store
// interfaces defined in the store package.
package postgres
