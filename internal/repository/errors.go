package repository

import "errors"

// ErrListingNotFound se devuelve cuando no existe un listing con ese id.
var ErrListingNotFound = errors.New("listing not found")

// ErrScanRunNotFound se devuelve al completar una corrida inexistente.
var ErrScanRunNotFound = errors.New("scan run not found")

// pgxRows es la parte de pgx.Rows que usan los scanners; simplifica los tests.
type pgxRows interface {
	Next() bool
	Scan(...interface{}) error
	Err() error
	Close()
}
