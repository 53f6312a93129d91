// Package store defines interfaces for data persistence operations on
// accounts and pet posts. These interfaces abstract the underlying storage
// from the services, which compose them inside transactions through the
// Transactor.
package store
