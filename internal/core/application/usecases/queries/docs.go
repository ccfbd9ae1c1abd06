// Package queries contains read-only use cases. Handlers read through repositories
// obtained from a unit of work without opening a transaction.
package queries
