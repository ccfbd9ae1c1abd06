// Package order holds the Order aggregate and the status state machine.
//
// Status changes are only legal when they appear in the transition table:
//
//	pending   -> assigned, cancelled
//	assigned  -> picked_up, cancelled
//	picked_up -> delivered, cancelled
//	delivered, cancelled are terminal
//
// Every mutating operation on Order goes through Transition and returns a StatusChange
// that the lifecycle commands persist as a HistoryEntry in the same transaction.
// Assignment happens only when a courier accepts a pending order; it is never done
// through a plain status change.
package order
