// Package wallet models the courier earnings account.
//
// Every wallet satisfies, after each mutation:
//
//	balance, pending_balance, total_earned, total_withdrawn >= 0
//	balance + pending_balance + total_withdrawn == total_earned
//
// Money flows in through Credit, is parked by Reserve while a withdrawal is in flight,
// and leaves through Finalize or goes back through Release.
package wallet
