// Package withdrawal models a courier's request to pay wallet funds out to an
// external destination, and its approval workflow:
//
//	pending  -> approved, rejected
//	approved -> completed
//	rejected, completed are terminal
package withdrawal
