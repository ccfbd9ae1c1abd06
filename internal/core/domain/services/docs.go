// Package services provides stateless domain services that work across aggregates:
//
//   - CourierMatcher ranks couriers (or pending orders) by great-circle distance
//   - PricingCalculator turns a distance and a zone tariff into a frozen price breakdown
//
// Neither service performs I/O; candidates and tariffs are loaded by the application layer.
package services
