// Package kernel provides the shared value objects of the marketplace domain:
// UUID identifiers, geographic Location with haversine distance, Money in
// minor units and the Actor performing an operation.
package kernel
