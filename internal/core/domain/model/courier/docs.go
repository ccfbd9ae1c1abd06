// Package courier provides the courier directory entry used for matching: vehicle,
// last reported location and availability. A courier without a reported location
// is never offered to a client, whatever its availability flag says.
package courier
