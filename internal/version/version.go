// Package version holds the release versions of the dhcpool binaries.
// poold and poolctl are versioned independently. All versions follow
// semantic versioning.
package version

// PooldVersion holds the current poold daemon version.
// Format: major.minor.patch[-prerelease][+build]
const PooldVersion = "0.1.0-dev"

// PoolctlVersion holds the current poolctl CLI version.
// Format: major.minor.patch[-prerelease][+build]
const PoolctlVersion = "0.1.0-dev"
