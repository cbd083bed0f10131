// Package resourceguard implements exclusive ownership of hardware
// resource handles with idempotent, ordered release.
//
// The guard owns a set of capture handles (capture session, device,
// output surface) on behalf of a single session lifecycle. Release
// closes handles in a fixed order with per-handle failure isolation:
// a handle that fails to close never prevents the remaining handles
// from being attempted. Close failures are logged as warnings and
// never escalated, because by the time the guard runs the caller has
// no way to act on them.
//
// Ownership contract: once a ResourceSet is assigned, no other
// component may hold a closing reference to its handles.
package resourceguard
