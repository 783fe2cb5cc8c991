// Package version reports the wfs build version.
//
// Release builds inject Version, Commit and Date with -ldflags; other builds
// fall back to the module version and VCS stamps in debug.ReadBuildInfo.
package version
