// Package fileutil moves finished renders into place. Renames are tried first;
// cross-device moves are copied with checksum verification before the source
// is removed.
package fileutil
