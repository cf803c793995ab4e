// Package monitor is the typed client for repository monitors: listing,
// creating, updating and deleting them, plus their digest history and
// activity metrics.
package monitor
