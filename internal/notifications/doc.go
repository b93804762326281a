// Package notifications pushes render outcomes to ntfy.
//
// NewService returns a no-op implementation when no topic is configured, so
// callers never need to check whether notifications are enabled. The
// notifications.render_complete and notifications.errors switches gate the
// individual message kinds.
package notifications
