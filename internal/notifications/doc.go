// Package notifications delivers job lifecycle events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled. The Service methods cover the watcher's terminal states plus the
// save prompt so render code can emit consistent, user-friendly messages
// without duplicating HTTP glue.
//
// Extend this package if you need alternative transports; all render code
// depends only on the simple Service interface.
package notifications
