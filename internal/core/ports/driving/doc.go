// Package driving defines the interfaces that the outside world uses to
// drive the core: the CLI, the config watcher and the daemon.
package driving
