// Package runtime owns the gateway process lifecycle.
//
// [Runtime.Run] assigns a correlation id, loads configuration (unless in a
// dry run), starts a [Runner] and converts the outcome into an exit code.
// Cancellation of the context is a clean shutdown. [NoopRunner] idles until
// cancelled; [TickLoop] drives a coordinator on a fixed interval.
package runtime
