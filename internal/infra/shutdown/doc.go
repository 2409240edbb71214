// Package shutdown runs cleanup hooks when lingvo-cli exits.
//
// Hooks run once, in reverse registration order, bounded by a timeout.
// They fire either when a command finishes normally or when SIGINT or
// SIGTERM cancels the signal context:
//
//	h := shutdown.NewHandler(5 * time.Second)
//	ctx, stop := h.SignalContext(context.Background())
//	defer stop()
//	defer h.Shutdown()
package shutdown
