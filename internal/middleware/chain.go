package middleware

import "github.com/spf13/cobra"

// RunE is the signature of a cobra command body.
type RunE func(cmd *cobra.Command, args []string) error

// Middleware wraps a command body with cross-cutting behavior.
type Middleware func(next RunE) RunE

// Chain wraps run with mws. The first middleware is the outermost.
func Chain(run RunE, mws ...Middleware) RunE {
	for i := len(mws) - 1; i >= 0; i-- {
		run = mws[i](run)
	}
	return run
}

// Wrap applies mws to cmd and every descendant that has a RunE.
//
// Usage:
//
//	root := cli.NewRootCommand()
//	middleware.Wrap(root, middleware.CommandID(), middleware.CommandLogger(), middleware.Recovery())
func Wrap(cmd *cobra.Command, mws ...Middleware) {
	if cmd.RunE != nil {
		cmd.RunE = Chain(cmd.RunE, mws...)
	}
	for _, c := range cmd.Commands() {
		Wrap(c, mws...)
	}
}
