//go:build umapdebug

package graph

// debugChecks enables bounds and shape validation on every matrix access.
const debugChecks = true
