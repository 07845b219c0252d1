//go:build !umapdebug

package graph

const debugChecks = false
