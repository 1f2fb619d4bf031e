// Package suballoc implements a user-space suballocator: a registry of
// fixed-size memory pools, each backed by a doubly linked segment list
// (the node heap) and a size-sorted gap index used to pick a victim gap
// under a BEST_FIT or FIRST_FIT policy.
//
// The library is single-threaded. A caller that drives the same pool
// from more than one goroutine must serialize its own calls; nothing
// here synchronizes access.
package suballoc
