// Package resource bounds the resources a store may consume: the number of
// row sequences open at once and the byte rate of remote fetches.
//
// A nil *Controller is valid and imposes no limits, so callers can hold one
// unconditionally.
package resource
