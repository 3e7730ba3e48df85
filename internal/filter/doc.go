// Package filter implements the separable box blur used by the
// post-processing chain.
//
// The blur is split into independent horizontal and vertical passes that
// each read one plane and write another, so callers can run them over row
// bands in parallel. The kernel size is not a parameter: it follows from the
// source width through KernelSize.
package filter
