// Package saturation implements the two nonlinear coloration stages of the
// processing chain: a tube-style stage applied before gain reduction and a
// transformer-style stage applied after it.
//
// Both stages share the same bypass rule: below a drive/color amount of
// 0.001 they pass blocks through untouched with no filtering and no work.
// Scratch storage is sized once in Prepare; the block processing paths are
// allocation-free.
package saturation
