// Package chain wires the full processor together: tube pre-saturation,
// feed-forward compression (detector, envelope follower, gain computer),
// transformer post-saturation, output trim and wet/dry mix.
//
// The package is built around the real-time split described in Chain's
// documentation: Prepare allocates and configures off the audio path, Process
// runs allocation-free and lock-free on it, and Store and the meter accessors
// carry values across the thread boundary with atomics.
package chain
