// Package dynamics implements the gain-reduction loop of an optical-style
// compressor: a hybrid RMS/peak level detector, an envelope follower with
// program-dependent two-stage release, and a soft-knee gain computer.
//
// The three components are independent and composed per sample:
//
//	detectionDB := detector.ProcessSample(left, right)
//	envelopeDB := follower.ProcessSample(detectionDB)
//	reductionDB := computer.Reduction(envelopeDB)
//
// All processing methods are allocation-free and total; out-of-range control
// values are clamped to their documented domains rather than rejected.
package dynamics
