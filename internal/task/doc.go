// Package task defines the leaf primitives of the MayaFlux scheduling
// core: the dual-domain Clock, the per-task Promise state record, and the
// explicit Wait state machine that replaces language-level suspension.
//
// TIMING MODEL:
//
// All timing is sample-accurate: expressed in discrete sample or frame
// counts, never wall-clock time. The sample counter advances once per
// processed audio block, the frame counter once per rendered frame. A
// routine suspends by returning a Wait with an absolute counter target;
// the scheduler resumes it on the first pass where the target is reached.
//
// SUSPENSION MODEL:
//
// Suspension is cooperative and non-blocking. A routine's Step function
// runs to completion inside the driving tick and returns control by
// returning its next Wait. Cancellation is observed via
// Promise.ShouldTerminate at each suspension boundary, never preemptive.
//
// REAL-TIME CONSTRAINTS:
//
// Everything reachable from a tick is allocation-free and bounded: the
// scratch store is a fixed array of kind-tagged unions keyed by a closed
// enum, wake conditions are plain structs, and cross-thread flags are
// single atomics. Conditions reachable in steady state are signalled
// through return values, never panics.
package task
