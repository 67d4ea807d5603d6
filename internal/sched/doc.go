// Package sched implements the MayaFlux cooperative scheduler: a
// registry of named tasks advanced against the dual-domain clock.
//
// ARCHITECTURE:
//
// Tick-Driven Resume Scan:
// The real-time audio callback calls TickBlock once per processed block;
// the render loop calls TickFrame once per rendered frame. Each tick
// advances the corresponding clock counter and scans the registry,
// stepping every suspended task whose wake condition is satisfied. All
// task execution happens synchronously inside the driving tick; there is
// no thread pool and no preemption.
//
// Real-Time Discipline:
// The registry is a fixed-capacity slot table. The scan reads per-slot
// atomics and takes no lock, allocates nothing, and performs no
// operation that can block for an unbounded time. Control operations
// (schedule, cancel, restart, update) go through a mutex that is never
// held during a scan; they coordinate with in-flight steps through a
// per-slot run guard.
//
// Dual Domains:
// Sample-domain and frame-domain ticks may be driven from different
// threads. The per-slot run guard makes the two scans mutually exclusive
// per task, and dual-domain waits resume only once both counters have
// independently reached their targets.
//
// Name Collisions:
// Scheduling under a name already present replaces the prior task: the
// previous task is cancelled first, then the new one installed. This is
// the documented policy; callers wanting reject semantics must check
// Has() first.
package sched
