// Package sim provides the discrete-event simulation engine for the cloud
// datacenter control core.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - cloudlet.go: Cloudlet lifecycle (Waiting → InExec → Success/Failed/Cancelled)
//   - event.go: Event types that drive the simulation (arrival, submit, finish, vm lifecycle)
//   - engine.go: The event loop, clock, and RunUntil contract
//   - broker.go: the wait queue, agent-directed dispatch, and VM-destruction rescheduling
//
// # Architecture
//
// Hosts own their VMs exclusively (datacenter.go). The broker owns the
// cloudlet set exclusively until a cloudlet is bound to a VM, at which
// point ownership transfers to that VM's scheduler (scheduler.go) until
// completion. Cross-references are id-indexed lookups, never back
// pointers, so destroying an entity cannot leave a dangling reference
// held by another.
//
// The agent bridge (action.go, observation.go, reward.go, driver.go)
// exposes Reset/Step to an external policy; see package bridge for the
// JSON/HTTP transport.
package sim
