// Package lock provides the optional Redis lease that keeps queue drains
// exclusive across processes.
//
// The in-process reentrancy flag of the queue processor only protects one
// instance. When redis.address is configured, each drain additionally
// obtains a short lease through bsm/redislock; an instance that cannot obtain
// it treats the drain as already running elsewhere.
package lock
