package suballoc

import "unsafe"

const poolStoreInitCapacity = 20

// Registry is the top-level pool directory: a growable slot table of
// open pools. A nil slot is unused. Most programs only need the
// package-level Default registry and the convenience functions below;
// Registry is exported so a program that wants isolated pool
// namespaces (tests, in particular) can create its own.
type Registry struct {
	pools       []*PoolManager
	used        int
	initialized bool
}

// NewRegistry returns an uninitialized registry; call Init before
// opening any pool.
func NewRegistry() *Registry {
	return &Registry{}
}

// Init prepares the registry's slot table. Calling Init on an
// already-initialized registry is a usage error, not a silent no-op —
// it almost always indicates a double-init bug in the caller.
func (r *Registry) Init() Status {
	if r.initialized {
		return CalledAgain
	}

	r.pools = make([]*PoolManager, poolStoreInitCapacity)
	r.used = 0
	r.initialized = true

	return Ok
}

// Teardown closes every still-open pool and releases the slot table.
// A pool that still has live allocations is closed anyway — Teardown
// is the registry's last chance to reclaim memory, not another
// opportunity to reject a caller's mistake — but the last non-Ok status
// any individual close produced is returned so the caller can tell the
// teardown wasn't entirely clean.
func (r *Registry) Teardown() Status {
	if !r.initialized {
		return CalledAgain
	}

	worst := Ok

	for _, mgr := range r.pools {
		if mgr == nil {
			continue
		}

		if status := mgr.close(); status != Ok {
			worst = status
		}
	}

	r.pools = nil
	r.used = 0
	r.initialized = false

	return worst
}

// growPoolStore doubles the slot table when occupancy exceeds the
// fill factor, mirroring the node heap and gap index growth policy.
func (r *Registry) growPoolStore() {
	if float64(r.used)/float64(len(r.pools)) <= fillFactor {
		return
	}

	grown := make([]*PoolManager, len(r.pools)*expandFactor)
	copy(grown, r.pools)
	r.pools = grown
}

// Open creates a new pool of size bytes under policy and returns a
// handle to it.
func (r *Registry) Open(size uintptr, policy Policy) (*Handle, Status) {
	if !r.initialized {
		return nil, CalledAgain
	}

	r.growPoolStore()

	mgr, status := newPoolManager(size, policy)
	if status != Ok {
		return nil, status
	}

	for i := range r.pools {
		if r.pools[i] == nil {
			r.pools[i] = mgr
			r.used++

			return &Handle{mgr: mgr}, Ok
		}
	}

	return nil, NoMemory
}

// Close validates and releases the pool behind h. The handle is
// invalid for any further use once Close returns Ok.
func (r *Registry) Close(h *Handle) Status {
	if !r.initialized {
		return CalledAgain
	}

	for i, mgr := range r.pools {
		if mgr != h.mgr {
			continue
		}

		if status := mgr.close(); status != Ok {
			return status
		}

		r.pools[i] = nil
		r.used--

		return Ok
	}

	return Fail
}

// Allocate, Free, and Inspect delegate to h; they exist so a program
// that threads a non-Default *Registry through its code can still
// call every operation as a Registry method, matching spec.md §6's
// interface table.
func (r *Registry) Allocate(h *Handle, size uintptr) (unsafe.Pointer, Status) {
	return h.Allocate(size)
}

func (r *Registry) Free(h *Handle, ptr unsafe.Pointer) Status {
	return h.Free(ptr)
}

func (r *Registry) Inspect(h *Handle) []Segment {
	return h.Inspect()
}

// Default is the package-level registry used by the convenience
// functions below, mirroring the single global allocator a process
// typically needs.
var Default = &Registry{}

// Init, Teardown, Open, and Close delegate to Default.
func Init() Status                                   { return Default.Init() }
func Teardown() Status                               { return Default.Teardown() }
func Open(size uintptr, policy Policy) (*Handle, Status) { return Default.Open(size, policy) }
func Close(h *Handle) Status                         { return Default.Close(h) }

// Allocate, Free, and Inspect delegate to h; they exist so callers
// that only ever touch Default's pools can write suballoc.Allocate(h,
// n) instead of h.Allocate(n), matching the package-level convenience
// functions a global allocator typically exposes alongside its type.
func Allocate(h *Handle, size uintptr) (unsafe.Pointer, Status) { return h.Allocate(size) }
func Free(h *Handle, ptr unsafe.Pointer) Status                 { return h.Free(ptr) }
func Inspect(h *Handle) []Segment                               { return h.Inspect() }
