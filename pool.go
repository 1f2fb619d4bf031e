package suballoc

import "unsafe"

// Header is the read-only, user-facing view of a pool's accounting
// state. Every field must satisfy invariant I5 (AllocSize plus the sum
// of gap sizes equals TotalSize) at every point a Header is returned.
type Header struct {
	Mem       uintptr // base address of the pool's backing region
	Policy    Policy
	TotalSize uintptr
	AllocSize uintptr
	NumAllocs int
	NumGaps   int32
}

// Segment is one entry of an Inspect result: the size of a live span
// (allocation or gap) and whether it is currently allocated.
type Segment struct {
	Size      uintptr
	Allocated bool
}

// PoolManager owns one pool's backing region, its node heap, and its
// gap index. Handle is the opaque type callers hold; PoolManager's
// fields are unexported, so an open pool is reached only through the
// Handle minted by Registry.Open.
type PoolManager struct {
	header Header

	region []byte // raw pool bytes, len == header.TotalSize

	nodeHeap  []segment
	usedNodes int32
	head      int32 // index of the node describing the pool's first byte; fixed for the pool's lifetime

	gapIdx []gapEntry
}

// Handle is the opaque pool handle returned by Registry.Open. It is
// the unit every other public operation (Allocate, Free, Inspect,
// Header, Close) takes.
type Handle struct {
	mgr *PoolManager
}

// Header returns the pool's current accounting view.
func (h *Handle) Header() Header {
	return h.mgr.header
}

// newPoolManager implements spec.md §4.2's pool-open sequence: acquire
// the backing region, allocate a node heap and gap index at their
// initial capacities, and seed both with a single node/entry spanning
// the whole region.
func newPoolManager(size uintptr, policy Policy) (*PoolManager, Status) {
	region := make([]byte, size)

	var base uintptr
	if size > 0 {
		base = uintptr(unsafe.Pointer(&region[0]))
	}

	mgr := &PoolManager{
		header: Header{
			Mem:       base,
			Policy:    policy,
			TotalSize: size,
		},
		region:   region,
		nodeHeap: make([]segment, nodeHeapInitCapacity),
		gapIdx:   make([]gapEntry, gapIndexInitCapacity),
		head:     0,
	}

	mgr.nodeHeap[0] = segment{
		mem:       0,
		size:      size,
		used:      true,
		allocated: false,
		prev:      noNode,
		next:      noNode,
	}
	mgr.usedNodes = 1

	mgr.gapIdx[0] = gapEntry{size: size, node: 0}
	mgr.header.NumGaps = 1

	return mgr, Ok
}

// close validates the pool has no live allocations and exactly one
// gap (the whole region, unsplit), per spec.md §3's lifecycle and
// §4.1's close preconditions.
func (mgr *PoolManager) close() Status {
	if mgr.header.NumAllocs != 0 {
		return NotFreed
	}

	if mgr.header.NumGaps != 1 {
		return Fail
	}

	return Ok
}

// Inspect returns every live node in address order, matching
// spec.md §6's inspect operation.
func (h *Handle) Inspect() []Segment {
	mgr := h.mgr

	segments := make([]Segment, 0, mgr.usedNodes)
	for i := mgr.head; i != noNode; i = mgr.nodeHeap[i].next {
		n := mgr.nodeHeap[i]
		segments = append(segments, Segment{Size: n.size, Allocated: n.allocated})
	}

	return segments
}

// ptrToOffset converts a caller-held pointer back to an offset into
// the pool region, or reports false if it does not lie within it.
func (mgr *PoolManager) ptrToOffset(ptr unsafe.Pointer) (uintptr, bool) {
	if len(mgr.region) == 0 {
		return 0, false
	}

	base := uintptr(unsafe.Pointer(&mgr.region[0]))
	addr := uintptr(ptr)

	if addr < base || addr-base >= uintptr(len(mgr.region)) {
		return 0, false
	}

	return addr - base, true
}

// offsetToPtr converts an offset into the pool region to the raw
// pointer handed back to the caller.
func (mgr *PoolManager) offsetToPtr(offset uintptr) unsafe.Pointer {
	if len(mgr.region) == 0 {
		return unsafe.Pointer(&mgr.region)
	}

	return unsafe.Pointer(uintptr(unsafe.Pointer(&mgr.region[0])) + offset)
}
