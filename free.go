package suballoc

import "unsafe"

// findAllocated walks the address-ordered list for the live node whose
// mem equals offset. The node heap is not indexed by address, so a
// free is a linear scan — matching the original's list-walk approach.
func (mgr *PoolManager) findAllocated(offset uintptr) (int32, bool) {
	for i := mgr.head; i != noNode; i = mgr.nodeHeap[i].next {
		n := mgr.nodeHeap[i]
		if n.allocated && n.mem == offset {
			return i, true
		}
	}

	return noNode, false
}

// Free releases the allocation at ptr, per spec.md §4.6: locate the
// node, coalesce it with a free successor and then a free predecessor,
// and insert exactly one resulting gap into the gap index. Coalescing
// both neighbors before inserting keeps invariant I2 (no two adjacent
// gaps) intact without ever holding a transient violation visible to
// the gap index.
func (h *Handle) Free(ptr unsafe.Pointer) Status {
	mgr := h.mgr

	offset, ok := mgr.ptrToOffset(ptr)
	if !ok {
		return Fail
	}

	idx, ok := mgr.findAllocated(offset)
	if !ok {
		return Fail
	}

	freedSize := mgr.nodeHeap[idx].size

	mgr.nodeHeap[idx].allocated = false

	idx = mgr.coalesceNext(idx)
	idx = mgr.coalescePrev(idx)

	mgr.addGap(mgr.nodeHeap[idx].size, idx)

	mgr.header.NumAllocs--
	mgr.header.AllocSize -= freedSize

	return Ok
}

// coalesceNext merges idx with its successor if the successor is a
// gap, returning idx unchanged either way (the survivor keeps idx's
// position in the list).
func (mgr *PoolManager) coalesceNext(idx int32) int32 {
	nextIdx := mgr.nodeHeap[idx].next
	if nextIdx == noNode || mgr.nodeHeap[nextIdx].allocated {
		return idx
	}

	mgr.removeGap(nextIdx)

	next := mgr.nodeHeap[nextIdx]
	mgr.nodeHeap[idx].size += next.size
	mgr.nodeHeap[idx].next = next.next

	if next.next != noNode {
		mgr.nodeHeap[next.next].prev = idx
	}

	mgr.release(nextIdx)

	return idx
}

// coalescePrev merges idx with its predecessor if the predecessor is a
// gap, returning the predecessor's index as the survivor.
func (mgr *PoolManager) coalescePrev(idx int32) int32 {
	prevIdx := mgr.nodeHeap[idx].prev
	if prevIdx == noNode || mgr.nodeHeap[prevIdx].allocated {
		return idx
	}

	mgr.removeGap(prevIdx)

	cur := mgr.nodeHeap[idx]
	mgr.nodeHeap[prevIdx].size += cur.size
	mgr.nodeHeap[prevIdx].next = cur.next

	if cur.next != noNode {
		mgr.nodeHeap[cur.next].prev = prevIdx
	}

	mgr.release(idx)

	return prevIdx
}
