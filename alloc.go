package suballoc

import "unsafe"

// bestFitVictim scans the size-sorted gap index for the first entry
// whose size is at least size. Because the index is kept in (size,
// mem) order, the first match is the smallest sufficient gap, and
// among gaps of equal size the one at the lowest address.
func (mgr *PoolManager) bestFitVictim(size uintptr) (int32, bool) {
	n := int(mgr.header.NumGaps)

	for i := 0; i < n; i++ {
		if mgr.gapIdx[i].size >= size {
			return mgr.gapIdx[i].node, true
		}
	}

	return noNode, false
}

// firstFitVictim walks the address-ordered segment list for the first
// gap node whose size is at least size.
func (mgr *PoolManager) firstFitVictim(size uintptr) (int32, bool) {
	for i := mgr.head; i != noNode; i = mgr.nodeHeap[i].next {
		n := mgr.nodeHeap[i]
		if !n.allocated && n.size >= size {
			return i, true
		}
	}

	return noNode, false
}

// Allocate carves size bytes out of the pool, per spec.md §4.5: select
// a victim gap under the pool's policy, remove it from the gap index,
// split off any remainder as a fresh gap node spliced immediately
// after the victim, then mark the victim allocated.
//
// Any growth the split will require is reserved before the victim is
// touched, so a failed reservation leaves every invariant intact — the
// request simply fails as if the victim had never been chosen.
func (h *Handle) Allocate(size uintptr) (unsafe.Pointer, Status) {
	mgr := h.mgr

	victimIdx, found := mgr.selectVictim(size)
	if !found {
		return nil, NoMemory
	}

	willSplit := mgr.nodeHeap[victimIdx].size > size

	if willSplit {
		if status := mgr.growNodeHeap(); status != Ok {
			return nil, status
		}

		if status := mgr.growGapIndex(); status != Ok {
			return nil, status
		}
	}

	if status := mgr.removeGap(victimIdx); status != Ok {
		return nil, status
	}

	victim := mgr.nodeHeap[victimIdx]
	originalNext := victim.next
	remainder := victim.size - size

	if willSplit {
		newIdx, status := mgr.acquireFreeNode()
		if status != Ok {
			return nil, status
		}

		mgr.nodeHeap[newIdx] = segment{
			mem:       victim.mem + size,
			size:      remainder,
			used:      true,
			allocated: false,
			prev:      victimIdx,
			next:      originalNext,
		}

		if originalNext != noNode {
			mgr.nodeHeap[originalNext].prev = newIdx
		}

		victim.next = newIdx

		mgr.addGap(remainder, newIdx)
	}

	victim.size = size
	victim.allocated = true
	mgr.nodeHeap[victimIdx] = victim

	mgr.header.AllocSize += size
	mgr.header.NumAllocs++

	return mgr.offsetToPtr(victim.mem), Ok
}
