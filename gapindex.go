package suballoc

const gapIndexInitCapacity = 40

// gapEntry is one directory entry: the size of a gap and the node-heap
// index of the node describing it. The node must satisfy
// used=true, allocated=false.
type gapEntry struct {
	size uintptr
	node int32
}

// growGapIndex doubles the gap index's backing storage when occupancy
// exceeds the fill factor.
func (mgr *PoolManager) growGapIndex() Status {
	numGaps := int(mgr.header.NumGaps)
	if float64(numGaps)/float64(len(mgr.gapIdx)) <= fillFactor {
		return Ok
	}

	grown := make([]gapEntry, len(mgr.gapIdx)*expandFactor)
	copy(grown, mgr.gapIdx)
	mgr.gapIdx = grown

	return Ok
}

// addGap appends a new entry for node at the end of the active range
// and bubbles it into (size, mem) order — ascending by size, and among
// equal sizes ascending by the mem address of the referenced node.
func (mgr *PoolManager) addGap(size uintptr, node int32) Status {
	if status := mgr.growGapIndex(); status != Ok {
		return status
	}

	n := mgr.header.NumGaps
	mgr.gapIdx[n] = gapEntry{size: size, node: node}
	mgr.header.NumGaps++

	mgr.sortGapTail()

	return Ok
}

// sortGapTail bubbles the last active entry left until the (size, mem)
// order is restored. Only the newly appended entry can be out of
// place, so a left-only pass from the tail suffices.
func (mgr *PoolManager) sortGapTail() {
	i := int(mgr.header.NumGaps) - 1
	for i > 0 && mgr.gapLess(i, i-1) {
		mgr.gapIdx[i], mgr.gapIdx[i-1] = mgr.gapIdx[i-1], mgr.gapIdx[i]
		i--
	}
}

// gapLess reports whether entry a sorts strictly before entry b under
// the (size, mem) total order.
func (mgr *PoolManager) gapLess(a, b int) bool {
	ea, eb := mgr.gapIdx[a], mgr.gapIdx[b]
	if ea.size != eb.size {
		return ea.size < eb.size
	}

	return mgr.nodeHeap[ea.node].mem < mgr.nodeHeap[eb.node].mem
}

// removeGap locates the entry referencing node by identity (not by
// size, since duplicate sizes are common) and shifts later entries
// down by one.
func (mgr *PoolManager) removeGap(node int32) Status {
	n := int(mgr.header.NumGaps)

	pos := -1

	for i := 0; i < n; i++ {
		if mgr.gapIdx[i].node == node {
			pos = i

			break
		}
	}

	if pos == -1 {
		return Fail
	}

	copy(mgr.gapIdx[pos:n-1], mgr.gapIdx[pos+1:n])
	mgr.gapIdx[n-1] = gapEntry{}
	mgr.header.NumGaps--

	return Ok
}
