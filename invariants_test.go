package suballoc

import "testing"

// checkInvariants walks the node list and gap index once and asserts
// I1 (tiling), I2 (no two adjacent gaps), I3 (index completeness),
// I4 ((size, mem) ordering), and I5 (accounting). It is meant to be
// called after every mutating operation in a scenario test, not just
// at the end of one.
func checkInvariants(t *testing.T, mgr *PoolManager) {
	t.Helper()

	var (
		expectMem    uintptr
		liveNodes    int
		gapTotal     uintptr
		allocTotal   uintptr
		sawGapNodes  = map[int32]bool{}
		prevAllocated *bool
	)

	for i := mgr.head; i != noNode; i = mgr.nodeHeap[i].next {
		n := mgr.nodeHeap[i]

		if n.mem != expectMem {
			t.Fatalf("I1 violated: node %d mem=%d, want %d (tiling gap/overlap)", i, n.mem, expectMem)
		}
		expectMem += n.size

		if !n.allocated {
			if prevAllocated != nil && !*prevAllocated {
				t.Fatalf("I2 violated: two adjacent gap nodes ending at node %d", i)
			}
			gapTotal += n.size
			sawGapNodes[i] = true
		} else {
			allocTotal += n.size
		}

		allocated := n.allocated
		prevAllocated = &allocated
		liveNodes++
	}

	if expectMem != mgr.header.TotalSize {
		t.Fatalf("I1 violated: segments sum to %d, want TotalSize %d", expectMem, mgr.header.TotalSize)
	}

	if liveNodes != int(mgr.usedNodes) {
		t.Fatalf("node list has %d live nodes, usedNodes=%d", liveNodes, mgr.usedNodes)
	}

	n := int(mgr.header.NumGaps)
	if n != len(sawGapNodes) {
		t.Fatalf("I3 violated: gap index has %d entries, list has %d gap nodes", n, len(sawGapNodes))
	}

	var indexTotal uintptr
	for i := 0; i < n; i++ {
		e := mgr.gapIdx[i]
		if !sawGapNodes[e.node] {
			t.Fatalf("I3 violated: gap index entry %d references node %d, not a gap in the list", i, e.node)
		}
		if mgr.nodeHeap[e.node].size != e.size {
			t.Fatalf("gap index entry %d size %d does not match node %d size %d", i, e.size, e.node, mgr.nodeHeap[e.node].size)
		}
		if i > 0 && mgr.gapLess(i, i-1) {
			t.Fatalf("I4 violated: gap index entry %d sorts before entry %d", i, i-1)
		}
		indexTotal += e.size
	}

	if indexTotal != gapTotal {
		t.Fatalf("gap index total %d does not match list gap total %d", indexTotal, gapTotal)
	}

	if allocTotal != mgr.header.AllocSize {
		t.Fatalf("I5 violated: list alloc total %d does not match header.AllocSize %d", allocTotal, mgr.header.AllocSize)
	}

	if allocTotal+gapTotal != mgr.header.TotalSize {
		t.Fatalf("I5 violated: AllocSize %d + gaps %d != TotalSize %d", allocTotal, gapTotal, mgr.header.TotalSize)
	}
}
