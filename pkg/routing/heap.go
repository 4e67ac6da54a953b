package routing

import "github.com/paulmach/osm"

// pqItem is one priority-queue entry: a candidate node at an
// accumulated cost.
type pqItem struct {
	node osm.NodeID
	cost float64
	seq  uint32 // insertion order, for deterministic tie-breaking
}

// minHeap is a concrete-typed binary min-heap keyed by cost, breaking
// ties by insertion order so results are deterministic with respect to
// adjacency-list order rather than arbitrary heap internals. Using a
// concrete struct instead of container/heap's interface avoids boxing
// every push/pop.
type minHeap struct {
	items []pqItem
	next  uint32
}

func (h *minHeap) Len() int { return len(h.items) }

func (h *minHeap) push(node osm.NodeID, cost float64) {
	h.items = append(h.items, pqItem{node: node, cost: cost, seq: h.next})
	h.next++
	h.siftUp(len(h.items) - 1)
}

func (h *minHeap) pop() pqItem {
	n := len(h.items)
	top := h.items[0]
	h.items[0] = h.items[n-1]
	h.items = h.items[:n-1]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return top
}

func (h *minHeap) less(i, j int) bool {
	if h.items[i].cost != h.items[j].cost {
		return h.items[i].cost < h.items[j].cost
	}
	return h.items[i].seq < h.items[j].seq
}

func (h *minHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.less(i, parent) {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *minHeap) siftDown(i int) {
	n := len(h.items)
	for {
		smallest := i
		left, right := 2*i+1, 2*i+2
		if left < n && h.less(left, smallest) {
			smallest = left
		}
		if right < n && h.less(right, smallest) {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}
