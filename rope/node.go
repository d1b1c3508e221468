package rope

import "strings"

// node is a node in the rope B+ tree. Leaves (height 0) hold text
// chunks; internal nodes hold child references plus per-child summary
// caches for fast seeking. Nodes are immutable once linked into a
// published rope.
type node struct {
	height  uint8
	summary TextSummary

	// Internal node fields (height > 0).
	children       []*node
	childSummaries []TextSummary

	// Leaf node fields (height == 0).
	chunks []Chunk
}

func newLeaf() *node {
	return &node{height: 0, summary: TextSummary{Flags: FlagASCII}}
}

func leafOf(chunks []Chunk) *node {
	n := &node{height: 0, chunks: chunks}
	sum := TextSummary{Flags: FlagASCII}
	for _, c := range chunks {
		sum = sum.Add(c.Summary())
	}
	n.summary = sum
	return n
}

// internalOf wraps children, which must all share the same height.
func internalOf(children []*node) *node {
	if len(children) == 0 {
		return newLeaf()
	}
	summaries := make([]TextSummary, len(children))
	total := TextSummary{Flags: FlagASCII}
	for i, child := range children {
		summaries[i] = child.summary
		total = total.Add(child.summary)
	}
	return &node{
		height:         children[0].height + 1,
		summary:        total,
		children:       children,
		childSummaries: summaries,
	}
}

func (n *node) isLeaf() bool {
	return n.height == 0
}

func (n *node) length() ByteOffset {
	return n.summary.Bytes
}

func (n *node) appendTo(sb *strings.Builder) {
	if n.isLeaf() {
		for _, c := range n.chunks {
			sb.WriteString(c.String())
		}
		return
	}
	for _, child := range n.children {
		child.appendTo(sb)
	}
}

// appendRange appends the text in [start, end) to sb. Bounds are
// assumed validated by the caller.
func (n *node) appendRange(sb *strings.Builder, start, end ByteOffset) {
	if start >= end {
		return
	}

	if n.isLeaf() {
		pos := ByteOffset(0)
		for _, c := range n.chunks {
			clen := ByteOffset(c.Len())
			chunkEnd := pos + clen
			if chunkEnd <= start {
				pos = chunkEnd
				continue
			}
			if pos >= end {
				break
			}
			lo := 0
			if start > pos {
				lo = int(start - pos)
			}
			hi := c.Len()
			if end < chunkEnd {
				hi = int(end - pos)
			}
			sb.WriteString(c.String()[lo:hi])
			pos = chunkEnd
		}
		return
	}

	pos := ByteOffset(0)
	for i, child := range n.children {
		clen := n.childSummaries[i].Bytes
		childEnd := pos + clen
		if childEnd <= start {
			pos = childEnd
			continue
		}
		if pos >= end {
			break
		}
		lo := ByteOffset(0)
		if start > pos {
			lo = start - pos
		}
		hi := clen
		if end < childEnd {
			hi = end - pos
		}
		child.appendRange(sb, lo, hi)
		pos = childEnd
	}
}

// split divides the subtree at offset. Left holds [0, offset), right
// holds [offset, end).
func (n *node) split(offset ByteOffset, tun *Tuning) (*node, *node) {
	if offset <= 0 {
		return newLeaf(), n
	}
	if offset >= n.length() {
		return n, newLeaf()
	}
	if n.isLeaf() {
		return n.splitLeaf(offset)
	}
	return n.splitInternal(offset, tun)
}

func (n *node) splitLeaf(offset ByteOffset) (*node, *node) {
	var left, right []Chunk
	pos := ByteOffset(0)
	for _, c := range n.chunks {
		clen := ByteOffset(c.Len())
		switch {
		case pos+clen <= offset:
			left = append(left, c)
		case pos >= offset:
			right = append(right, c)
		default:
			l, r := c.Split(int(offset - pos))
			if !l.IsEmpty() {
				left = append(left, l)
			}
			if !r.IsEmpty() {
				right = append(right, r)
			}
		}
		pos += clen
	}
	return leafOf(left), leafOf(right)
}

func (n *node) splitInternal(offset ByteOffset, tun *Tuning) (*node, *node) {
	var left, right []*node
	pos := ByteOffset(0)
	for i, child := range n.children {
		clen := n.childSummaries[i].Bytes
		switch {
		case pos+clen <= offset:
			left = append(left, child)
		case pos >= offset:
			right = append(right, child)
		default:
			l, r := child.split(offset-pos, tun)
			if l.length() > 0 {
				left = append(left, l)
			}
			if r.length() > 0 {
				right = append(right, r)
			}
		}
		pos += clen
	}
	return buildFromNodes(left, tun), buildFromNodes(right, tun)
}

// buildFromNodes re-chunks a flat list of same-height nodes into a
// balanced tree, the rebuild-on-write balancing step.
func buildFromNodes(children []*node, tun *Tuning) *node {
	if len(children) == 0 {
		return newLeaf()
	}
	if len(children) == 1 {
		return children[0]
	}
	if len(children) <= tun.MaxChildren {
		return internalOf(children)
	}
	var parents []*node
	for i := 0; i < len(children); i += tun.MaxChildren {
		end := min(i+tun.MaxChildren, len(children))
		parents = append(parents, internalOf(children[i:end]))
	}
	return buildFromNodes(parents, tun)
}

// buildFromChunkList assembles a balanced subtree from a chunk list.
func buildFromChunkList(chunks []Chunk, tun *Tuning) *node {
	if len(chunks) == 0 {
		return newLeaf()
	}
	if len(chunks) <= tun.MaxChunksPerLeaf {
		return leafOf(chunks)
	}
	var leaves []*node
	for i := 0; i < len(chunks); i += tun.MaxChunksPerLeaf {
		end := min(i+tun.MaxChunksPerLeaf, len(chunks))
		leaves = append(leaves, leafOf(chunks[i:end:end]))
	}
	return buildFromNodes(leaves, tun)
}

// concatNodes joins two subtrees of arbitrary heights.
func concatNodes(left, right *node, tun *Tuning) *node {
	if left == nil || left.length() == 0 {
		if right == nil {
			return newLeaf()
		}
		return right
	}
	if right == nil || right.length() == 0 {
		return left
	}

	if left.isLeaf() && right.isLeaf() {
		return concatLeaves(left, right, tun)
	}

	for left.height < right.height {
		left = internalOf([]*node{left})
	}
	for right.height < left.height {
		right = internalOf([]*node{right})
	}
	return mergeSameHeight(left, right, tun)
}

func concatLeaves(left, right *node, tun *Tuning) *node {
	total := len(left.chunks) + len(right.chunks)
	if total <= tun.MaxChunksPerLeaf {
		chunks := make([]Chunk, 0, total)
		chunks = append(chunks, left.chunks...)
		chunks = append(chunks, right.chunks...)
		return leafOf(chunks)
	}
	return internalOf([]*node{left, right})
}

func mergeSameHeight(left, right *node, tun *Tuning) *node {
	if left.isLeaf() {
		return concatLeaves(left, right, tun)
	}
	all := make([]*node, 0, len(left.children)+len(right.children))
	all = append(all, left.children...)
	all = append(all, right.children...)
	return buildFromNodes(all, tun)
}

// replace rewrites [from, to) with the given chunks, reusing every
// subtree the edit does not touch. When the edit is contained in one
// child, only that child's spine is rebuilt.
func (n *node) replace(from, to ByteOffset, ins []Chunk, tun *Tuning) *node {
	if n.isLeaf() {
		return n.replaceInLeaf(from, to, ins, tun)
	}

	pos := ByteOffset(0)
	for i := range n.children {
		clen := n.childSummaries[i].Bytes
		if from >= pos && to <= pos+clen {
			newChild := n.children[i].replace(from-pos, to-pos, ins, tun)
			return n.withChild(i, newChild, tun)
		}
		pos += clen
	}

	// The edit straddles a child boundary: decompose at the cut
	// points and rebuild.
	left, rest := n.split(from, tun)
	_, right := rest.split(to-from, tun)
	out := concatNodes(left, buildFromChunkList(ins, tun), tun)
	return concatNodes(out, right, tun)
}

func (n *node) replaceInLeaf(from, to ByteOffset, ins []Chunk, tun *Tuning) *node {
	out := make([]Chunk, 0, len(n.chunks)+len(ins))

	pos := ByteOffset(0)
	for _, c := range n.chunks {
		end := pos + ByteOffset(c.Len())
		if end <= from {
			out = append(out, c)
		} else if pos < from {
			out = append(out, NewChunk(c.String()[:from-pos]))
		}
		pos = end
	}

	out = append(out, ins...)

	pos = 0
	for _, c := range n.chunks {
		end := pos + ByteOffset(c.Len())
		if pos >= to {
			out = append(out, c)
		} else if end > to {
			out = append(out, NewChunk(c.String()[to-pos:]))
		}
		pos = end
	}

	return buildFromChunkList(coalesceChunks(out, tun), tun)
}

// coalesceChunks merges undersized neighbors so repeated small edits do
// not degrade leaves into byte-sized fragments.
func coalesceChunks(chunks []Chunk, tun *Tuning) []Chunk {
	out := make([]Chunk, 0, len(chunks))
	for _, c := range chunks {
		if c.IsEmpty() {
			continue
		}
		if n := len(out); n > 0 {
			prev := out[n-1]
			if (prev.Len() < tun.MinChunk || c.Len() < tun.MinChunk) &&
				prev.Len()+c.Len() <= tun.MaxChunk {
				out[n-1] = NewChunk(prev.String() + c.String())
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

// withChild returns a copy of n with child i swapped, sharing all
// siblings. A height change in the child falls back to a rebuild of
// this node from its remaining children.
func (n *node) withChild(i int, newChild *node, tun *Tuning) *node {
	if newChild.height == n.height-1 {
		children := make([]*node, len(n.children))
		copy(children, n.children)
		children[i] = newChild
		return internalOf(children)
	}
	left := buildFromNodes(n.children[:i], tun)
	right := buildFromNodes(n.children[i+1:], tun)
	out := concatNodes(left, newChild, tun)
	return concatNodes(out, right, tun)
}

// findChildByOffset locates the child containing offset, returning the
// child index and the offset relative to that child.
func (n *node) findChildByOffset(offset ByteOffset) (int, ByteOffset) {
	if n.isLeaf() {
		return -1, 0
	}
	pos := ByteOffset(0)
	for i, summary := range n.childSummaries {
		if pos+summary.Bytes > offset {
			return i, offset - pos
		}
		pos += summary.Bytes
	}
	last := len(n.children) - 1
	return last, offset - (n.summary.Bytes - n.childSummaries[last].Bytes)
}
