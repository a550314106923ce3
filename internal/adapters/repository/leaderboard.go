package repository

import (
	"math"
	"math/rand/v2"
)

// Treap-based ranking of learners by best similarity.
//
// Ordering: score DESC, then learner id ASC. "less" means ranks earlier, so
// an in-order traversal yields the leaderboard from best to worst. Nodes
// carry subtree sizes so ranks are answered in O(log n).

// scoreScale controls fixed-point scaling of similarities.
const scoreScale = 1_000_000_000_000

type scoreFP int64

func toFixedPoint(x float64) scoreFP {
	if math.IsNaN(x) {
		return 0
	}
	return scoreFP(math.Round(math.Max(-1e6, math.Min(1e6, x)) * scoreScale))
}

func toFloat(x scoreFP) float64 {
	return float64(x) / scoreScale
}

type node struct {
	id    string
	score scoreFP
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

func less(aScore scoreFP, aID string, bScore scoreFP, bID string) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, id string, score scoreFP, prio uint64) *node {
	if n == nil {
		return &node{id: id, score: score, prio: prio, size: 1}
	}
	if less(score, id, n.score, n.id) {
		n.left = insert(n.left, id, score, prio)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, score, prio)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, score scoreFP) *node {
	if n == nil {
		return nil
	}
	switch {
	case score == n.score && id == n.id:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, score)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, score)
		}
	case less(score, id, n.score, n.id):
		n.left = deleteNode(n.left, id, score)
	default:
		n.right = deleteNode(n.right, id, score)
	}
	fix(n)
	return n
}

// countAbove returns the number of nodes scoring strictly higher than score.
func countAbove(n *node, score scoreFP) int {
	count := 0
	for n != nil {
		if n.score > score {
			count += nsize(n.left) + 1
			n = n.right
		} else {
			n = n.left
		}
	}
	return count
}

// collectTopN appends up to limit node ids in rank order.
func collectTopN(n *node, limit int, out *[]*node) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, n)
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, out)
	}
}

// best is a learner's best comparison for one skill.
type best struct {
	score    scoreFP
	recordID string
	expertID string
}

// leaderboard ranks learners for one skill. Not safe for concurrent use;
// MemoryStore guards it.
type leaderboard struct {
	root *node
	byID map[string]best
}

func newLeaderboard() *leaderboard {
	return &leaderboard{byID: make(map[string]best)}
}

// offer records rec as the learner's best when it improves on the current one.
func (l *leaderboard) offer(rec Record) bool {
	ns := toFixedPoint(rec.Similarity)
	if old, ok := l.byID[rec.LearnerID]; ok {
		if ns <= old.score {
			return false
		}
		l.root = deleteNode(l.root, rec.LearnerID, old.score)
	}
	l.byID[rec.LearnerID] = best{score: ns, recordID: rec.ID, expertID: rec.ExpertID}
	l.root = insert(l.root, rec.LearnerID, ns, rand.Uint64())
	return true
}

// rank uses standard competition ranking: ties share a rank and the next
// distinct score skips ahead.
func (l *leaderboard) rank(learnerID string) (Entry, bool) {
	b, ok := l.byID[learnerID]
	if !ok {
		return Entry{}, false
	}
	return Entry{
		Rank:       countAbove(l.root, b.score) + 1,
		LearnerID:  learnerID,
		Similarity: toFloat(b.score),
		ExpertID:   b.expertID,
		RecordID:   b.recordID,
	}, true
}

func (l *leaderboard) top(n int) []Entry {
	nodes := make([]*node, 0, min(n, len(l.byID)))
	collectTopN(l.root, n, &nodes)
	out := make([]Entry, 0, len(nodes))
	for i, nd := range nodes {
		b := l.byID[nd.id]
		rank := i + 1
		if i > 0 && nodes[i-1].score == nd.score {
			rank = out[i-1].Rank
		}
		out = append(out, Entry{
			Rank:       rank,
			LearnerID:  nd.id,
			Similarity: toFloat(b.score),
			ExpertID:   b.expertID,
			RecordID:   b.recordID,
		})
	}
	return out
}
