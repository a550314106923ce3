package loadtest

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInconsistent reports rankings and leaderboard that disagree.
var ErrInconsistent = errors.New("inconsistent results")

// Verify checks that the leaderboard is ordered by similarity with
// competition ranks, that its head holds the best individual similarity,
// and that every learner present in both agrees on rank and similarity.
func Verify(rankings, board []Entry) error {
	if len(rankings) == 0 {
		return fmt.Errorf("%w: no rankings to verify", ErrInconsistent)
	}
	if len(board) == 0 {
		return fmt.Errorf("%w: empty leaderboard", ErrInconsistent)
	}

	for i := 1; i < len(board); i++ {
		prev, cur := board[i-1], board[i]
		if cur.Similarity > prev.Similarity {
			return fmt.Errorf("%w: entry %d outranks entry %d", ErrInconsistent, i, i-1)
		}
		want := i + 1
		if cur.Similarity == prev.Similarity {
			want = prev.Rank
		}
		if cur.Rank != want {
			return fmt.Errorf("%w: entry %d has rank %d, want %d", ErrInconsistent, i, cur.Rank, want)
		}
	}
	if board[0].Rank != 1 {
		return fmt.Errorf("%w: leaderboard starts at rank %d", ErrInconsistent, board[0].Rank)
	}

	best := slices.MaxFunc(rankings, func(a, b Entry) int {
		switch {
		case a.Similarity < b.Similarity:
			return -1
		case a.Similarity > b.Similarity:
			return 1
		}
		return 0
	})
	if best.Similarity != board[0].Similarity {
		return fmt.Errorf("%w: top similarity %.4f does not match best ranked %.4f",
			ErrInconsistent, board[0].Similarity, best.Similarity)
	}

	byLearner := make(map[string]Entry, len(rankings))
	for _, e := range rankings {
		byLearner[e.LearnerID] = e
	}
	for _, e := range board {
		r, ok := byLearner[e.LearnerID]
		if !ok {
			continue
		}
		if r.Rank != e.Rank || r.Similarity != e.Similarity {
			return fmt.Errorf("%w: learner %s ranked %d (%.4f) individually but %d (%.4f) on the leaderboard",
				ErrInconsistent, e.LearnerID, r.Rank, r.Similarity, e.Rank, e.Similarity)
		}
	}
	return nil
}
