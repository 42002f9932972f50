package train

import (
	"imgclass/pkg/domain"
	"imgclass/pkg/linkedlist"
)

// leaderboard keeps the best grid candidates in descending
// cross-validation accuracy, capped at a fixed size. It is backed by the
// positional linked list: every candidate is inserted at its 1-indexed
// rank and the tail rank is removed once the cap is exceeded. Candidates
// with equal accuracy keep their evaluation order, so the grid's tie-break
// order carries through to the ranking.
type leaderboard struct {
	list *linkedlist.List[domain.Candidate]
	size int
}

func newLeaderboard(size int) *leaderboard {
	return &leaderboard{list: linkedlist.New[domain.Candidate](), size: size}
}

// Add ranks the candidate into the board.
func (l *leaderboard) Add(c domain.Candidate) error {
	pos := l.list.Len() + 1
	l.list.Each(func(i int, ranked domain.Candidate) bool {
		if c.CVAccuracy > ranked.CVAccuracy {
			pos = i

			return false
		}

		return true
	})

	if err := l.list.InsertAt(pos, c); err != nil {
		return err
	}
	if l.list.Len() > l.size {
		if _, err := l.list.RemoveAt(l.list.Len()); err != nil {
			return err
		}
	}

	return nil
}

// Candidates returns the ranked candidates, best first.
func (l *leaderboard) Candidates() []domain.Candidate {
	return l.list.Slice()
}
