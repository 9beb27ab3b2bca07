package app

import (
	"fmt"
	"sort"

	"github.com/romaisa914/lingo-translator/internal/domain"
)

// Progress holds the lessons completed during one session. Membership is by
// id: imported ids that content does not know are kept as they are.
type Progress struct {
	known     map[int]struct{}
	completed map[int]struct{}
}

// NewProgress creates an empty tracker over the given known lesson ids.
func NewProgress(known []int) *Progress {
	p := &Progress{
		known:     make(map[int]struct{}, len(known)),
		completed: make(map[int]struct{}),
	}
	for _, id := range known {
		p.known[id] = struct{}{}
	}
	return p
}

// MarkComplete adds a known lesson. Unknown ids are rejected with
// ErrUnknownLesson and leave the state unchanged.
func (p *Progress) MarkComplete(id int) error {
	if _, ok := p.known[id]; !ok {
		return fmt.Errorf("%w: %d", domain.ErrUnknownLesson, id)
	}
	p.completed[id] = struct{}{}
	return nil
}

func (p *Progress) Reset() {
	p.completed = make(map[int]struct{})
}

// MarkAll sets membership to exactly ids.
func (p *Progress) MarkAll(ids []int) {
	p.completed = make(map[int]struct{}, len(ids))
	for _, id := range ids {
		p.completed[id] = struct{}{}
	}
}

func (p *Progress) IsComplete(id int) bool {
	_, ok := p.completed[id]
	return ok
}

// Ratio returns completed known lessons over all known lessons.
func (p *Progress) Ratio() (completed, total int) {
	for id := range p.completed {
		if _, ok := p.known[id]; ok {
			completed++
		}
	}
	return completed, len(p.known)
}

// Percent is the completion ratio as a whole percentage; no lessons is 0%.
func (p *Progress) Percent() int {
	completed, total := p.Ratio()
	if total == 0 {
		return 0
	}
	return completed * 100 / total
}

// Completed returns all completed ids, including unknown ones, in ascending order.
func (p *Progress) Completed() []int {
	ids := make([]int, 0, len(p.completed))
	for id := range p.completed {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (p *Progress) Export() domain.ProgressSnapshot {
	return domain.ProgressSnapshot{Completed: p.Completed()}
}

// Import replaces membership with the snapshot contents. It never fails.
func (p *Progress) Import(snap domain.ProgressSnapshot) {
	p.MarkAll(snap.Completed)
}
