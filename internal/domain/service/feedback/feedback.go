// Package feedback считает среднюю оценку и число голосов по объектам.
package feedback

import (
	"math"

	"geo_feedback/internal/domain/entity"
)

// Aggregate считает оценку объекта. Голосом считается строка с оценкой; среднее берётся
// по всем строкам объекта, строка без оценки идёт как 0. Округление от нуля.
func Aggregate(entityID int64, entries []entity.FeedbackEntry) entity.Aggregate {
	var acc accumulator

	for _, e := range entries {
		if e.EntityID == entityID {
			acc.add(e)
		}
	}

	return acc.result()
}

// AggregateAll считает оценки для всех объектов за один проход.
func AggregateAll(entries []entity.FeedbackEntry) map[int64]entity.Aggregate {
	accs := make(map[int64]*accumulator)

	for _, e := range entries {
		acc, ok := accs[e.EntityID]
		if !ok {
			acc = &accumulator{}
			accs[e.EntityID] = acc
		}
		acc.add(e)
	}

	result := make(map[int64]entity.Aggregate, len(accs))
	for id, acc := range accs {
		result[id] = acc.result()
	}

	return result
}

type accumulator struct {
	rows  int
	votes int
	sum   int
}

func (a *accumulator) add(e entity.FeedbackEntry) {
	a.rows++
	if e.Rank.Present() {
		a.votes++
		a.sum += e.Rank.Int()
	}
}

func (a *accumulator) result() entity.Aggregate {
	if a.rows == 0 {
		return entity.Aggregate{}
	}

	return entity.Aggregate{
		MeanRank:  int(math.Round(float64(a.sum) / float64(a.rows))),
		VoteCount: a.votes,
	}
}
