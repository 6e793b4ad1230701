package comment_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"geo_feedback/internal/domain/entity"
	"geo_feedback/internal/domain/service/comment"
	"geo_feedback/internal/domain/value"
)

func baseSnapshot() comment.Snapshot {
	return comment.Snapshot{
		Visitors: []entity.Visitor{
			{ID: 1, Nickname: "anna", Password: "secret"},
			{ID: 2, Nickname: "boris", Password: "qwerty"},
		},
		Feedback: []entity.FeedbackEntry{
			{EntityID: 10, VisitorID: 1, Comment: "fresh honey", Rank: 5},
		},
	}
}

func TestResolveNewNicknameCreatesVisitorAndEntry(t *testing.T) {
	rq := require.New(t)
	resolver := comment.NewResolver()
	snapshot := baseSnapshot()

	d := resolver.Resolve(snapshot, comment.Request{
		EntityID: 10,
		Nickname: "vera",
		Password: "pass",
		Comment:  "nice",
		Rank:     4,
	})

	rq.Equal(comment.OutcomeCreated, d.Outcome)
	rq.Equal(comment.ReasonNone, d.Reason)
	rq.Len(d.Mutations, 2)

	rq.Equal(comment.CreateVisitor, d.Mutations[0].Kind)
	rq.Equal("vera", d.Mutations[0].Visitor.Nickname)
	rq.Equal("pass", d.Mutations[0].Visitor.Password)

	rq.Equal(comment.CreateComment, d.Mutations[1].Kind)
	rq.Equal(entity.FeedbackEntry{EntityID: 10, Comment: "nice", Rank: 4}, d.Mutations[1].Entry)

	rq.Equal([]comment.State{
		comment.StateStart,
		comment.StateVisitorLookup,
		comment.StateCreateVisitor,
		comment.StateVisitorFound,
		comment.StateCommentLookup,
		comment.StateCreateComment,
	}, d.Trace)

	after := snapshot.Apply(d.Mutations)
	rq.Len(after.Visitors, 3)
	rq.Len(after.Feedback, 2)
	rq.Equal(entity.FeedbackEntry{EntityID: 10, VisitorID: 3, Comment: "nice", Rank: 4}, after.Feedback[1])
}

func TestResolveSecondCallUpdates(t *testing.T) {
	rq := require.New(t)
	resolver := comment.NewResolver()

	snapshot := comment.Snapshot{}
	first := resolver.Resolve(snapshot, comment.Request{
		EntityID: 7, Nickname: "gleb", Password: "pw", Comment: "ok", Rank: 3,
	})
	rq.Equal(comment.OutcomeCreated, first.Outcome)
	snapshot = snapshot.Apply(first.Mutations)

	second := resolver.Resolve(snapshot, comment.Request{
		EntityID: 7, Nickname: "gleb", Password: "pw", Comment: "better", Rank: 5,
	})
	rq.Equal(comment.OutcomeUpdated, second.Outcome)
	rq.Len(second.Mutations, 1)
	rq.Equal(comment.UpdateComment, second.Mutations[0].Kind)

	snapshot = snapshot.Apply(second.Mutations)
	rq.Len(snapshot.Visitors, 1)
	rq.Len(snapshot.Feedback, 1)
	rq.Equal("better", snapshot.Feedback[0].Comment)
	rq.Equal(value.Rank(5), snapshot.Feedback[0].Rank)
}

func TestResolveRejections(t *testing.T) {
	rq := require.New(t)

	testCases := []struct {
		name   string
		strict bool
		req    comment.Request
		reason comment.Reason
	}{
		{
			name:   "Wrong password on existing comment",
			req:    comment.Request{EntityID: 10, Nickname: "anna", Password: "bad", Comment: "x", Rank: 1},
			reason: comment.ReasonAuthMismatch,
		},
		{
			name:   "Wrong password on existing comment in strict mode",
			strict: true,
			req:    comment.Request{EntityID: 10, Nickname: "anna", Password: "bad", Comment: "x", Rank: 1},
			reason: comment.ReasonAuthMismatch,
		},
		{
			name:   "Wrong password for new comment of existing visitor in strict mode",
			strict: true,
			req:    comment.Request{EntityID: 11, Nickname: "boris", Password: "bad", Comment: "x", Rank: 2},
			reason: comment.ReasonAuthMismatch,
		},
		{
			name:   "Empty nickname",
			req:    comment.Request{EntityID: 10, Nickname: "  ", Password: "pw", Rank: 3},
			reason: comment.ReasonValidationFailure,
		},
		{
			name:   "Missing rank",
			req:    comment.Request{EntityID: 10, Nickname: "anna", Password: "secret", Comment: "x"},
			reason: comment.ReasonValidationFailure,
		},
		{
			name:   "Rank out of range",
			req:    comment.Request{EntityID: 10, Nickname: "anna", Password: "secret", Rank: 9},
			reason: comment.ReasonValidationFailure,
		},
		{
			name:   "New visitor without password",
			req:    comment.Request{EntityID: 10, Nickname: "new", Rank: 3},
			reason: comment.ReasonValidationFailure,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			resolver := comment.NewResolver()
			if tc.strict {
				resolver = resolver.WithStrictAuth()
			}

			snapshot := baseSnapshot()
			d := resolver.Resolve(snapshot, tc.req)

			rq.True(d.Rejected())
			rq.Equal(tc.reason, d.Reason)
			rq.Empty(d.Mutations)
			rq.Equal(comment.StateReject, d.Trace[len(d.Trace)-1])
			rq.Equal(baseSnapshot(), snapshot.Apply(d.Mutations))
		})
	}
}

func TestResolveExistingVisitorNewEntityIgnoresPassword(t *testing.T) {
	rq := require.New(t)
	resolver := comment.NewResolver()
	rq.False(resolver.Strict())
	rq.True(comment.NewResolver().WithStrictAuth().Strict())

	d := resolver.Resolve(baseSnapshot(), comment.Request{
		EntityID: 11, Nickname: "boris", Password: "whatever", Comment: "cheap", Rank: 2,
	})

	rq.Equal(comment.OutcomeCreated, d.Outcome)
	rq.Equal([]comment.Mutation{{
		Kind:  comment.CreateComment,
		Entry: entity.FeedbackEntry{EntityID: 11, VisitorID: 2, Comment: "cheap", Rank: 2},
	}}, d.Mutations)
}

func TestResolveExistingVisitorNewEntity(t *testing.T) {
	rq := require.New(t)

	d := comment.NewResolver().Resolve(baseSnapshot(), comment.Request{
		EntityID: 12, Nickname: "anna", Password: "secret", Comment: "good", Rank: 4,
	})

	rq.Equal(comment.OutcomeCreated, d.Outcome)
	rq.Len(d.Mutations, 1)
	rq.Equal(int64(1), d.Mutations[0].Entry.VisitorID)
}

func TestResolveDuplicateNicknamePicksLowestID(t *testing.T) {
	rq := require.New(t)

	snapshot := comment.Snapshot{
		Visitors: []entity.Visitor{
			{ID: 9, Nickname: "dup", Password: "b"},
			{ID: 4, Nickname: "dup", Password: "a"},
		},
	}

	d := comment.NewResolver().Resolve(snapshot, comment.Request{
		EntityID: 1, Nickname: "dup", Password: "a", Rank: 3,
	})
	rq.Equal(comment.OutcomeCreated, d.Outcome)
	rq.Equal(int64(4), d.Mutations[0].Entry.VisitorID)

	// пароль второго дубликата не подходит к выбранному посетителю
	d = comment.NewResolver().WithStrictAuth().Resolve(snapshot, comment.Request{
		EntityID: 1, Nickname: "dup", Password: "b", Rank: 3,
	})
	rq.True(d.Rejected())
	rq.Equal(comment.ReasonAuthMismatch, d.Reason)
}

func TestGet(t *testing.T) {
	rq := require.New(t)
	resolver := comment.NewResolver()

	entry, ok := resolver.Get(baseSnapshot(), 10, "anna", "secret")
	rq.True(ok)
	rq.Equal("fresh honey", entry.Comment)

	_, ok = resolver.Get(baseSnapshot(), 10, "anna", "wrong")
	rq.False(ok)

	_, ok = resolver.Get(baseSnapshot(), 10, "boris", "qwerty")
	rq.False(ok)

	_, ok = resolver.Get(baseSnapshot(), 10, "nobody", "")
	rq.False(ok)
}

func TestDelete(t *testing.T) {
	rq := require.New(t)
	resolver := comment.NewResolver()

	testCases := []struct {
		name     string
		entityID int64
		nickname string
		password string
		outcome  comment.Outcome
		reason   comment.Reason
	}{
		{name: "Matching password", entityID: 10, nickname: "anna", password: "secret", outcome: comment.OutcomeDeleted},
		{name: "Wrong password", entityID: 10, nickname: "anna", password: "nope", outcome: comment.OutcomeRejected, reason: comment.ReasonAuthMismatch},
		{name: "No comment", entityID: 10, nickname: "boris", password: "qwerty", outcome: comment.OutcomeRejected, reason: comment.ReasonNotFound},
		{name: "Unknown visitor", entityID: 10, nickname: "ghost", password: "x", outcome: comment.OutcomeRejected, reason: comment.ReasonNotFound},
		{name: "Empty nickname", entityID: 10, outcome: comment.OutcomeRejected, reason: comment.ReasonValidationFailure},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			d := resolver.Delete(baseSnapshot(), tc.entityID, tc.nickname, tc.password)
			rq.Equal(tc.outcome, d.Outcome)
			rq.Equal(tc.reason, d.Reason)

			if d.Rejected() {
				rq.Empty(d.Mutations)
				return
			}

			rq.Equal([]comment.Mutation{{
				Kind:  comment.DeleteComment,
				Entry: entity.FeedbackEntry{EntityID: 10, VisitorID: 1, Comment: "fresh honey", Rank: 5},
			}}, d.Mutations)
			rq.Empty(baseSnapshot().Apply(d.Mutations).Feedback)
		})
	}
}
