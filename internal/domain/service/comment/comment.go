// Package comment решает, что делать с отзывом посетителя: создать посетителя
// и отзыв, обновить существующий отзыв или отклонить запрос.
//
// Resolver ничего не хранит. Он получает снимок посетителей и отзывов и
// возвращает Decision со списком мутаций, которые применяет вызывающая сторона.
package comment

import (
	"slices"
	"strings"

	"geo_feedback/internal/domain/entity"
	"geo_feedback/internal/domain/value"
)

type State string

const (
	StateStart         State = "start"
	StateVisitorLookup State = "visitor_lookup"
	StateCreateVisitor State = "create_visitor"
	StateVisitorFound  State = "visitor_found"
	StateCommentLookup State = "comment_lookup"
	StateCreateComment State = "create_comment"
	StateUpdateComment State = "update_comment"
	StateDeleteComment State = "delete_comment"
	StateReject        State = "reject"
)

type Outcome string

const (
	OutcomeCreated  Outcome = "created"
	OutcomeUpdated  Outcome = "updated"
	OutcomeDeleted  Outcome = "deleted"
	OutcomeRejected Outcome = "rejected"
)

// Reason причина отказа. Пустая у принятых решений.
type Reason string

const (
	ReasonNone              Reason = ""
	ReasonValidationFailure Reason = "validation_failure"
	ReasonAuthMismatch      Reason = "auth_mismatch"
	ReasonNotFound          Reason = "not_found"
)

type MutationKind string

const (
	CreateVisitor MutationKind = "create_visitor"
	CreateComment MutationKind = "create_comment"
	UpdateComment MutationKind = "update_comment"
	DeleteComment MutationKind = "delete_comment"
)

// Mutation инструкция для хранилища. Для CreateVisitor заполнен Visitor,
// для остальных Entry. CreateComment после CreateVisitor в том же решении
// несёт VisitorID == 0: его подставляет хранилище после вставки посетителя.
type Mutation struct {
	Kind    MutationKind
	Visitor entity.Visitor
	Entry   entity.FeedbackEntry
}

type Snapshot struct {
	Visitors []entity.Visitor
	Feedback []entity.FeedbackEntry
}

// visitor ищет посетителя по никнейму. При дублях берётся наименьший id.
func (s Snapshot) visitor(nickname string) (entity.Visitor, bool) {
	var (
		found entity.Visitor
		ok    bool
	)

	for _, v := range s.Visitors {
		if v.Nickname != nickname {
			continue
		}
		if !ok || v.ID < found.ID {
			found, ok = v, true
		}
	}

	return found, ok
}

func (s Snapshot) entry(entityID, visitorID int64) (entity.FeedbackEntry, bool) {
	for _, e := range s.Feedback {
		if e.EntityID == entityID && e.VisitorID == visitorID {
			return e, true
		}
	}
	return entity.FeedbackEntry{}, false
}

type Request struct {
	EntityID int64
	Nickname string
	Password string
	Comment  string
	Rank     value.Rank
}

type Decision struct {
	Outcome   Outcome
	Reason    Reason
	Mutations []Mutation
	Trace     []State
}

func (d Decision) Rejected() bool {
	return d.Outcome == OutcomeRejected
}

type Resolver struct {
	strict bool
}

func NewResolver() *Resolver {
	return &Resolver{}
}

// WithStrictAuth требует совпадения пароля и тогда, когда у найденного
// посетителя ещё нет отзыва об этом объекте.
func (r *Resolver) WithStrictAuth() *Resolver {
	r.strict = true
	return r
}

func (r *Resolver) Strict() bool {
	return r.strict
}

// Resolve создаёт или обновляет отзыв.
func (r *Resolver) Resolve(snapshot Snapshot, req Request) Decision {
	d := &decision{trace: []State{StateStart}}

	if strings.TrimSpace(req.Nickname) == "" || !req.Rank.Present() {
		return d.reject(ReasonValidationFailure)
	}

	d.step(StateVisitorLookup)

	visitor, found := snapshot.visitor(req.Nickname)
	if !found {
		if req.Password == "" {
			return d.reject(ReasonValidationFailure)
		}

		d.step(StateCreateVisitor)
		d.mutate(Mutation{
			Kind:    CreateVisitor,
			Visitor: entity.Visitor{Nickname: req.Nickname, Password: req.Password},
		})

		d.step(StateVisitorFound)
		d.step(StateCommentLookup)
		d.step(StateCreateComment)
		d.mutate(Mutation{
			Kind:  CreateComment,
			Entry: entity.FeedbackEntry{EntityID: req.EntityID, Comment: req.Comment, Rank: req.Rank},
		})

		return d.accept(OutcomeCreated)
	}

	d.step(StateVisitorFound)
	d.step(StateCommentLookup)

	existing, found := snapshot.entry(req.EntityID, visitor.ID)
	if !found {
		if r.strict && req.Password != visitor.Password {
			return d.reject(ReasonAuthMismatch)
		}

		d.step(StateCreateComment)
		d.mutate(Mutation{
			Kind: CreateComment,
			Entry: entity.FeedbackEntry{
				EntityID:  req.EntityID,
				VisitorID: visitor.ID,
				Comment:   req.Comment,
				Rank:      req.Rank,
			},
		})

		return d.accept(OutcomeCreated)
	}

	if req.Password != visitor.Password {
		return d.reject(ReasonAuthMismatch)
	}

	existing.Comment = req.Comment
	existing.Rank = req.Rank

	d.step(StateUpdateComment)
	d.mutate(Mutation{Kind: UpdateComment, Entry: existing})

	return d.accept(OutcomeUpdated)
}

// Get возвращает отзыв только при совпадении пароля.
func (r *Resolver) Get(snapshot Snapshot, entityID int64, nickname, password string) (entity.FeedbackEntry, bool) {
	visitor, found := snapshot.visitor(nickname)
	if !found || visitor.Password != password {
		return entity.FeedbackEntry{}, false
	}

	return snapshot.entry(entityID, visitor.ID)
}

// Delete удаляет отзыв при совпадении пароля, иначе отклоняет запрос.
func (r *Resolver) Delete(snapshot Snapshot, entityID int64, nickname, password string) Decision {
	d := &decision{trace: []State{StateStart}}

	if strings.TrimSpace(nickname) == "" {
		return d.reject(ReasonValidationFailure)
	}

	d.step(StateVisitorLookup)

	visitor, found := snapshot.visitor(nickname)
	if !found {
		return d.reject(ReasonNotFound)
	}

	d.step(StateVisitorFound)
	d.step(StateCommentLookup)

	existing, found := snapshot.entry(entityID, visitor.ID)
	if !found {
		return d.reject(ReasonNotFound)
	}

	if visitor.Password != password {
		return d.reject(ReasonAuthMismatch)
	}

	d.step(StateDeleteComment)
	d.mutate(Mutation{Kind: DeleteComment, Entry: existing})

	return d.accept(OutcomeDeleted)
}

type decision struct {
	trace     []State
	mutations []Mutation
}

func (d *decision) step(s State) {
	d.trace = append(d.trace, s)
}

func (d *decision) mutate(m Mutation) {
	d.mutations = append(d.mutations, m)
}

func (d *decision) accept(outcome Outcome) Decision {
	return Decision{
		Outcome:   outcome,
		Mutations: d.mutations,
		Trace:     d.trace,
	}
}

func (d *decision) reject(reason Reason) Decision {
	d.step(StateReject)

	return Decision{
		Outcome: OutcomeRejected,
		Reason:  reason,
		Trace:   d.trace,
	}
}

// Apply возвращает новый снимок с применёнными мутациями. Новым посетителям
// выдаётся id на единицу больше максимального.
func (s Snapshot) Apply(mutations []Mutation) Snapshot {
	out := Snapshot{
		Visitors: slices.Clone(s.Visitors),
		Feedback: slices.Clone(s.Feedback),
	}

	var createdID int64
	for _, m := range mutations {
		switch m.Kind {
		case CreateVisitor:
			for _, v := range out.Visitors {
				createdID = max(createdID, v.ID)
			}
			createdID++

			visitor := m.Visitor
			visitor.ID = createdID
			out.Visitors = append(out.Visitors, visitor)
		case CreateComment:
			entry := m.Entry
			if entry.VisitorID == 0 {
				entry.VisitorID = createdID
			}
			out.Feedback = append(out.Feedback, entry)
		case UpdateComment:
			for i, e := range out.Feedback {
				if e.EntityID == m.Entry.EntityID && e.VisitorID == m.Entry.VisitorID {
					out.Feedback[i] = m.Entry
				}
			}
		case DeleteComment:
			out.Feedback = slices.DeleteFunc(out.Feedback, func(e entity.FeedbackEntry) bool {
				return e.EntityID == m.Entry.EntityID && e.VisitorID == m.Entry.VisitorID
			})
		}
	}

	return out
}
