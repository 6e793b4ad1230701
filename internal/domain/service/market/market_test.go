package market_test

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"geo_feedback/internal/domain"
	"geo_feedback/internal/domain/entity"
	"geo_feedback/internal/domain/service/comment"
	"geo_feedback/internal/domain/service/market"
	"geo_feedback/internal/domain/value"
	"geo_feedback/pkg/errcodes"
)

type fakeStore struct {
	markets  []entity.Market
	snapshot comment.Snapshot

	listCalls   int
	applyErrors []error
	applied     [][]comment.Mutation
}

func (f *fakeStore) List(context.Context) ([]entity.Market, error) {
	f.listCalls++
	return f.markets, nil
}

func (f *fakeStore) Search(_ context.Context, field value.SearchField, prefix string) ([]entity.Market, error) {
	var out []entity.Market
	for _, m := range f.markets {
		v := m.Name
		switch field {
		case value.SearchByCity:
			v = m.City
		case value.SearchByState:
			v = m.State
		case value.SearchByZip:
			v = m.Zip
		}
		if strings.HasPrefix(strings.ToLower(v), strings.ToLower(prefix)) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (entity.Market, error) {
	for _, m := range f.markets {
		if m.ID == id {
			return m, nil
		}
	}
	return entity.Market{}, domain.NewError(errcodes.EntityNotFound, "market not found")
}

func (f *fakeStore) Neighbours(_ context.Context, name string) (*int64, *int64, error) {
	sorted := slices.Clone(f.markets)
	slices.SortFunc(sorted, func(a, b entity.Market) int { return strings.Compare(a.Name, b.Name) })

	var previous, next *int64
	for i := range sorted {
		if sorted[i].Name < name {
			id := sorted[i].ID
			previous = &id
		}
		if sorted[i].Name > name && next == nil {
			id := sorted[i].ID
			next = &id
		}
	}
	return previous, next, nil
}

func (f *fakeStore) All(context.Context) ([]entity.FeedbackEntry, error) {
	return f.snapshot.Feedback, nil
}

func (f *fakeStore) ByMarket(_ context.Context, id int64) ([]entity.FeedbackEntry, error) {
	var out []entity.FeedbackEntry
	for _, e := range f.snapshot.Feedback {
		if e.EntityID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) Comments(_ context.Context, id int64) ([]entity.CommentView, error) {
	var out []entity.CommentView
	for _, e := range f.snapshot.Feedback {
		if e.EntityID != id {
			continue
		}
		for _, v := range f.snapshot.Visitors {
			if v.ID == e.VisitorID {
				out = append(out, entity.CommentView{Nickname: v.Nickname, Comment: e.Comment, Rank: e.Rank})
			}
		}
	}
	return out, nil
}

func (f *fakeStore) VisitorsByNickname(_ context.Context, nickname string) ([]entity.Visitor, error) {
	var out []entity.Visitor
	for _, v := range f.snapshot.Visitors {
		if v.Nickname == nickname {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeStore) Apply(_ context.Context, mutations []comment.Mutation) error {
	if len(f.applyErrors) > 0 {
		err := f.applyErrors[0]
		f.applyErrors = f.applyErrors[1:]
		if err != nil {
			return err
		}
	}
	f.applied = append(f.applied, mutations)
	f.snapshot = f.snapshot.Apply(mutations)
	return nil
}

type fakeNearbyCache struct {
	items map[string][]entity.NearbyEntity
}

func cacheKey(id int64, key value.SortKey) string {
	return fmt.Sprintf("%d:%s", id, key)
}

func (c *fakeNearbyCache) Get(_ context.Context, id int64, _ float64, key value.SortKey) ([]entity.NearbyEntity, bool, error) {
	v, ok := c.items[cacheKey(id, key)]
	return v, ok, nil
}

func (c *fakeNearbyCache) Set(_ context.Context, id int64, _ float64, key value.SortKey, result []entity.NearbyEntity, _ time.Duration) error {
	c.items[cacheKey(id, key)] = result
	return nil
}

func (c *fakeNearbyCache) InvalidateNearby(context.Context, int64) error {
	c.items = make(map[string][]entity.NearbyEntity)
	return nil
}

type fakeNotifier struct {
	events []entity.CommentEvent
}

func (n *fakeNotifier) NotifyComment(_ context.Context, event entity.CommentEvent) error {
	n.events = append(n.events, event)
	return nil
}

func newMarket(id int64, name, city, state, zip string, lat, lon float64) entity.Market {
	return entity.Market{
		LocatedEntity: entity.LocatedEntity{
			ID:       id,
			Name:     name,
			City:     city,
			State:    state,
			Location: value.Point{Lat: lat, Lon: lon},
		},
		Zip:   zip,
		Goods: []string{"Honey", "Vegetables"},
	}
}

func newStore() *fakeStore {
	return &fakeStore{
		markets: []entity.Market{
			newMarket(1, "union square", "new york", "new york", "10003", 40.7359, -73.9911),
			newMarket(2, "tompkins square", "new york", "new york", "10009", 40.7265, -73.9815),
			newMarket(3, "grand army plaza", "brooklyn", "new york", "11238", 40.6732, -73.9701),
			newMarket(4, "headhouse", "philadelphia", "pennsylvania", "19147", 39.9416, -75.1452),
		},
		snapshot: comment.Snapshot{
			Visitors: []entity.Visitor{{ID: 1, Nickname: "anna", Password: "secret"}},
			Feedback: []entity.FeedbackEntry{
				{EntityID: 2, VisitorID: 1, Comment: "good", Rank: 3},
			},
		},
	}
}

func TestList(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()
	store := newStore()
	svc := market.NewService(store, store, store)

	all, err := svc.List(ctx, market.Search{})
	rq.NoError(err)
	rq.Len(all, 4)
	rq.Equal("grand army plaza", all[0].Name)

	byState, err := svc.List(ctx, market.Search{Field: value.SearchByState, Prefix: "NEW", Sort: value.SortRankDesc})
	rq.NoError(err)
	rq.Len(byState, 3)
	rq.Equal(int64(2), byState[0].ID)
	rq.Equal(entity.Aggregate{MeanRank: 3, VoteCount: 1}, byState[0].Aggregate)
	rq.Equal([]string{"Honey", "Vegetables"}, byState[0].Goods)
}

func TestGet(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()
	store := newStore()
	svc := market.NewService(store, store, store)

	detail, err := svc.Get(ctx, 2)
	rq.NoError(err)
	rq.Equal(entity.Aggregate{MeanRank: 3, VoteCount: 1}, detail.Aggregate)
	rq.NotNil(detail.Previous)
	rq.Equal(int64(4), *detail.Previous)
	rq.NotNil(detail.Next)
	rq.Equal(int64(1), *detail.Next)

	_, err = svc.Get(ctx, 99)
	rq.True(domain.HasCode(err, errcodes.EntityNotFound))
}

func TestLocation(t *testing.T) {
	rq := require.New(t)
	store := newStore()
	svc := market.NewService(store, store, store)

	location, err := svc.Location(context.Background(), 4)
	rq.NoError(err)
	rq.Equal(`(039°56'29.76"N,075°8'42.72"W)`, location)
}

func TestNearbyUsesSnapshotAndCache(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()
	store := newStore()
	nearby := &fakeNearbyCache{items: make(map[string][]entity.NearbyEntity)}
	svc := market.NewService(store, store, store).WithNearbyCache(nearby, time.Minute)

	result, err := svc.Nearby(ctx, 1, 10, value.SortNameAsc)
	rq.NoError(err)
	rq.Len(result, 2)
	rq.Equal(int64(3), result[0].Entity.ID)
	rq.Equal(int64(2), result[1].Entity.ID)
	rq.Len(nearby.items, 1)

	_, err = svc.Nearby(ctx, 1, 10, value.SortCity)
	rq.NoError(err)
	rq.Equal(1, store.listCalls)

	_, err = svc.Nearby(ctx, 42, 10, value.SortNameAsc)
	rq.True(domain.HasCode(err, errcodes.EntityNotFound))
}

func TestResolveCommentCreatesAndUpdates(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()
	store := newStore()
	notifier := &fakeNotifier{}
	nearby := &fakeNearbyCache{items: map[string][]entity.NearbyEntity{"stale": nil}}
	svc := market.NewService(store, store, store).
		WithNotifier(notifier).
		WithInvalidator(nearby)

	d, err := svc.ResolveComment(ctx, comment.Request{
		EntityID: 3, Nickname: "vera", Password: "pw", Comment: "tasty", Rank: 5,
	})
	rq.NoError(err)
	rq.Equal(comment.OutcomeCreated, d.Outcome)
	rq.Len(store.snapshot.Visitors, 2)
	rq.Len(store.snapshot.Feedback, 2)
	rq.Empty(nearby.items)

	d, err = svc.ResolveComment(ctx, comment.Request{
		EntityID: 3, Nickname: "vera", Password: "pw", Comment: "still tasty", Rank: 4,
	})
	rq.NoError(err)
	rq.Equal(comment.OutcomeUpdated, d.Outcome)
	rq.Len(store.snapshot.Feedback, 2)

	comments, err := svc.Comments(ctx, 3)
	rq.NoError(err)
	rq.Equal([]entity.CommentView{{Nickname: "vera", Comment: "still tasty", Rank: 4}}, comments)

	rq.Len(notifier.events, 2)
	rq.Equal("grand army plaza", notifier.events[0].MarketName)
	rq.Equal(string(comment.OutcomeUpdated), notifier.events[1].Outcome)
}

func TestResolveCommentRejectedLeavesStateUnchanged(t *testing.T) {
	rq := require.New(t)
	store := newStore()
	notifier := &fakeNotifier{}
	svc := market.NewService(store, store, store).WithNotifier(notifier)

	d, err := svc.ResolveComment(context.Background(), comment.Request{
		EntityID: 2, Nickname: "anna", Password: "wrong", Comment: "spam", Rank: 1,
	})
	rq.NoError(err)
	rq.True(d.Rejected())
	rq.Equal(comment.ReasonAuthMismatch, d.Reason)
	rq.Empty(store.applied)
	rq.Empty(notifier.events)
}

func TestResolveCommentRetriesOnConflict(t *testing.T) {
	rq := require.New(t)
	store := newStore()
	store.applyErrors = []error{domain.NewError(errcodes.Conflict, "duplicate comment")}
	svc := market.NewService(store, store, store)

	d, err := svc.ResolveComment(context.Background(), comment.Request{
		EntityID: 1, Nickname: "anna", Password: "secret", Comment: "ok", Rank: 4,
	})
	rq.NoError(err)
	rq.Equal(comment.OutcomeCreated, d.Outcome)
	rq.Len(store.applied, 1)
}

func TestResolveCommentGivesUpAfterSecondConflict(t *testing.T) {
	rq := require.New(t)
	store := newStore()
	store.applyErrors = []error{
		domain.NewError(errcodes.Conflict, "duplicate comment"),
		domain.NewError(errcodes.Conflict, "duplicate comment"),
	}
	svc := market.NewService(store, store, store)

	_, err := svc.ResolveComment(context.Background(), comment.Request{
		EntityID: 1, Nickname: "anna", Password: "secret", Comment: "ok", Rank: 4,
	})
	rq.True(domain.HasCode(err, errcodes.Conflict))
	rq.Empty(store.applied)
}

func TestResolveCommentUnknownMarket(t *testing.T) {
	rq := require.New(t)
	store := newStore()
	svc := market.NewService(store, store, store)

	_, err := svc.ResolveComment(context.Background(), comment.Request{
		EntityID: 100, Nickname: "anna", Password: "secret", Rank: 4,
	})
	rq.True(domain.HasCode(err, errcodes.EntityNotFound))
}

func TestResolveCommentAuthModes(t *testing.T) {
	rq := require.New(t)
	request := comment.Request{EntityID: 4, Nickname: "anna", Password: "", Comment: "far away", Rank: 2}

	store := newStore()
	d, err := market.NewService(store, store, store).ResolveComment(context.Background(), request)
	rq.NoError(err)
	rq.Equal(comment.OutcomeCreated, d.Outcome)

	store = newStore()
	d, err = market.NewService(store, store, store).WithStrictAuth().ResolveComment(context.Background(), request)
	rq.NoError(err)
	rq.True(d.Rejected())
	rq.Equal(comment.ReasonAuthMismatch, d.Reason)
	rq.Empty(store.applied)
}

func TestGetAndDeleteComment(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()
	store := newStore()
	svc := market.NewService(store, store, store)

	view, err := svc.GetComment(ctx, 2, "anna", "secret")
	rq.NoError(err)
	rq.Equal(entity.CommentView{Nickname: "anna", Comment: "good", Rank: 3}, view)

	_, err = svc.GetComment(ctx, 2, "anna", "nope")
	rq.True(domain.HasCode(err, errcodes.EntityNotFound))

	d, err := svc.DeleteComment(ctx, 2, "anna", "nope")
	rq.NoError(err)
	rq.True(d.Rejected())
	rq.Len(store.snapshot.Feedback, 1)

	d, err = svc.DeleteComment(ctx, 2, "anna", "secret")
	rq.NoError(err)
	rq.Equal(comment.OutcomeDeleted, d.Outcome)
	rq.Empty(store.snapshot.Feedback)
}

func TestRefreshSnapshotSkipsInvalidCoordinates(t *testing.T) {
	rq := require.New(t)
	store := newStore()
	store.markets = append(store.markets, newMarket(5, "broken", "x", "y", "00000", 123, 0))
	svc := market.NewService(store, store, store).WithSnapshotTTL(time.Hour)

	n, err := svc.RefreshSnapshot(context.Background())
	rq.NoError(err)
	rq.Equal(4, n)
}
