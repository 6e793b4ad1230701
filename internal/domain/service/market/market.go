package market

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"geo_feedback/internal/domain"
	"geo_feedback/internal/domain/entity"
	"geo_feedback/internal/domain/service/comment"
	"geo_feedback/internal/domain/service/feedback"
	"geo_feedback/internal/domain/service/geomath"
	"geo_feedback/internal/domain/service/proximity"
	"geo_feedback/internal/domain/value"
	"geo_feedback/pkg/contextx"
	"geo_feedback/pkg/errcodes"
	"geo_feedback/pkg/logx"
)

const (
	defaultSnapshotTTL = 10 * time.Minute
	defaultNearbyTTL   = 5 * time.Minute

	snapshotKey = "markets"
	// повтор решения после конфликта уникальности при вставке
	conflictAttempts = 2
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type MarketRepository interface {
	List(ctx context.Context) ([]entity.Market, error)
	Search(ctx context.Context, field value.SearchField, prefix string) ([]entity.Market, error)
	GetByID(ctx context.Context, id int64) (entity.Market, error)
	Neighbours(ctx context.Context, name string) (previous, next *int64, err error)
}

type FeedbackRepository interface {
	All(ctx context.Context) ([]entity.FeedbackEntry, error)
	ByMarket(ctx context.Context, marketID int64) ([]entity.FeedbackEntry, error)
	Comments(ctx context.Context, marketID int64) ([]entity.CommentView, error)
	VisitorsByNickname(ctx context.Context, nickname string) ([]entity.Visitor, error)
}

// MutationSink применяет мутации одного решения в одной транзакции.
// Нарушение уникальности возвращается с кодом errcodes.Conflict.
type MutationSink interface {
	Apply(ctx context.Context, mutations []comment.Mutation) error
}

type NearbyCache interface {
	Get(ctx context.Context, marketID int64, radiusMiles float64, key value.SortKey) ([]entity.NearbyEntity, bool, error)
	Set(ctx context.Context, marketID int64, radiusMiles float64, key value.SortKey, result []entity.NearbyEntity, ttl time.Duration) error
}

type Invalidator interface {
	InvalidateNearby(ctx context.Context, marketID int64) error
}

type Notifier interface {
	NotifyComment(ctx context.Context, event entity.CommentEvent) error
}

type Recorder interface {
	NearbySearch(source string)
	NearbyCacheResult(hit bool)
	CommentOutcome(outcome, reason string)
}

// Search условие списка рынков: поле, начало значения и сортировка.
type Search struct {
	Field  value.SearchField
	Prefix string
	Sort   value.SortKey
}

type snapshot struct {
	markets []entity.Market
	index   *proximity.Index
}

type Service struct {
	markets     MarketRepository
	feedback    FeedbackRepository
	sink        MutationSink
	resolver    *comment.Resolver
	snapshots   *cache.Cache
	snapshotTTL time.Duration
	nearby      NearbyCache
	nearbyTTL   time.Duration
	invalidator Invalidator
	notifier    Notifier
	recorder    Recorder
}

func NewService(
	markets MarketRepository,
	feedbackRepo FeedbackRepository,
	sink MutationSink,
) *Service {
	return &Service{
		markets:     markets,
		feedback:    feedbackRepo,
		sink:        sink,
		resolver:    comment.NewResolver(),
		snapshots:   cache.New(defaultSnapshotTTL, 2*defaultSnapshotTTL),
		snapshotTTL: defaultSnapshotTTL,
		nearbyTTL:   defaultNearbyTTL,
		recorder:    nopRecorder{},
	}
}

// WithStrictAuth включает проверку пароля при первом отзыве известного посетителя.
func (s *Service) WithStrictAuth() *Service {
	s.resolver = s.resolver.WithStrictAuth()
	return s
}

func (s *Service) WithSnapshotTTL(ttl time.Duration) *Service {
	s.snapshotTTL = ttl
	s.snapshots = cache.New(ttl, 2*ttl)
	return s
}

func (s *Service) WithNearbyCache(c NearbyCache, ttl time.Duration) *Service {
	s.nearby = c
	s.nearbyTTL = ttl
	return s
}

func (s *Service) WithInvalidator(i Invalidator) *Service {
	s.invalidator = i
	return s
}

func (s *Service) WithNotifier(n Notifier) *Service {
	s.notifier = n
	return s
}

func (s *Service) WithRecorder(r Recorder) *Service {
	s.recorder = r
	return s
}

// List ищет рынки по началу поля без учёта регистра.
func (s *Service) List(ctx context.Context, search Search) ([]entity.MarketSummary, error) {
	if search.Field == "" {
		search.Field = value.SearchByName
	}
	if search.Sort == "" {
		search.Sort = value.SortNameAsc
	}

	markets, err := s.markets.Search(ctx, search.Field, search.Prefix)
	if err != nil {
		return nil, fmt.Errorf("search markets: %w", err)
	}

	entries, err := s.feedback.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load feedback: %w", err)
	}

	aggregates := feedback.AggregateAll(entries)
	byID := make(map[int64]entity.Market, len(markets))
	items := make([]entity.NearbyEntity, 0, len(markets))

	for _, m := range markets {
		byID[m.ID] = m
		items = append(items, entity.NearbyEntity{Entity: m.LocatedEntity, Aggregate: aggregates[m.ID]})
	}

	if err := proximity.Sort(items, search.Sort); err != nil {
		return nil, err
	}

	result := make([]entity.MarketSummary, 0, len(items))
	for _, it := range items {
		result = append(result, entity.MarketSummary{Market: byID[it.Entity.ID], Aggregate: it.Aggregate})
	}

	return result, nil
}

// Get возвращает карточку рынка с оценкой и соседями по алфавиту.
func (s *Service) Get(ctx context.Context, id int64) (entity.MarketDetail, error) {
	m, err := s.markets.GetByID(ctx, id)
	if err != nil {
		return entity.MarketDetail{}, err
	}

	entries, err := s.feedback.ByMarket(ctx, id)
	if err != nil {
		return entity.MarketDetail{}, fmt.Errorf("load feedback: %w", err)
	}

	previous, next, err := s.markets.Neighbours(ctx, m.Name)
	if err != nil {
		return entity.MarketDetail{}, fmt.Errorf("load neighbours: %w", err)
	}

	return entity.MarketDetail{
		Market:    m,
		Aggregate: feedback.Aggregate(id, entries),
		Previous:  previous,
		Next:      next,
	}, nil
}

func (s *Service) Comments(ctx context.Context, id int64) ([]entity.CommentView, error) {
	if _, err := s.markets.GetByID(ctx, id); err != nil {
		return nil, err
	}

	return s.feedback.Comments(ctx, id)
}

// Location координаты рынка в градусах, минутах и секундах.
func (s *Service) Location(ctx context.Context, id int64) (string, error) {
	m, err := s.markets.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	if err := m.Location.Validate(); err != nil {
		return "", err
	}

	return geomath.Format(m.Location), nil
}

func (s *Service) Nearby(
	ctx context.Context,
	id int64,
	radiusMiles float64,
	key value.SortKey,
) ([]entity.NearbyEntity, error) {
	if s.nearby != nil {
		cached, ok, err := s.nearby.Get(ctx, id, radiusMiles, key)
		if err != nil {
			logger(ctx).Warn("nearby cache get failed", logx.Error(err))
		}
		s.recorder.NearbyCacheResult(ok)
		if ok {
			return cached, nil
		}
	}

	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := s.feedback.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load feedback: %w", err)
	}

	result, err := snap.index.Nearby(id, radiusMiles, entries, key)
	if err != nil {
		return nil, err
	}

	s.recorder.NearbySearch("market")

	if s.nearby != nil {
		if err := s.nearby.Set(ctx, id, radiusMiles, key, result, s.nearbyTTL); err != nil {
			logger(ctx).Warn("nearby cache set failed", logx.Error(err))
		}
	}

	return result, nil
}

// RefreshSnapshot перечитывает рынки и перестраивает индекс для поиска по радиусу.
func (s *Service) RefreshSnapshot(ctx context.Context) (int, error) {
	markets, err := s.markets.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list markets: %w", err)
	}

	located := make([]entity.LocatedEntity, 0, len(markets))
	for _, m := range markets {
		if err := m.Location.Validate(); err != nil {
			logger(ctx).Warn("market skipped", logx.FieldMarketID, m.ID, logx.Error(err))
			continue
		}
		located = append(located, m.LocatedEntity)
	}

	snap := &snapshot{markets: markets, index: proximity.NewIndex(located)}
	s.snapshots.Set(snapshotKey, snap, s.snapshotTTL)

	logger(ctx).Debug("market snapshot refreshed", "markets", snap.index.Len())

	return snap.index.Len(), nil
}

func (s *Service) snapshot(ctx context.Context) (*snapshot, error) {
	if v, ok := s.snapshots.Get(snapshotKey); ok {
		return v.(*snapshot), nil
	}

	if _, err := s.RefreshSnapshot(ctx); err != nil {
		return nil, err
	}

	v, ok := s.snapshots.Get(snapshotKey)
	if !ok {
		return nil, domain.NewError(errcodes.InternalServerError, "market snapshot unavailable")
	}

	return v.(*snapshot), nil
}

// ResolveComment создаёт или обновляет отзыв посетителя о рынке.
func (s *Service) ResolveComment(ctx context.Context, req comment.Request) (comment.Decision, error) {
	m, err := s.markets.GetByID(ctx, req.EntityID)
	if err != nil {
		return comment.Decision{}, err
	}

	var decision comment.Decision

	for attempt := 1; attempt <= conflictAttempts; attempt++ {
		snap, err := s.commentSnapshot(ctx, req.EntityID, req.Nickname)
		if err != nil {
			return comment.Decision{}, err
		}

		decision = s.resolver.Resolve(snap, req)
		if decision.Rejected() {
			break
		}

		err = s.sink.Apply(ctx, decision.Mutations)
		if err == nil {
			s.afterMutation(ctx, m, req.Nickname, req.Comment, req.Rank, decision)
			break
		}

		if !domain.HasCode(err, errcodes.Conflict) || attempt == conflictAttempts {
			return comment.Decision{}, fmt.Errorf("apply mutations: %w", err)
		}

		logger(ctx).Warn("comment conflict, resolving again",
			logx.FieldMarketID, req.EntityID,
			"attempt", attempt,
			logx.Error(err),
		)
	}

	s.recorder.CommentOutcome(string(decision.Outcome), string(decision.Reason))

	return decision, nil
}

// GetComment возвращает отзыв посетителя, если пароль совпал.
func (s *Service) GetComment(ctx context.Context, marketID int64, nickname, password string) (entity.CommentView, error) {
	if _, err := s.markets.GetByID(ctx, marketID); err != nil {
		return entity.CommentView{}, err
	}

	snap, err := s.commentSnapshot(ctx, marketID, nickname)
	if err != nil {
		return entity.CommentView{}, err
	}

	entry, ok := s.resolver.Get(snap, marketID, nickname, password)
	if !ok {
		return entity.CommentView{}, domain.NewError(errcodes.EntityNotFound, "comment not found")
	}

	return entity.CommentView{Nickname: nickname, Comment: entry.Comment, Rank: entry.Rank}, nil
}

func (s *Service) DeleteComment(ctx context.Context, marketID int64, nickname, password string) (comment.Decision, error) {
	m, err := s.markets.GetByID(ctx, marketID)
	if err != nil {
		return comment.Decision{}, err
	}

	snap, err := s.commentSnapshot(ctx, marketID, nickname)
	if err != nil {
		return comment.Decision{}, err
	}

	decision := s.resolver.Delete(snap, marketID, nickname, password)
	if !decision.Rejected() {
		if err := s.sink.Apply(ctx, decision.Mutations); err != nil {
			return comment.Decision{}, fmt.Errorf("apply mutations: %w", err)
		}
		s.afterMutation(ctx, m, nickname, "", value.NoRank, decision)
	}

	s.recorder.CommentOutcome(string(decision.Outcome), string(decision.Reason))

	return decision, nil
}

// commentSnapshot содержит только посетителей с этим ником и отзывы о рынке:
// больше решателю ничего не нужно.
func (s *Service) commentSnapshot(ctx context.Context, marketID int64, nickname string) (comment.Snapshot, error) {
	visitors, err := s.feedback.VisitorsByNickname(ctx, nickname)
	if err != nil {
		return comment.Snapshot{}, fmt.Errorf("load visitors: %w", err)
	}

	entries, err := s.feedback.ByMarket(ctx, marketID)
	if err != nil {
		return comment.Snapshot{}, fmt.Errorf("load feedback: %w", err)
	}

	return comment.Snapshot{Visitors: visitors, Feedback: entries}, nil
}

func (s *Service) afterMutation(
	ctx context.Context,
	m entity.Market,
	nickname, text string,
	rank value.Rank,
	decision comment.Decision,
) {
	if s.invalidator != nil {
		if err := s.invalidator.InvalidateNearby(ctx, m.ID); err != nil {
			logger(ctx).Warn("nearby invalidation failed", logx.FieldMarketID, m.ID, logx.Error(err))
		}
	}

	if s.notifier == nil || decision.Outcome == comment.OutcomeDeleted {
		return
	}

	event := entity.CommentEvent{
		MarketID:   m.ID,
		MarketName: m.Name,
		Nickname:   nickname,
		Outcome:    string(decision.Outcome),
		Comment:    text,
		Rank:       rank,
	}
	if err := s.notifier.NotifyComment(ctx, event); err != nil {
		logger(ctx).Warn("comment notification failed", logx.FieldMarketID, m.ID, logx.Error(err))
	}
}

type nopRecorder struct{}

func (nopRecorder) NearbySearch(string)           {}
func (nopRecorder) NearbyCacheResult(bool)        {}
func (nopRecorder) CommentOutcome(string, string) {}
