package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"geo_feedback/internal/domain"
	"geo_feedback/internal/domain/entity"
	"geo_feedback/internal/domain/service/comment"
	"geo_feedback/internal/domain/service/market"
	"geo_feedback/internal/domain/value"
	"geo_feedback/pkg/errcodes"
	"geo_feedback/pkg/httpx/reply"
	"geo_feedback/pkg/httpx/req"
	"geo_feedback/pkg/rest"
)

type marketService interface {
	List(ctx context.Context, search market.Search) ([]entity.MarketSummary, error)
	Get(ctx context.Context, id int64) (entity.MarketDetail, error)
	Comments(ctx context.Context, id int64) ([]entity.CommentView, error)
	Location(ctx context.Context, id int64) (string, error)
	Nearby(ctx context.Context, id int64, radiusMiles float64, key value.SortKey) ([]entity.NearbyEntity, error)
	ResolveComment(ctx context.Context, req comment.Request) (comment.Decision, error)
	GetComment(ctx context.Context, marketID int64, nickname, password string) (entity.CommentView, error)
	DeleteComment(ctx context.Context, marketID int64, nickname, password string) (comment.Decision, error)
}

type MarketServer struct {
	marketService marketService
}

func NewMarketServer(marketService marketService) MarketServer {
	return MarketServer{
		marketService: marketService,
	}
}

func (s MarketServer) getV1Markets(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	query := r.URL.Query()

	field, err := value.ParseSearchField(query.Get("field"))
	if err != nil {
		return fmt.Errorf("value.ParseSearchField: %w", err)
	}

	sortKey, err := value.ParseSortKey(query.Get("sort"))
	if err != nil {
		return fmt.Errorf("value.ParseSortKey: %w", err)
	}

	markets, err := s.marketService.List(ctx, market.Search{
		Field:  field,
		Prefix: query.Get("q"),
		Sort:   sortKey,
	})
	if err != nil {
		return fmt.Errorf("marketService.List: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTMarkets(markets))

	return nil
}

func (s MarketServer) getV1Market(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := marketID(r)
	if err != nil {
		return err
	}

	detail, err := s.marketService.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("marketService.Get: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTMarketDetail(detail))

	return nil
}

func (s MarketServer) getV1MarketLocation(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := marketID(r)
	if err != nil {
		return err
	}

	location, err := s.marketService.Location(ctx, id)
	if err != nil {
		return fmt.Errorf("marketService.Location: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, map[string]string{"coordinates": location})

	return nil
}

func (s MarketServer) getV1MarketNearby(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := marketID(r)
	if err != nil {
		return err
	}

	radius, sortKey, err := nearbyQuery(r)
	if err != nil {
		return err
	}

	nearby, err := s.marketService.Nearby(ctx, id, radius, sortKey)
	if err != nil {
		return fmt.Errorf("marketService.Nearby: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTNearby(nearby))

	return nil
}

func (s MarketServer) getV1MarketComments(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := marketID(r)
	if err != nil {
		return err
	}

	comments, err := s.marketService.Comments(ctx, id)
	if err != nil {
		return fmt.Errorf("marketService.Comments: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTComments(comments))

	return nil
}

func (s MarketServer) postV1MarketComment(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := marketID(r)
	if err != nil {
		return err
	}

	var request rest.CommentRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	rank, err := newDomainRank(request.Rank)
	if err != nil {
		return err
	}

	decision, err := s.marketService.ResolveComment(ctx, comment.Request{
		EntityID: id,
		Nickname: request.Nickname,
		Password: request.Password,
		Comment:  request.Comment,
		Rank:     rank,
	})
	if err != nil {
		return fmt.Errorf("marketService.ResolveComment: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTOutcome(decision))

	return nil
}

func (s MarketServer) postV1MarketCommentLookup(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := marketID(r)
	if err != nil {
		return err
	}

	var request rest.Credentials

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	view, err := s.marketService.GetComment(ctx, id, request.Nickname, request.Password)
	if err != nil {
		return fmt.Errorf("marketService.GetComment: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTComment(view))

	return nil
}

func (s MarketServer) deleteV1MarketComment(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := marketID(r)
	if err != nil {
		return err
	}

	var request rest.Credentials

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	decision, err := s.marketService.DeleteComment(ctx, id, request.Nickname, request.Password)
	if err != nil {
		return fmt.Errorf("marketService.DeleteComment: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTOutcome(decision))

	return nil
}

func marketID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Errorf(errcodes.InvalidMarketID, "invalid market id %q", raw)
	}

	return id, nil
}

// nearbyQuery разбирает radius (мили, обязателен) и sort.
func nearbyQuery(r *http.Request) (float64, value.SortKey, error) {
	query := r.URL.Query()

	raw := query.Get("radius")

	radius, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, "", domain.Errorf(errcodes.InvalidRadius, "invalid radius %q", raw)
	}

	sortKey, err := value.ParseSortKey(query.Get("sort"))
	if err != nil {
		return 0, "", fmt.Errorf("value.ParseSortKey: %w", err)
	}

	return radius, sortKey, nil
}

func newRESTOutcome(d comment.Decision) rest.CommentOutcome {
	return rest.CommentOutcome{
		Outcome: string(d.Outcome),
		Reason:  string(d.Reason),
	}
}
