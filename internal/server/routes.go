package server

import (
	"context"
	"net/http"

	"git.appkode.ru/pub/go/failure"
	"github.com/go-chi/chi/v5"

	"geo_feedback/internal/domain"
	"geo_feedback/pkg/errcodes"
	"geo_feedback/pkg/httpx/reply"
	"geo_feedback/pkg/logx"
	"geo_feedback/pkg/middlewarex"
)

// statusByCode статусы ответов для доменных кодов. Всё, чего нет в
// таблице, отдаётся как 500.
var statusByCode = map[failure.ErrorCode]int{ //nolint:gochecknoglobals
	errcodes.InvalidCodeFormat: http.StatusBadRequest,
	errcodes.InvalidCoordinate: http.StatusBadRequest,
	errcodes.ValidationFailure: http.StatusBadRequest,
	errcodes.InvalidRank:       http.StatusBadRequest,
	errcodes.InvalidSortKey:    http.StatusBadRequest,
	errcodes.InvalidRadius:     http.StatusBadRequest,
	errcodes.InvalidMarketID:   http.StatusBadRequest,
	errcodes.EntityNotFound:    http.StatusNotFound,
	errcodes.NotFound:          http.StatusNotFound,
	errcodes.AuthMismatch:      http.StatusForbidden,
	errcodes.Conflict:          http.StatusConflict,
}

type RouterOptions struct {
	SensitiveDataMasker logx.SensitiveDataMaskerInterface
	LogFieldMaxLen      int
	Middlewares         []func(http.Handler) http.Handler
}

// NewRouter собирает chi-роутер со стандартной цепочкой middleware.
func NewRouter(s Server, opts RouterOptions) chi.Router {
	masker := opts.SensitiveDataMasker
	if masker == nil {
		masker = logx.NewNopSensitiveDataMasker()
	}

	r := chi.NewRouter()
	r.Use(
		middlewarex.TraceID,
		middlewarex.Logger,
		middlewarex.Logging(masker, opts.LogFieldMaxLen),
		middlewarex.Recovery,
	)
	r.Use(opts.Middlewares...)

	s.RegisterRoutes(r)

	return r
}

func (s Server) RegisterRoutes(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Route("/markets", func(r chi.Router) {
			r.Get("/", handler(s.getV1Markets))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", handler(s.getV1Market))
				r.Get("/location", handler(s.getV1MarketLocation))
				r.Get("/nearby", handler(s.getV1MarketNearby))
				r.Get("/comments", handler(s.getV1MarketComments))
				r.Post("/comments", handler(s.postV1MarketComment))
				r.Delete("/comments", handler(s.deleteV1MarketComment))
				r.Post("/comments/lookup", handler(s.postV1MarketCommentLookup))
			})
		})

		r.Route("/postal-codes", func(r chi.Router) {
			r.Get("/", handler(s.getV1PostalCodes))
			r.Get("/{code}", handler(s.getV1PostalCode))
			r.Get("/{code}/nearby", handler(s.getV1PostalCodeNearby))
		})

		r.Get("/distance", handler(s.getV1Distance))
	})
}

func handler(f func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			writeError(r.Context(), w, err)
		}
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	code, ok := domain.GetCode(err)
	if !ok {
		reply.Error(ctx, w, err)
		return
	}

	status, known := statusByCode[code]
	if !known {
		logger(ctx).Error("internal error", logx.Error(err))
		reply.Status(ctx, w, http.StatusInternalServerError, errcodes.InternalServerError, "internal error")
		return
	}

	reply.Status(ctx, w, status, code, err.Error())
}
