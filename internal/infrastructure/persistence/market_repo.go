package persistence

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"geo_feedback/internal/domain"
	"geo_feedback/internal/domain/entity"
	"geo_feedback/internal/domain/value"
	"geo_feedback/pkg/errcodes"
)

const marketColumns = `id, name, street, city, county, state, zip, website, facebook, other_media, lat, lon`

// searchColumns столбцы, по которым разрешён поиск. Имя столбца никогда
// не берётся из запроса напрямую.
var searchColumns = map[value.SearchField]string{ //nolint:gochecknoglobals
	value.SearchByName:  "name",
	value.SearchByCity:  "city",
	value.SearchByState: "state",
	value.SearchByZip:   "zip",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`) //nolint:gochecknoglobals

type MarketRepository struct {
	db *sqlx.DB
}

func NewMarketRepository(db *sqlx.DB) *MarketRepository {
	return &MarketRepository{db: db}
}

// List возвращает все рынки вместе с товарами.
func (r *MarketRepository) List(ctx context.Context) ([]entity.Market, error) {
	query := `SELECT ` + marketColumns + ` FROM markets ORDER BY id`

	var schemas []marketSchema
	if err := r.db.SelectContext(ctx, &schemas, query); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list markets")
	}

	var goods []goodSchema
	if err := r.db.SelectContext(ctx, &goods, `SELECT market_id, good FROM market_goods ORDER BY market_id, good`); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list goods")
	}

	return withGoods(schemas, goods), nil
}

// Search ищет рынки по началу значения поля без учёта регистра.
func (r *MarketRepository) Search(ctx context.Context, field value.SearchField, prefix string) ([]entity.Market, error) {
	column, ok := searchColumns[field]
	if !ok {
		return nil, domain.Errorf(errcodes.ValidationFailure, "unknown search field %q", field)
	}

	query := r.db.Rebind(`SELECT ` + marketColumns + ` FROM markets
		WHERE LOWER(` + column + `) LIKE ? ESCAPE '\'
		ORDER BY id`)
	pattern := likeEscaper.Replace(strings.ToLower(prefix)) + "%"

	var schemas []marketSchema
	if err := r.db.SelectContext(ctx, &schemas, query, pattern); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to search markets")
	}

	if len(schemas) == 0 {
		return []entity.Market{}, nil
	}

	ids := make([]int64, 0, len(schemas))
	for _, s := range schemas {
		ids = append(ids, s.ID)
	}

	goods, err := r.goods(ctx, ids)
	if err != nil {
		return nil, err
	}

	return withGoods(schemas, goods), nil
}

func (r *MarketRepository) GetByID(ctx context.Context, id int64) (entity.Market, error) {
	query := r.db.Rebind(`SELECT ` + marketColumns + ` FROM markets WHERE id = ?`)

	var schema marketSchema
	if err := r.db.GetContext(ctx, &schema, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Market{}, domain.Errorf(errcodes.EntityNotFound, "market %d not found", id)
		}
		return entity.Market{}, domain.WrapError(err, errcodes.InternalServerError, "failed to get market")
	}

	goods, err := r.goods(ctx, []int64{id})
	if err != nil {
		return entity.Market{}, err
	}

	return withGoods([]marketSchema{schema}, goods)[0], nil
}

// Neighbours возвращает соседние по алфавиту рынки. У крайних nil.
func (r *MarketRepository) Neighbours(ctx context.Context, name string) (previous, next *int64, err error) {
	previous, err = r.neighbour(ctx, `SELECT id FROM markets WHERE name < ? ORDER BY name DESC, id DESC LIMIT 1`, name)
	if err != nil {
		return nil, nil, err
	}

	next, err = r.neighbour(ctx, `SELECT id FROM markets WHERE name > ? ORDER BY name ASC, id ASC LIMIT 1`, name)
	if err != nil {
		return nil, nil, err
	}

	return previous, next, nil
}

func (r *MarketRepository) neighbour(ctx context.Context, query, name string) (*int64, error) {
	var id int64
	if err := r.db.GetContext(ctx, &id, r.db.Rebind(query), name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to get neighbour market")
	}
	return &id, nil
}

// Upsert сохраняет рынки импорта и заменяет их списки товаров.
func (r *MarketRepository) Upsert(ctx context.Context, markets []entity.Market) error {
	if len(markets) == 0 {
		return nil
	}

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for _, m := range markets {
			if err := r.upsertTx(ctx, tx, m); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *MarketRepository) upsertTx(ctx context.Context, tx *sqlx.Tx, m entity.Market) error {
	query := `
		INSERT INTO markets (` + marketColumns + `)
		VALUES (:id, :name, :street, :city, :county, :state, :zip, :website, :facebook, :other_media, :lat, :lon)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			street = excluded.street,
			city = excluded.city,
			county = excluded.county,
			state = excluded.state,
			zip = excluded.zip,
			website = excluded.website,
			facebook = excluded.facebook,
			other_media = excluded.other_media,
			lat = excluded.lat,
			lon = excluded.lon`

	if _, err := tx.NamedExecContext(ctx, query, fromMarket(m)); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to upsert market")
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM market_goods WHERE market_id = ?`), m.ID); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to clear goods")
	}

	for _, g := range m.Goods {
		_, err := tx.ExecContext(ctx,
			tx.Rebind(`INSERT INTO market_goods (market_id, good) VALUES (?, ?) ON CONFLICT DO NOTHING`),
			m.ID, g,
		)
		if err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to insert good")
		}
	}

	return nil
}

func (r *MarketRepository) goods(ctx context.Context, ids []int64) ([]goodSchema, error) {
	query, args, err := sqlx.In(`SELECT market_id, good FROM market_goods WHERE market_id IN (?) ORDER BY market_id, good`, ids)
	if err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to build query")
	}

	var goods []goodSchema
	if err := r.db.SelectContext(ctx, &goods, r.db.Rebind(query), args...); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to get goods")
	}

	return goods, nil
}

func withGoods(schemas []marketSchema, goods []goodSchema) []entity.Market {
	byMarket := make(map[int64][]string, len(schemas))
	for _, g := range goods {
		byMarket[g.MarketID] = append(byMarket[g.MarketID], g.Good)
	}

	markets := make([]entity.Market, 0, len(schemas))
	for _, s := range schemas {
		markets = append(markets, s.toDomain(byMarket[s.ID]))
	}

	return markets
}
