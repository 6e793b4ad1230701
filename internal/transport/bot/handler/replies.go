package handler

import (
	"context"
	"fmt"
	"html"
	"strings"

	"geo_feedback/internal/domain"
	"geo_feedback/internal/domain/service/lookup"
	"geo_feedback/internal/domain/value"
	"geo_feedback/internal/transport/bot/view"
	"geo_feedback/pkg/contextx"
	"geo_feedback/pkg/errcodes"
	"geo_feedback/pkg/logx"
)

// Ответы строятся отдельно от отправки, чтобы их можно было проверить без Telegram.

// ZipReply ответ на /zip. found означает, что индекс есть в справочнике.
func (h *Handler) ZipReply(ctx context.Context, args []string) (text string, found bool) {
	if len(args) == 0 {
		return view.ZipUsage, false
	}

	code := strings.Join(args, "")

	address, err := h.postal.Lookup(code)
	switch {
	case err == nil:
	case domain.HasCode(err, errcodes.InvalidCodeFormat):
		return view.InvalidCode, false
	case domain.HasCode(err, errcodes.EntityNotFound):
		return view.AddressNotFound, false
	default:
		logError(ctx, "postal lookup failed", err)
		return view.InternalError, false
	}

	return fmt.Sprintf(view.AddressTemplate,
		address.Zone.Code,
		html.EscapeString(address.Zone.County),
		html.EscapeString(address.Zone.Area),
		html.EscapeString(address.Zone.Street),
		address.Location,
	), true
}

func (h *Handler) AreaReply(_ context.Context, args []string) string {
	if len(args) == 0 {
		return view.AreaUsage
	}

	area := lookup.DisplayArea(strings.Join(args, " "))

	codes := h.postal.ByArea(area)
	if len(codes) == 0 {
		return fmt.Sprintf(view.AreaNotFoundTemplate, html.EscapeString(area))
	}

	return fmt.Sprintf(view.AreaCodesTemplate, html.EscapeString(area), strings.Join(codes, ", "))
}

func (h *Handler) DistanceReply(ctx context.Context, args []string) string {
	if len(args) != 2 {
		return view.DistanceUsage
	}

	from, to := html.EscapeString(args[0]), html.EscapeString(args[1])

	distance, err := h.postal.Distance(args[0], args[1])
	if err != nil {
		if _, ok := domain.GetCode(err); !ok {
			logError(ctx, "postal distance failed", err)
		}
		return fmt.Sprintf(view.DistanceFailed, from, to)
	}

	return fmt.Sprintf(view.DistanceTemplate, from, to, distance)
}

func (h *Handler) NearbyReply(ctx context.Context, code string) string {
	nearby, err := h.postal.Nearby(code, nearbyRadiusMiles, value.SortNameAsc)
	if err != nil {
		if domain.HasCode(err, errcodes.EntityNotFound) || domain.HasCode(err, errcodes.InvalidCodeFormat) {
			return view.AddressNotFound
		}
		logError(ctx, "postal nearby failed", err)
		return view.InternalError
	}

	if len(nearby) == 0 {
		return view.NearbyEmpty
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(view.NearbyTemplate, float64(nearbyRadiusMiles), html.EscapeString(code)))

	for _, n := range nearby {
		sb.WriteString(fmt.Sprintf(view.NearbyItemTemplate, n.Entity.ID, html.EscapeString(n.Entity.Street), n.DistanceKm))
	}

	return sb.String()
}

func logError(ctx context.Context, msg string, err error) {
	chatID, _ := contextx.ChatIDFromContext(ctx)
	logger(ctx).Error(msg, logx.FieldChatID, chatID.Int64(), logx.Error(err))
}
