package http

import (
	"context"
	"net/http"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

type contextKey string

const sellerIDKey contextKey = "seller_id"

// SellerContext достаёт идентификатор продавца из заголовка X-Seller-ID.
// Это ключ изоляции арендаторов: все продавцовые запросы идут через него.
func SellerContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("X-Seller-ID")
		if header == "" {
			respondWithError(w, http.StatusBadRequest, "X-Seller-ID header is required")
			return
		}

		sellerID, err := uuid.FromString(header)
		if err != nil {
			log.Warn().Err(err).Str("header", header).Msg("Failed to parse X-Seller-ID header")
			respondWithError(w, http.StatusBadRequest, "invalid X-Seller-ID header")
			return
		}

		ctx := context.WithValue(r.Context(), sellerIDKey, sellerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sellerIDFromContext(ctx context.Context) uuid.UUID {
	sellerID, _ := ctx.Value(sellerIDKey).(uuid.UUID)
	return sellerID
}
