package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/lanterngame/internal/api/apierr"
	"github.com/mcoot/lanterngame/internal/logger"
	"github.com/mcoot/lanterngame/internal/model"
)

// PlayerResolver maps a bearer token to the player it was issued to
type PlayerResolver interface {
	GetPlayer(token string) (*model.Player, error)
}

type playerContextKey struct{}

// Auth rejects requests without a valid bearer token. The calling player is
// stored in the context and tagged onto the request logger.
func Auth(players PlayerResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			player, err := players.GetPlayer(token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(withPlayer(r, player)))
		})
	}
}

// OptionalAuth attaches the player when a valid bearer token is sent.
// Missing or stale tokens fall through as anonymous.
func OptionalAuth(players PlayerResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := bearerToken(r); token != "" {
				if player, err := players.GetPlayer(token); err == nil {
					r = r.WithContext(withPlayer(r, player))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func withPlayer(r *http.Request, player *model.Player) context.Context {
	ctx := context.WithValue(r.Context(), playerContextKey{}, player)
	return logger.FromRequest(r).WithStr("player_id", string(player.ID)).WithContext(ctx)
}

func bearerToken(r *http.Request) string {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// Player returns the calling player, or nil when the request is anonymous
func Player(ctx context.Context) *model.Player {
	player, _ := ctx.Value(playerContextKey{}).(*model.Player)
	return player
}

// MustPlayer returns the calling player. Only valid behind Auth.
func MustPlayer(ctx context.Context) *model.Player {
	player := Player(ctx)
	if player == nil {
		panic("middleware: no player in context, route is missing Auth")
	}
	return player
}

// Owner is the ID hack sessions, missions and wallets are keyed by
func Owner(ctx context.Context) model.PlayerID {
	return MustPlayer(ctx).ID
}
