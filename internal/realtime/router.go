package realtime

import "github.com/rs/zerolog"

// Router delivers events to connected users. Delivery is best effort: an
// offline user or a full send buffer loses the event without erroring.
type Router struct {
	dir *Directory
	log zerolog.Logger
}

func NewRouter(dir *Directory, log zerolog.Logger) *Router {
	return &Router{dir: dir, log: log.With().Str("component", "realtime_router").Logger()}
}

// Notify sends one event to one user. Silent no-op when they are offline.
func (r *Router) Notify(userID, event string, payload any) {
	conn, ok := r.dir.Get(userID)
	if !ok {
		return
	}
	if !conn.Send(event, payload) {
		r.log.Debug().Str("user_id", userID).Str("event", event).Msg("event dropped")
	}
}

// Broadcast sends one event to every connected user.
func (r *Router) Broadcast(event string, payload any) {
	r.dir.Each(func(userID string, conn Conn) {
		if !conn.Send(event, payload) {
			r.log.Debug().Str("user_id", userID).Str("event", event).Msg("event dropped")
		}
	})
}
