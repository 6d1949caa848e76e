package session

import "time"

// Summary is a best-effort observability snapshot of one session.
type Summary struct {
	SessionID    string         `json:"session_id"`
	IsActive     bool           `json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	LastActivity time.Time      `json:"last_activity"`
	BotConnected bool           `json:"bot_connected"`
	BotUsername  string         `json:"bot_username,omitempty"`
	BotID        string         `json:"bot_id,omitempty"`
	BotActivity  map[string]any `json:"bot_activity,omitempty"`
	GuildCount   int            `json:"guild_count"`
	Error        string         `json:"error,omitempty"`
}

// ListSummaries snapshots every session for observability. A single
// session's introspection failure degrades that entry to an error marker
// rather than aborting the listing.
func (r *Registry) ListSummaries() []Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Summary, 0, len(r.sessions))
	for _, sess := range r.sessions {
		out = append(out, summarize(sess))
	}
	return out
}

func summarize(sess *Session) (s Summary) {
	s = Summary{
		SessionID:    sess.ID,
		CreatedAt:    sess.CreatedAt,
		LastActivity: sess.LastActivity,
	}

	// Connection introspection reads vendor state; keep one bad session
	// from poisoning the whole listing.
	defer func() {
		if recover() != nil {
			s = Summary{
				SessionID:    sess.ID,
				CreatedAt:    sess.CreatedAt,
				LastActivity: sess.LastActivity,
				Error:        "failed to read session state",
			}
		}
	}()

	s.IsActive = sess.Active()
	if sess.Client == nil {
		return s
	}

	if user := sess.Client.User(); user != nil {
		s.BotConnected = true
		s.BotUsername = user.Username
		s.BotID = user.ID
	}
	if activity, status := sess.Client.Presence(); activity != "" || status != "" {
		s.BotActivity = map[string]any{"name": activity, "status": status}
	}
	s.GuildCount = sess.Client.GuildCount()
	return s
}
