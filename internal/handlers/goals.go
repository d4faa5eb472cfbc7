package handlers

import (
	"net/http"
	"time"

	"transitionos/internal/models"
)

// GoalItem is a goal with its derived metrics evaluated for display.
type GoalItem struct {
	models.Goal
	Progress      float64
	Remaining     float64
	DaysRemaining int
	HasDeadline   bool
	OnTrack       bool
	HasTrack      bool
}

// GoalsViewModel is the data passed to the goals template.
type GoalsViewModel struct {
	User  *models.User
	Goals []GoalItem
}

// ListGoals renders the user's goals with their progress metrics.
func (h *Handlers) ListGoals(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	goals, err := h.db.ListGoals(user.ID)
	if err != nil {
		h.log.Errorw("list goals", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	items := make([]GoalItem, 0, len(goals))
	for _, g := range goals {
		item := GoalItem{
			Goal:      g,
			Progress:  g.ProgressPercent(),
			Remaining: g.RemainingValue(),
		}
		item.DaysRemaining, item.HasDeadline = g.DaysRemainingAt(now)
		item.OnTrack, item.HasTrack = g.OnTrackAt(now)
		items = append(items, item)
	}

	h.render(w, "goals.html", GoalsViewModel{User: user, Goals: items})
}
