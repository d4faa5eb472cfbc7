package handlers

import (
	"database/sql"
	"errors"
	"math"
	"net/http"
	"time"

	"transitionos/internal/models"
)

// Transition planning constants. These are business facts of the plan being
// tracked, not deployment configuration.
const (
	// defaultSavingsTarget is assumed when no Financial goal exists yet.
	defaultSavingsTarget = 5500
	// defaultFreelanceTarget is assumed when no Career goal exists yet.
	defaultFreelanceTarget = 1500
	// monthlyBurn is the fixed monthly spend used for the runway estimate.
	monthlyBurn = 890
	// recentExpenseCount is how many recent expenses the dashboard shows.
	recentExpenseCount = 10
)

// relocationDate is the planned relocation day the countdown targets.
var relocationDate = time.Date(2026, time.October, 31, 0, 0, 0, 0, time.UTC)

// DashboardViewModel is the data passed to the dashboard template.
type DashboardViewModel struct {
	User *models.User

	SavingsCurrent float64
	SavingsTarget  float64
	SavingsPercent float64

	FreelanceCurrent float64
	FreelanceTarget  float64
	FreelancePercent float64

	DaysToRelocation int
	RunwayMonths     float64

	RecentExpenses []models.Expense
}

// Dashboard renders the master dashboard for the authenticated user.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	financial, err := h.goalByCategory(user.ID, models.GoalCategoryFinancial)
	if err != nil {
		h.log.Errorw("dashboard financial goal lookup", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	career, err := h.goalByCategory(user.ID, models.GoalCategoryCareer)
	if err != nil {
		h.log.Errorw("dashboard career goal lookup", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	recent, err := h.db.RecentExpenses(user.ID, recentExpenseCount)
	if err != nil {
		h.log.Errorw("dashboard recent expenses", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	vm := buildDashboard(financial, career, recent, time.Now())
	vm.User = user
	h.render(w, "dashboard.html", vm)
}

// goalByCategory returns nil without error when no goal exists in the
// category; the dashboard substitutes defaults in that case.
func (h *Handlers) goalByCategory(userID int64, category string) (*models.Goal, error) {
	goal, err := h.db.GoalByCategory(userID, category)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return goal, err
}

// buildDashboard computes the dashboard metrics from the user's goals and
// recent expenses. Missing goals fall back to zero progress against the
// default targets.
func buildDashboard(financial, career *models.Goal, recent []models.Expense, now time.Time) DashboardViewModel {
	vm := DashboardViewModel{
		SavingsTarget:   defaultSavingsTarget,
		FreelanceTarget: defaultFreelanceTarget,
		RecentExpenses:  recent,
	}

	if financial != nil {
		vm.SavingsCurrent = financial.CurrentValue
		vm.SavingsTarget = financial.TargetValue
	}
	if career != nil {
		vm.FreelanceCurrent = career.CurrentValue
		vm.FreelanceTarget = career.TargetValue
	}

	vm.SavingsPercent = percentOf(vm.SavingsCurrent, vm.SavingsTarget)
	vm.FreelancePercent = percentOf(vm.FreelanceCurrent, vm.FreelanceTarget)

	vm.DaysToRelocation = daysUntil(now, relocationDate)
	vm.RunwayMonths = round1(vm.SavingsCurrent / monthlyBurn)

	return vm
}

func percentOf(current, target float64) float64 {
	if target == 0 {
		return 0
	}
	return round1(current / target * 100)
}

func daysUntil(now, target time.Time) int {
	now = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	days := int(target.Sub(now).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
