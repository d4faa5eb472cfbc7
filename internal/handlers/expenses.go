package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"transitionos/internal/models"

	"github.com/go-chi/chi/v5"
)

var expenseCategories = []string{
	"Food", "Transport", "Housing", "Utilities", "Entertainment", "Travel", "Other",
}

var expenseCurrencies = []string{"RON", "EUR", "USD", "VND"}

// maxReceiptSize bounds multipart receipt uploads.
const maxReceiptSize = 10 << 20

// ListViewModel is the data passed to the expense list template.
type ListViewModel struct {
	User *models.User
	// TotalBase is the sum of all expenses converted to the base currency.
	TotalBase float64
	Expenses  []models.Expense
}

// ListExpenses renders all of the user's expenses, newest date first.
func (h *Handlers) ListExpenses(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	expenses, err := h.db.ListExpenses(user.ID)
	if err != nil {
		h.log.Errorw("list expenses", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var total float64
	for _, e := range expenses {
		total += e.AmountInBase()
	}

	h.render(w, "expenses.html", ListViewModel{User: user, TotalBase: total, Expenses: expenses})
}

// FormViewModel is the data passed to the create/edit form template.
type FormViewModel struct {
	User          *models.User
	Expense       *models.Expense
	IsEdit        bool
	FormattedDate string
	Categories    []string
	Currencies    []string
}

// CreateExpenseForm renders the form to create a new expense.
func (h *Handlers) CreateExpenseForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, "expense_form.html", FormViewModel{
		User:          GetUserFromContext(r),
		FormattedDate: time.Now().Format("2006-01-02"),
		Categories:    expenseCategories,
		Currencies:    expenseCurrencies,
	})
}

// EditExpenseForm renders the form to edit an existing expense.
func (h *Handlers) EditExpenseForm(w http.ResponseWriter, r *http.Request) {
	expense, ok := h.ownedExpense(w, r)
	if !ok {
		return
	}
	h.render(w, "expense_form.html", FormViewModel{
		User:          GetUserFromContext(r),
		Expense:       expense,
		IsEdit:        true,
		FormattedDate: expense.Date.Format("2006-01-02"),
		Categories:    expenseCategories,
		Currencies:    expenseCurrencies,
	})
}

// CreateExpense handles the creation of a new expense.
func (h *Handlers) CreateExpense(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	expense, err := h.parseExpenseForm(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	expense.UserID = user.ID

	if err := h.db.CreateExpense(expense); err != nil {
		h.log.Errorw("create expense", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/expenses/", http.StatusFound)
}

// UpdateExpense handles the update of an existing expense.
func (h *Handlers) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.ownedExpense(w, r)
	if !ok {
		return
	}

	expense, err := h.parseExpenseForm(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	expense.ID = existing.ID
	expense.UserID = existing.UserID
	if expense.ReceiptPath == "" {
		expense.ReceiptPath = existing.ReceiptPath
	}

	if err := h.db.UpdateExpense(expense); err != nil {
		h.log.Errorw("update expense", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/expenses/", http.StatusFound)
}

// DeleteExpense removes one of the user's expenses.
func (h *Handlers) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	expense, ok := h.ownedExpense(w, r)
	if !ok {
		return
	}

	if err := h.db.DeleteExpense(expense.ID); err != nil {
		h.log.Errorw("delete expense", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/expenses/", http.StatusFound)
}

// ownedExpense loads the expense from the URL and verifies the authenticated
// user owns it. Responds 404 otherwise, hiding other users' expense IDs.
func (h *Handlers) ownedExpense(w http.ResponseWriter, r *http.Request) (*models.Expense, bool) {
	user := GetUserFromContext(r)
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	expense, err := h.db.GetExpense(id)
	if err != nil || expense.UserID != user.ID {
		http.Error(w, "Expense not found", http.StatusNotFound)
		return nil, false
	}
	return expense, true
}

func (h *Handlers) parseExpenseForm(r *http.Request) (*models.Expense, error) {
	if err := r.ParseMultipartForm(maxReceiptSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, err
	}

	amount, err := strconv.ParseFloat(r.FormValue("amount"), 64)
	if err != nil {
		return nil, errors.New("amount is required")
	}

	dateStr := r.FormValue("date")
	if dateStr == "" {
		return nil, errors.New("date is required")
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, err
	}

	category := r.FormValue("category")
	if category == "" {
		category = "Other"
	}

	receiptPath, err := h.saveReceipt(r)
	if err != nil {
		return nil, err
	}

	return &models.Expense{
		Date:        date,
		Amount:      amount,
		Currency:    r.FormValue("currency"),
		Category:    category,
		Vendor:      r.FormValue("vendor"),
		Notes:       r.FormValue("notes"),
		ReceiptPath: receiptPath,
	}, nil
}

// saveReceipt stores an uploaded receipt image under the upload directory and
// returns its path. Returns an empty path when no file was uploaded.
func (h *Handlers) saveReceipt(r *http.Request) (string, error) {
	if r.MultipartForm == nil {
		return "", nil
	}

	file, header, err := r.FormFile("receipt")
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer file.Close()

	name := fmt.Sprintf("%d_%s", time.Now().UnixNano(), filepath.Base(header.Filename))
	path := filepath.Join(h.uploadDir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", err
	}
	return path, nil
}
