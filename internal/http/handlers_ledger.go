package http

import (
	"net/http"

	"budgeting/internal/amqp"
	"budgeting/internal/auth"
	"budgeting/internal/core"
	applog "budgeting/internal/log"
)

type incomeForm struct {
	Error     string
	Source    string
	Amount    string
	Frequency string
}

type expenseForm struct {
	Error            string
	Category         string
	SpendingCategory string
	Amount           string
	Frequency        string
}

type dashboardRow struct {
	Source           string
	Category         string
	SpendingCategory string
	Amount           string
	Frequency        string
}

// currentUser reads the identity the authorization gate injected. The gate
// runs on every route in this file, so a missing id is a programming error.
func currentUser(r *http.Request) int64 {
	id, ok := auth.UserID(r.Context())
	if !ok {
		panic("handler reached without authenticated user")
	}
	return id
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)

	incomes, err := s.ledger.ListIncomes(r.Context(), userID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "List incomes failed",
			applog.FieldError, err, applog.FieldUserID, userID, applog.FieldOperation, applog.OpList)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	expenses, err := s.ledger.ListExpenses(r.Context(), userID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "List expenses failed",
			applog.FieldError, err, applog.FieldUserID, userID, applog.FieldOperation, applog.OpList)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	data := struct {
		Incomes  []dashboardRow
		Expenses []dashboardRow
	}{}
	for _, e := range incomes {
		data.Incomes = append(data.Incomes, dashboardRow{
			Source:    e.Source,
			Amount:    core.FormatCents(e.Amount.Cents),
			Frequency: e.Frequency,
		})
	}
	for _, e := range expenses {
		data.Expenses = append(data.Expenses, dashboardRow{
			Category:         e.Category,
			SpendingCategory: e.SpendingCategory,
			Amount:           core.FormatCents(e.Amount.Cents),
			Frequency:        e.Frequency,
		})
	}

	s.render(w, r, "dashboard.html", data)
}

func (s *Server) handleAddIncomeForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "add_income.html", incomeForm{})
}

func (s *Server) handleAddIncome(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)

	if err := r.ParseForm(); err != nil {
		s.logger.ErrorContext(r.Context(), "Parse form error", applog.FieldError, err, applog.FieldPath, r.URL.Path)
		s.render(w, r, "add_income.html", incomeForm{Error: "Invalid request."})
		return
	}

	form := incomeForm{
		Source:    sanitizeInput(r.PostForm.Get("source")),
		Amount:    sanitizeInput(r.PostForm.Get("amount")),
		Frequency: sanitizeInput(r.PostForm.Get("frequency")),
	}

	cents, err := core.ParseDecimalToCents(form.Amount)
	if err != nil {
		form.Error = "Amount must be a positive number."
		s.render(w, r, "add_income.html", form)
		return
	}

	entry := core.IncomeEntry{
		UserID:    userID,
		Source:    form.Source,
		Amount:    core.Money{Cents: cents},
		Frequency: form.Frequency,
	}
	if err := entry.Validate(); err != nil {
		form.Error = "All fields are required: " + err.Error() + "."
		s.render(w, r, "add_income.html", form)
		return
	}

	id, err := s.ledger.CreateIncome(r.Context(), entry)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Create income failed",
			applog.FieldError, err, applog.FieldUserID, userID, applog.FieldOperation, applog.OpCreate)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.publishEntry(r, amqp.NewEntryEvent(amqp.KindIncome, id, userID, cents))
	s.logger.InfoContext(r.Context(), "Income created",
		applog.FieldIncomeID, id,
		applog.FieldUserID, userID,
		applog.FieldAmountCents, cents,
		applog.FieldFrequency, entry.Frequency)
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func (s *Server) handleAddExpenseForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "add_expense.html", expenseForm{})
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)

	if err := r.ParseForm(); err != nil {
		s.logger.ErrorContext(r.Context(), "Parse form error", applog.FieldError, err, applog.FieldPath, r.URL.Path)
		s.render(w, r, "add_expense.html", expenseForm{Error: "Invalid request."})
		return
	}

	form := expenseForm{
		Category:         sanitizeInput(r.PostForm.Get("category")),
		SpendingCategory: sanitizeInput(r.PostForm.Get("spending_category")),
		Amount:           sanitizeInput(r.PostForm.Get("amount")),
		Frequency:        sanitizeInput(r.PostForm.Get("frequency")),
	}

	cents, err := core.ParseDecimalToCents(form.Amount)
	if err != nil {
		form.Error = "Amount must be a positive number."
		s.render(w, r, "add_expense.html", form)
		return
	}

	entry := core.ExpenseEntry{
		UserID:           userID,
		Category:         form.Category,
		SpendingCategory: form.SpendingCategory,
		Amount:           core.Money{Cents: cents},
		Frequency:        form.Frequency,
	}
	if err := entry.Validate(); err != nil {
		form.Error = "All fields are required: " + err.Error() + "."
		s.render(w, r, "add_expense.html", form)
		return
	}

	id, err := s.ledger.CreateExpense(r.Context(), entry)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Create expense failed",
			applog.FieldError, err, applog.FieldUserID, userID, applog.FieldOperation, applog.OpCreate)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.publishEntry(r, amqp.NewEntryEvent(amqp.KindExpense, id, userID, cents))
	s.logger.InfoContext(r.Context(), "Expense created",
		applog.FieldExpenseID, id,
		applog.FieldUserID, userID,
		applog.FieldAmountCents, cents,
		applog.FieldFrequency, entry.Frequency)
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// publishEntry emits a ledger event; failures are logged and never surface
// to the user, the row is already committed.
func (s *Server) publishEntry(r *http.Request, event amqp.EntryEvent) {
	if err := s.events.PublishEntryCreated(r.Context(), event); err != nil {
		s.logger.WarnContext(r.Context(), "Entry event publish failed",
			applog.FieldError, err, "kind", event.Kind, "id", event.ID)
	}
}
