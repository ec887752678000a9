package expenses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"splitmate/internal/ledger"
	"splitmate/internal/models"
	"splitmate/internal/repositories/sqlconnect"
	"splitmate/pkg/utils"
)

func callerID(r *http.Request) (int, bool) {
	idFloat, ok := r.Context().Value(utils.ContextKey("userId")).(float64)
	if !ok {
		return 0, false
	}
	return int(idFloat), true
}

func splitToMap(s models.Split) map[string]interface{} {
	return map[string]interface{}{
		"id":          s.ID,
		"expense_id":  s.ExpenseID,
		"debtor_id":   s.DebtorID,
		"creditor_id": s.CreditorID,
		"amount":      s.Amount.StringFixed(2),
		"settled":     s.Settled,
	}
}

// FUNC TO CREATE AN EXPENSE AND ITS EQUAL SPLITS
func CreateExpenseHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	userID, ok := callerID(r)
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	type request struct {
		GroupID        int             `json:"group_id"`
		Amount         decimal.Decimal `json:"amount"`
		Description    string          `json:"description"`
		Category       string          `json:"category"`
		Date           string          `json:"date"`
		PaidBy         int             `json:"paid_by"`
		ParticipantIds []int           `json:"participant_ids"`
	}

	var req request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	req.Description = strings.TrimSpace(req.Description)
	if req.GroupID <= 0 {
		utils.WriteError(w, "group_id is required", http.StatusBadRequest)
		return
	}
	if req.Description == "" {
		utils.WriteError(w, "description is required", http.StatusBadRequest)
		return
	}
	if len(req.Description) > 255 {
		utils.WriteError(w, "description too long", http.StatusBadRequest)
		return
	}
	if req.Category == "" {
		req.Category = "OTHER"
	}
	if !models.ExpenseCategories[req.Category] {
		utils.WriteError(w, "invalid expense category", http.StatusBadRequest)
		return
	}
	if len(req.ParticipantIds) == 0 {
		utils.WriteError(w, "at least one participant is required", http.StatusBadRequest)
		return
	}

	// The payer defaults to the caller.
	if req.PaidBy == 0 {
		req.PaidBy = userID
	}

	expenseDate := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			utils.WriteError(w, "invalid date, expected RFC3339", http.StatusBadRequest)
			return
		}
		expenseDate = parsed
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var callerRole string
	err := db.QueryRowContext(ctx,
		"SELECT role FROM group_members WHERE group_id = ? AND user_id = ?",
		req.GroupID, userID).Scan(&callerRole)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "you are not a member of this group", http.StatusForbidden)
			return
		}
		utils.Logger.Errorf("failed to check membership: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	// The payer and every participant must belong to the group.
	toCheck := map[int]bool{req.PaidBy: true}
	for _, id := range req.ParticipantIds {
		toCheck[id] = true
	}
	for id := range toCheck {
		var one int
		err := db.QueryRowContext(ctx,
			"SELECT 1 FROM group_members WHERE group_id = ? AND user_id = ?",
			req.GroupID, id).Scan(&one)
		if err == sql.ErrNoRows {
			utils.WriteError(w, "payer and all participants must be group members", http.StatusBadRequest)
			return
		}
		if err != nil {
			utils.Logger.Errorf("failed to verify participant: %v", err)
			utils.WriteError(w, "internal server error", http.StatusInternalServerError)
			return
		}
	}

	splits, err := ledger.SplitEqually(req.Amount, req.PaidBy, req.ParticipantIds)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrNonPositiveAmount):
			utils.WriteError(w, "amount must be greater than zero", http.StatusBadRequest)
		case errors.Is(err, ledger.ErrSubCentAmount):
			utils.WriteError(w, "amount cannot have more than two decimal places", http.StatusBadRequest)
		case errors.Is(err, ledger.ErrNoParticipants):
			utils.WriteError(w, "at least one participant is required", http.StatusBadRequest)
		case errors.Is(err, ledger.ErrDuplicateParticipant):
			utils.WriteError(w, "duplicate participant", http.StatusBadRequest)
		default:
			utils.WriteError(w, "failed to split expense", http.StatusBadRequest)
		}
		return
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		utils.Logger.Errorf("failed to start transaction: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO expenses (group_id, paid_by, amount, description, category, date) VALUES (?, ?, ?, ?, ?, ?)",
		req.GroupID, req.PaidBy, req.Amount.StringFixed(2), req.Description, req.Category, expenseDate)
	if err != nil {
		tx.Rollback()
		utils.Logger.Errorf("failed to create expense: %v", err)
		utils.WriteError(w, "failed to create expense", http.StatusInternalServerError)
		return
	}
	expenseID, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		utils.Logger.Errorf("failed to get last inserted ID: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	created := []models.Split{}
	for _, s := range splits {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO splits (expense_id, debtor_id, creditor_id, amount, settled) VALUES (?, ?, ?, ?, FALSE)",
			expenseID, s.DebtorID, s.CreditorID, s.Amount.StringFixed(2))
		if err != nil {
			tx.Rollback()
			utils.Logger.Errorf("failed to create split: %v", err)
			utils.WriteError(w, "failed to create expense", http.StatusInternalServerError)
			return
		}
		splitID, _ := res.LastInsertId()
		created = append(created, models.Split{
			ID:         int(splitID),
			ExpenseID:  int(expenseID),
			DebtorID:   s.DebtorID,
			CreditorID: s.CreditorID,
			Amount:     s.Amount,
		})
	}

	if err = tx.Commit(); err != nil {
		tx.Rollback()
		utils.Logger.Errorf("failed to commit transaction: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	splitData := make([]map[string]interface{}, 0, len(created))
	for _, s := range created {
		splitData = append(splitData, splitToMap(s))
	}

	utils.WriteJSONStatus(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "expense created successfully",
		"data": map[string]interface{}{
			"id":          expenseID,
			"group_id":    req.GroupID,
			"paid_by":     req.PaidBy,
			"amount":      req.Amount.StringFixed(2),
			"description": req.Description,
			"category":    req.Category,
			"date":        expenseDate.Format(time.RFC3339),
			"splits":      splitData,
		},
	})
}

// scanExpenses reads expense rows with their splits attached.
func scanExpenses(ctx context.Context, db *sql.DB, query string, args ...interface{}) ([]map[string]interface{}, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := []map[string]interface{}{}
	ids := []int{}
	for rows.Next() {
		var e models.Expense
		var payerName sql.NullString
		if err := rows.Scan(&e.ID, &e.GroupID, &e.PaidBy, &e.Amount, &e.Description, &e.Category, &e.Date, &payerName); err != nil {
			return nil, err
		}
		expenses = append(expenses, map[string]interface{}{
			"id":          e.ID,
			"group_id":    e.GroupID,
			"paid_by":     e.PaidBy,
			"payer_name":  payerName.String,
			"amount":      e.Amount.StringFixed(2),
			"description": e.Description,
			"category":    e.Category,
			"date":        e.Date.String,
			"splits":      []map[string]interface{}{},
		})
		ids = append(ids, e.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return expenses, nil
	}

	byID := map[int]int{}
	placeholders := make([]string, len(ids))
	splitArgs := make([]interface{}, len(ids))
	for i, id := range ids {
		byID[id] = i
		placeholders[i] = "?"
		splitArgs[i] = id
	}

	splitRows, err := db.QueryContext(ctx,
		"SELECT id, expense_id, debtor_id, creditor_id, amount, settled FROM splits WHERE expense_id IN ("+
			strings.Join(placeholders, ",")+") ORDER BY id", splitArgs...)
	if err != nil {
		return nil, err
	}
	defer splitRows.Close()

	for splitRows.Next() {
		var s models.Split
		if err := splitRows.Scan(&s.ID, &s.ExpenseID, &s.DebtorID, &s.CreditorID, &s.Amount, &s.Settled); err != nil {
			return nil, err
		}
		i := byID[s.ExpenseID]
		expenses[i]["splits"] = append(expenses[i]["splits"].([]map[string]interface{}), splitToMap(s))
	}
	return expenses, splitRows.Err()
}

// FUNC TO GET ALL EXPENSES VISIBLE TO THE LOGGED-IN USER
func GetUserExpensesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	userID, ok := callerID(r)
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	expenses, err := scanExpenses(ctx, db, `
		SELECT e.id, e.group_id, e.paid_by, e.amount, e.description, e.category, e.date, u.name
		FROM expenses e
		JOIN group_members gm ON gm.group_id = e.group_id AND gm.user_id = ?
		JOIN users u ON u.id = e.paid_by
		ORDER BY e.date DESC, e.id DESC`, userID)
	if err != nil {
		utils.Logger.Errorf("failed to fetch expenses: %v", err)
		utils.WriteError(w, "failed to retrieve expenses", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"count":  len(expenses),
		"data":   expenses,
	})
}

// FUNC TO GET ONE EXPENSE WITH ITS SPLITS
func GetExpenseByIdHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	idStr := r.PathValue("id")
	expenseID, err := strconv.Atoi(idStr)
	if err != nil {
		utils.WriteError(w, "invalid expense ID", http.StatusBadRequest)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	userID, ok := callerID(r)
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var groupID int
	err = db.QueryRowContext(ctx, "SELECT group_id FROM expenses WHERE id = ?", expenseID).Scan(&groupID)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "expense not found", http.StatusNotFound)
			return
		}
		utils.Logger.Errorf("failed to fetch expense: %v", err)
		utils.WriteError(w, "failed to retrieve expense", http.StatusInternalServerError)
		return
	}

	var one int
	err = db.QueryRowContext(ctx,
		"SELECT 1 FROM group_members WHERE group_id = ? AND user_id = ?", groupID, userID).Scan(&one)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "you are not a member of this group", http.StatusForbidden)
			return
		}
		utils.Logger.Errorf("failed to check membership: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	expenses, err := scanExpenses(ctx, db, `
		SELECT e.id, e.group_id, e.paid_by, e.amount, e.description, e.category, e.date, u.name
		FROM expenses e
		JOIN users u ON u.id = e.paid_by
		WHERE e.id = ?`, expenseID)
	if err != nil || len(expenses) == 0 {
		utils.Logger.Errorf("failed to fetch expense: %v", err)
		utils.WriteError(w, "failed to retrieve expense", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"data":   expenses[0],
	})
}

// FUNC TO GET ALL EXPENSES OF A GROUP
func GetGroupExpensesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	idStr := r.PathValue("id")
	groupID, err := strconv.Atoi(idStr)
	if err != nil {
		utils.WriteError(w, "invalid group ID", http.StatusBadRequest)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	userID, ok := callerID(r)
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var one int
	err = db.QueryRowContext(ctx,
		"SELECT 1 FROM group_members WHERE group_id = ? AND user_id = ?", groupID, userID).Scan(&one)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "you are not a member of this group", http.StatusForbidden)
			return
		}
		utils.Logger.Errorf("failed to check membership: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	expenses, err := scanExpenses(ctx, db, `
		SELECT e.id, e.group_id, e.paid_by, e.amount, e.description, e.category, e.date, u.name
		FROM expenses e
		JOIN users u ON u.id = e.paid_by
		WHERE e.group_id = ?
		ORDER BY e.date DESC, e.id DESC`, groupID)
	if err != nil {
		utils.Logger.Errorf("failed to fetch group expenses: %v", err)
		utils.WriteError(w, "failed to retrieve expenses", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"count":  len(expenses),
		"data":   expenses,
	})
}

// FUNC TO DELETE AN EXPENSE AND ITS SPLITS
func DeleteExpenseHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	idStr := r.PathValue("id")
	expenseID, err := strconv.Atoi(idStr)
	if err != nil {
		utils.WriteError(w, "invalid expense ID", http.StatusBadRequest)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	userID, ok := callerID(r)
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var paidBy int
	err = db.QueryRowContext(ctx, "SELECT paid_by FROM expenses WHERE id = ?", expenseID).Scan(&paidBy)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "expense not found", http.StatusNotFound)
			return
		}
		utils.Logger.Errorf("failed to fetch expense: %v", err)
		utils.WriteError(w, "failed to delete expense", http.StatusInternalServerError)
		return
	}
	if paidBy != userID {
		utils.WriteError(w, "only the payer can delete an expense", http.StatusForbidden)
		return
	}

	// Splits cascade with the expense row.
	_, err = db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		utils.Logger.Errorf("failed to delete expense: %v", err)
		utils.WriteError(w, "failed to delete expense", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"message": "expense deleted successfully",
	})
}
