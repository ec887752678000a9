package settlements

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"splitmate/internal/ledger"
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

// FUNC TO RECORD A SETTLEMENT
// A settlement is an append-only ledger entry. When split IDs are supplied
// they are marked settled in the same transaction; a split that is already
// settled fails the whole request.
func CreateSettlementHandler(w http.ResponseWriter, r *http.Request) {
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
		GroupID     int             `json:"group_id"`
		Amount      decimal.Decimal `json:"amount"`
		Description string          `json:"description"`
		Date        string          `json:"date"`
		SplitIds    []int           `json:"split_ids"`
	}

	var req request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.GroupID <= 0 {
		utils.WriteError(w, "group_id is required", http.StatusBadRequest)
		return
	}
	if !req.Amount.IsPositive() {
		utils.WriteError(w, "amount must be greater than zero", http.StatusBadRequest)
		return
	}
	req.Description = strings.TrimSpace(req.Description)
	if len(req.Description) > 255 {
		utils.WriteError(w, "description too long", http.StatusBadRequest)
		return
	}

	seen := map[int]bool{}
	for _, id := range req.SplitIds {
		if id <= 0 || seen[id] {
			utils.WriteError(w, "invalid split IDs", http.StatusBadRequest)
			return
		}
		seen[id] = true
	}

	settlementDate := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			utils.WriteError(w, "invalid date, expected RFC3339", http.StatusBadRequest)
			return
		}
		settlementDate = parsed
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var one int
	err := db.QueryRowContext(ctx,
		"SELECT 1 FROM group_members WHERE group_id = ? AND user_id = ?",
		req.GroupID, userID).Scan(&one)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "you are not a member of this group", http.StatusForbidden)
			return
		}
		utils.Logger.Errorf("failed to check membership: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		utils.Logger.Errorf("failed to start transaction: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	type creditor struct {
		name   sql.NullString
		email  sql.NullString
		amount decimal.Decimal
	}
	creditors := map[int]*creditor{}

	for _, splitID := range req.SplitIds {
		var groupID, debtorID, creditorID int
		var settled bool
		var amount decimal.Decimal
		var credName, credEmail sql.NullString
		err := tx.QueryRowContext(ctx, `
			SELECT e.group_id, s.debtor_id, s.creditor_id, s.settled, s.amount, u.name, u.email
			FROM splits s
			JOIN expenses e ON e.id = s.expense_id
			JOIN users u ON u.id = s.creditor_id
			WHERE s.id = ?`, splitID).
			Scan(&groupID, &debtorID, &creditorID, &settled, &amount, &credName, &credEmail)
		if err == sql.ErrNoRows {
			tx.Rollback()
			utils.WriteError(w, "one or more splits do not exist", http.StatusBadRequest)
			return
		}
		if err != nil {
			tx.Rollback()
			utils.Logger.Errorf("failed to fetch split: %v", err)
			utils.WriteError(w, "internal server error", http.StatusInternalServerError)
			return
		}
		if groupID != req.GroupID {
			tx.Rollback()
			utils.WriteError(w, "split does not belong to this group", http.StatusBadRequest)
			return
		}
		if debtorID != userID {
			tx.Rollback()
			utils.WriteError(w, "you can only settle your own splits", http.StatusForbidden)
			return
		}
		if settled {
			tx.Rollback()
			utils.WriteError(w, "one or more splits are already settled", http.StatusConflict)
			return
		}

		if c, ok := creditors[creditorID]; ok {
			c.amount = c.amount.Add(amount)
		} else {
			creditors[creditorID] = &creditor{name: credName, email: credEmail, amount: amount}
		}
	}

	// The guard catches a concurrent settlement of the same split between
	// the read above and this write.
	for _, splitID := range req.SplitIds {
		res, err := tx.ExecContext(ctx,
			"UPDATE splits SET settled = TRUE WHERE id = ? AND settled = FALSE", splitID)
		if err != nil {
			tx.Rollback()
			utils.Logger.Errorf("failed to settle split: %v", err)
			utils.WriteError(w, "failed to record settlement", http.StatusInternalServerError)
			return
		}
		if n, _ := res.RowsAffected(); n != 1 {
			tx.Rollback()
			utils.WriteError(w, "one or more splits are already settled", http.StatusConflict)
			return
		}
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO settlements (group_id, from_user, amount, description, date) VALUES (?, ?, ?, ?, ?)",
		req.GroupID, userID, req.Amount.StringFixed(2), req.Description, settlementDate)
	if err != nil {
		tx.Rollback()
		utils.Logger.Errorf("failed to record settlement: %v", err)
		utils.WriteError(w, "failed to record settlement", http.StatusInternalServerError)
		return
	}
	settlementID, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		utils.Logger.Errorf("failed to get last inserted ID: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	for _, splitID := range req.SplitIds {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO settlement_splits (settlement_id, split_id) VALUES (?, ?)",
			settlementID, splitID)
		if err != nil {
			tx.Rollback()
			utils.Logger.Errorf("failed to link settlement split: %v", err)
			utils.WriteError(w, "failed to record settlement", http.StatusInternalServerError)
			return
		}
	}

	if err = tx.Commit(); err != nil {
		tx.Rollback()
		utils.Logger.Errorf("failed to commit transaction: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var payerName, groupName string
	db.QueryRowContext(ctx, "SELECT COALESCE(name, phone) FROM users WHERE id = ?", userID).Scan(&payerName)
	db.QueryRowContext(ctx, "SELECT name FROM groups WHERE id = ?", req.GroupID).Scan(&groupName)

	for _, c := range creditors {
		if !c.email.Valid || c.email.String == "" {
			continue
		}
		go func(to, amount string) {
			if err := utils.SendPaymentReceivedEmail(to, payerName, amount, groupName, int(settlementID), settlementDate); err != nil {
				utils.Logger.Errorf("failed to send payment received email: %v", err)
			}
		}(c.email.String, c.amount.StringFixed(2))
	}

	utils.WriteJSONStatus(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "settlement recorded successfully",
		"data": map[string]interface{}{
			"id":          settlementID,
			"group_id":    req.GroupID,
			"from_user":   userID,
			"amount":      req.Amount.StringFixed(2),
			"description": req.Description,
			"date":        settlementDate.Format(time.RFC3339),
			"split_ids":   req.SplitIds,
		},
	})
}

// FUNC TO LIST THE LOGGED-IN USER'S SETTLEMENTS
func GetUserSettlementsHandler(w http.ResponseWriter, r *http.Request) {
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

	rows, err := db.QueryContext(ctx, `
		SELECT s.id, s.group_id, g.name, s.from_user, s.amount, s.description, s.date
		FROM settlements s
		JOIN groups g ON g.id = s.group_id
		JOIN group_members gm ON gm.group_id = s.group_id AND gm.user_id = ?
		ORDER BY s.date DESC, s.id DESC`, userID)
	if err != nil {
		utils.Logger.Errorf("failed to fetch settlements: %v", err)
		utils.WriteError(w, "failed to retrieve settlements", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	settlements := []map[string]interface{}{}
	for rows.Next() {
		var id, groupID, fromUser int
		var groupName string
		var amount decimal.Decimal
		var description, date sql.NullString
		if err := rows.Scan(&id, &groupID, &groupName, &fromUser, &amount, &description, &date); err != nil {
			utils.Logger.Errorf("failed to scan settlement row: %v", err)
			utils.WriteError(w, "failed to retrieve settlements", http.StatusInternalServerError)
			return
		}
		settlements = append(settlements, map[string]interface{}{
			"id":          id,
			"group_id":    groupID,
			"group_name":  groupName,
			"from_user":   fromUser,
			"amount":      amount.StringFixed(2),
			"description": description.String,
			"date":        date.String,
		})
	}
	if err := rows.Err(); err != nil {
		utils.Logger.Errorf("error iterating settlement rows: %v", err)
		utils.WriteError(w, "failed to retrieve settlements", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"count":  len(settlements),
		"data":   settlements,
	})
}

// FUNC TO GET THE LOGGED-IN USER'S BALANCE SUMMARY
func GetBalanceHandler(w http.ResponseWriter, r *http.Request) {
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

	// Only splits from groups the caller currently belongs to count;
	// leaving a group drops its splits from the balance.
	rows, err := db.QueryContext(ctx, `
		SELECT s.debtor_id, s.creditor_id, s.amount, s.settled
		FROM splits s
		JOIN expenses e ON e.id = s.expense_id
		JOIN group_members gm ON gm.group_id = e.group_id AND gm.user_id = ?
		WHERE s.debtor_id = ? OR s.creditor_id = ?`, userID, userID, userID)
	if err != nil {
		utils.Logger.Errorf("failed to fetch splits: %v", err)
		utils.WriteError(w, "failed to retrieve balance", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	splits := []ledger.Split{}
	for rows.Next() {
		var s ledger.Split
		if err := rows.Scan(&s.DebtorID, &s.CreditorID, &s.Amount, &s.Settled); err != nil {
			utils.Logger.Errorf("failed to scan split row: %v", err)
			utils.WriteError(w, "failed to retrieve balance", http.StatusInternalServerError)
			return
		}
		splits = append(splits, s)
	}
	if err := rows.Err(); err != nil {
		utils.Logger.Errorf("error iterating split rows: %v", err)
		utils.WriteError(w, "failed to retrieve balance", http.StatusInternalServerError)
		return
	}

	balance := ledger.ComputeBalance(userID, splits)

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"total_owed":  balance.TotalOwed.StringFixed(2),
			"total_owing": balance.TotalOwing.StringFixed(2),
			"net_balance": balance.NetBalance.StringFixed(2),
		},
	})
}
