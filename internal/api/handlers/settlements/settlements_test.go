package settlements

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"splitmate/internal/repositories/sqlconnect"
	"splitmate/pkg/utils"
)

func authedRequest(method, target, body string, userID int) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := context.WithValue(req.Context(), utils.ContextKey("userId"), float64(userID))
	return req.WithContext(ctx)
}

// The balance only counts splits from groups the caller still belongs to,
// so the query has to reach splits through group_members.
func TestGetBalanceHandlerScopedToCurrentGroups(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	sqlconnect.DB = db
	defer func() { sqlconnect.DB = nil }()

	mock.ExpectQuery(`JOIN expenses e ON e\.id = s\.expense_id\s+JOIN group_members gm ON gm\.group_id = e\.group_id AND gm\.user_id = \?`).
		WithArgs(42, 42, 42).
		WillReturnRows(sqlmock.NewRows([]string{"debtor_id", "creditor_id", "amount", "settled"}).
			AddRow(42, 7, "50.00", false).
			AddRow(9, 42, "20.00", false).
			AddRow(42, 7, "15.00", true))

	rec := httptest.NewRecorder()
	GetBalanceHandler(rec, authedRequest(http.MethodGet, "/settlements/balance", "", 42))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp struct {
		Data struct {
			TotalOwed  string `json:"total_owed"`
			TotalOwing string `json:"total_owing"`
			NetBalance string `json:"net_balance"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.TotalOwing != "50.00" {
		t.Errorf("total_owing = %s, want 50.00", resp.Data.TotalOwing)
	}
	if resp.Data.TotalOwed != "20.00" {
		t.Errorf("total_owed = %s, want 20.00", resp.Data.TotalOwed)
	}
	if resp.Data.NetBalance != "-30.00" {
		t.Errorf("net_balance = %s, want -30.00", resp.Data.NetBalance)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
