package groups

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

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

// memberRole returns the caller's role in the group, or sql.ErrNoRows when
// the caller is not a member.
func memberRole(ctx context.Context, q interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}, groupID, userID int) (string, error) {
	var role string
	err := q.QueryRowContext(ctx,
		"SELECT role FROM group_members WHERE group_id = ? AND user_id = ?",
		groupID, userID).Scan(&role)
	return role, err
}

// FUNC TO CREATE A GROUP
func CreateGroupHandler(w http.ResponseWriter, r *http.Request) {
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

	var newGroup models.Group
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&newGroup); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	newGroup.Name = strings.TrimSpace(newGroup.Name)
	if newGroup.Name == "" {
		utils.WriteError(w, "group name is required", http.StatusBadRequest)
		return
	}
	if len(newGroup.Name) > 100 || len(newGroup.Description) > 500 {
		utils.WriteError(w, "name or description too long", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		utils.Logger.Errorf("failed to start transaction: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO groups (name, description) VALUES (?, ?)",
		newGroup.Name, newGroup.Description)
	if err != nil {
		tx.Rollback()
		utils.Logger.Errorf("failed to create group: %v", err)
		utils.WriteError(w, "failed to create group, try again later!", http.StatusInternalServerError)
		return
	}

	id, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		utils.Logger.Errorf("failed to get last inserted ID: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	// The creator is the group's admin from the first moment.
	_, err = tx.ExecContext(ctx,
		"INSERT INTO group_members (group_id, user_id, role) VALUES (?, ?, ?)",
		id, userID, models.RoleAdmin)
	if err != nil {
		tx.Rollback()
		utils.Logger.Errorf("failed to assign group admin: %v", err)
		utils.WriteError(w, "failed to create group, try again later!", http.StatusInternalServerError)
		return
	}

	if err = tx.Commit(); err != nil {
		tx.Rollback()
		utils.Logger.Errorf("failed to commit transaction: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"status":  "success",
		"message": "group created successfully",
		"data": map[string]interface{}{
			"group_id":    id,
			"name":        newGroup.Name,
			"description": newGroup.Description,
			"role":        models.RoleAdmin,
		},
	}

	utils.WriteJSONStatus(w, http.StatusCreated, response)
}

// FUNC TO GET ALL GROUPS THE LOGGED-IN USER BELONGS TO
func GetMyGroupsHandler(w http.ResponseWriter, r *http.Request) {
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
		SELECT g.id, g.name, g.description, gm.role, g.created_at,
		       (SELECT COUNT(*) FROM group_members m WHERE m.group_id = g.id) AS member_count
		FROM groups g
		JOIN group_members gm ON gm.group_id = g.id
		WHERE gm.user_id = ?
		ORDER BY g.created_at DESC`, userID)
	if err != nil {
		utils.Logger.Errorf("failed to fetch groups: %v", err)
		utils.WriteError(w, "failed to retrieve groups", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	groups := []map[string]interface{}{}
	for rows.Next() {
		var g models.Group
		var role string
		var memberCount int
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &role, &g.CreatedAt, &memberCount); err != nil {
			utils.Logger.Errorf("failed to scan group row: %v", err)
			utils.WriteError(w, "failed to retrieve groups", http.StatusInternalServerError)
			return
		}
		groups = append(groups, map[string]interface{}{
			"id":           g.ID,
			"name":         g.Name,
			"description":  g.Description,
			"role":         role,
			"member_count": memberCount,
			"created_at":   g.CreatedAt.String,
		})
	}
	if err := rows.Err(); err != nil {
		utils.Logger.Errorf("error iterating group rows: %v", err)
		utils.WriteError(w, "failed to retrieve groups", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"count":  len(groups),
		"data":   groups,
	})
}

// FUNC TO GET A SINGLE GROUP WITH ITS MEMBERS
func GetGroupByIDHandler(w http.ResponseWriter, r *http.Request) {
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

	// Only members can see a group.
	if _, err := memberRole(ctx, db, groupID, userID); err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "you are not a member of this group", http.StatusForbidden)
			return
		}
		utils.Logger.Errorf("failed to check membership: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var group models.Group
	err = db.QueryRowContext(ctx,
		"SELECT id, name, description, created_at FROM groups WHERE id = ?", groupID).
		Scan(&group.ID, &group.Name, &group.Description, &group.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "group not found", http.StatusNotFound)
			return
		}
		utils.Logger.Errorf("failed to fetch group: %v", err)
		utils.WriteError(w, "failed to retrieve group", http.StatusInternalServerError)
		return
	}

	rows, err := db.QueryContext(ctx, `
		SELECT u.id, u.phone, u.name, u.email, u.image, gm.role, gm.joined_at
		FROM group_members gm
		JOIN users u ON u.id = gm.user_id
		WHERE gm.group_id = ?
		ORDER BY gm.joined_at ASC`, groupID)
	if err != nil {
		utils.Logger.Errorf("failed to fetch group members: %v", err)
		utils.WriteError(w, "failed to retrieve group", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	members := []map[string]interface{}{}
	for rows.Next() {
		var u models.User
		var role string
		var joinedAt sql.NullString
		if err := rows.Scan(&u.ID, &u.Phone, &u.Name, &u.Email, &u.Image, &role, &joinedAt); err != nil {
			utils.Logger.Errorf("failed to scan member row: %v", err)
			utils.WriteError(w, "failed to retrieve group", http.StatusInternalServerError)
			return
		}
		members = append(members, map[string]interface{}{
			"id":    u.ID,
			"phone": u.Phone,
			"name":  u.Name.String,
			"email": u.Email.String,
			"image": u.Image.String,
			"role":  role,
		})
	}
	if err := rows.Err(); err != nil {
		utils.Logger.Errorf("error iterating member rows: %v", err)
		utils.WriteError(w, "failed to retrieve group", http.StatusInternalServerError)
		return
	}

	expenseRows, err := db.QueryContext(ctx, `
		SELECT e.id, e.paid_by, e.amount, e.description, e.category, e.date
		FROM expenses e
		WHERE e.group_id = ?
		ORDER BY e.date DESC, e.id DESC`, groupID)
	if err != nil {
		utils.Logger.Errorf("failed to fetch group expenses: %v", err)
		utils.WriteError(w, "failed to retrieve group", http.StatusInternalServerError)
		return
	}
	defer expenseRows.Close()

	expenses := []map[string]interface{}{}
	for expenseRows.Next() {
		var e models.Expense
		if err := expenseRows.Scan(&e.ID, &e.PaidBy, &e.Amount, &e.Description, &e.Category, &e.Date); err != nil {
			utils.Logger.Errorf("failed to scan expense row: %v", err)
			utils.WriteError(w, "failed to retrieve group", http.StatusInternalServerError)
			return
		}
		expenses = append(expenses, map[string]interface{}{
			"id":          e.ID,
			"paid_by":     e.PaidBy,
			"amount":      e.Amount.StringFixed(2),
			"description": e.Description,
			"category":    e.Category,
			"date":        e.Date.String,
		})
	}
	if err := expenseRows.Err(); err != nil {
		utils.Logger.Errorf("error iterating expense rows: %v", err)
		utils.WriteError(w, "failed to retrieve group", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"id":          group.ID,
			"name":        group.Name,
			"description": group.Description,
			"created_at":  group.CreatedAt.String,
			"members":     members,
			"expenses":    expenses,
		},
	})
}

// FUNC TO UPDATE GROUP NAME/DESCRIPTION
func UpdateGroupHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
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

	type request struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}

	var req request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err = decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" && req.Description == "" {
		utils.WriteError(w, "nothing to update", http.StatusBadRequest)
		return
	}
	if len(req.Name) > 100 || len(req.Description) > 500 {
		utils.WriteError(w, "name or description too long", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	role, err := memberRole(ctx, db, groupID, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "you are not a member of this group", http.StatusForbidden)
			return
		}
		utils.Logger.Errorf("failed to check membership: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if role != models.RoleAdmin {
		utils.WriteError(w, "only a group admin can update the group", http.StatusForbidden)
		return
	}

	query := "UPDATE groups SET"
	args := []interface{}{}
	if req.Name != "" {
		query += " name = ?"
		args = append(args, req.Name)
	}
	if req.Description != "" {
		if len(args) > 0 {
			query += ","
		}
		query += " description = ?"
		args = append(args, req.Description)
	}
	query += " WHERE id = ?"
	args = append(args, groupID)

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		utils.Logger.Errorf("failed to update group: %v", err)
		utils.WriteError(w, "failed to update group", http.StatusInternalServerError)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		utils.WriteError(w, "group not found", http.StatusNotFound)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"message": "group updated successfully",
	})
}

// FUNC TO REPLACE THE GROUP'S NON-ADMIN MEMBERS
// The request carries the full desired member list; admins are kept no
// matter what, everyone else is reconciled against the list.
func ManageMembersHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
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

	type request struct {
		MemberIds []int `json:"member_ids"`
	}

	var req request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err = decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	seen := map[int]bool{}
	for _, id := range req.MemberIds {
		if id <= 0 {
			utils.WriteError(w, "invalid member ID", http.StatusBadRequest)
			return
		}
		if seen[id] {
			utils.WriteError(w, "duplicate member ID", http.StatusBadRequest)
			return
		}
		seen[id] = true
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	role, err := memberRole(ctx, db, groupID, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "you are not a member of this group", http.StatusForbidden)
			return
		}
		utils.Logger.Errorf("failed to check membership: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if role != models.RoleAdmin {
		utils.WriteError(w, "only a group admin can manage members", http.StatusForbidden)
		return
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		utils.Logger.Errorf("failed to start transaction: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	// Every requested ID must be an existing user.
	for id := range seen {
		var exists int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM users WHERE id = ?", id).Scan(&exists)
		if err == sql.ErrNoRows {
			tx.Rollback()
			utils.WriteError(w, "one or more member IDs do not exist", http.StatusBadRequest)
			return
		}
		if err != nil {
			tx.Rollback()
			utils.Logger.Errorf("failed to verify user: %v", err)
			utils.WriteError(w, "internal server error", http.StatusInternalServerError)
			return
		}
	}

	// Current non-admin members.
	rows, err := tx.QueryContext(ctx,
		"SELECT user_id FROM group_members WHERE group_id = ? AND role = ?",
		groupID, models.RoleMember)
	if err != nil {
		tx.Rollback()
		utils.Logger.Errorf("failed to fetch current members: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	current := map[int]bool{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			tx.Rollback()
			utils.Logger.Errorf("failed to scan member: %v", err)
			utils.WriteError(w, "internal server error", http.StatusInternalServerError)
			return
		}
		current[id] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		tx.Rollback()
		utils.Logger.Errorf("error iterating members: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	added, removed := 0, 0
	for id := range seen {
		if current[id] {
			continue
		}
		// Admins already in the group are left untouched; the unique key
		// guards against double inserts.
		_, err := tx.ExecContext(ctx,
			"INSERT IGNORE INTO group_members (group_id, user_id, role) VALUES (?, ?, ?)",
			groupID, id, models.RoleMember)
		if err != nil {
			tx.Rollback()
			utils.Logger.Errorf("failed to add member: %v", err)
			utils.WriteError(w, "failed to update members", http.StatusInternalServerError)
			return
		}
		added++
	}
	for id := range current {
		if seen[id] {
			continue
		}
		_, err := tx.ExecContext(ctx,
			"DELETE FROM group_members WHERE group_id = ? AND user_id = ? AND role = ?",
			groupID, id, models.RoleMember)
		if err != nil {
			tx.Rollback()
			utils.Logger.Errorf("failed to remove member: %v", err)
			utils.WriteError(w, "failed to update members", http.StatusInternalServerError)
			return
		}
		removed++
	}

	if err = tx.Commit(); err != nil {
		tx.Rollback()
		utils.Logger.Errorf("failed to commit transaction: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"message": "group members updated",
		"data": map[string]interface{}{
			"added":   added,
			"removed": removed,
		},
	})
}

// FUNC TO DELETE A GROUP AND ALL ITS DATA
func DeleteGroupHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
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

	role, err := memberRole(ctx, db, groupID, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "you are not a member of this group", http.StatusForbidden)
			return
		}
		utils.Logger.Errorf("failed to check membership: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if role != models.RoleAdmin {
		utils.WriteError(w, "only a group admin can delete the group", http.StatusForbidden)
		return
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		utils.Logger.Errorf("failed to start transaction: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	// Teardown order respects the foreign keys: links first, then
	// settlements, splits, expenses, members, and last the group row.
	steps := []string{
		`DELETE ss FROM settlement_splits ss
		 JOIN settlements s ON s.id = ss.settlement_id
		 WHERE s.group_id = ?`,
		`DELETE FROM settlements WHERE group_id = ?`,
		`DELETE sp FROM splits sp
		 JOIN expenses e ON e.id = sp.expense_id
		 WHERE e.group_id = ?`,
		`DELETE FROM expenses WHERE group_id = ?`,
		`DELETE FROM group_members WHERE group_id = ?`,
		`DELETE FROM groups WHERE id = ?`,
	}
	for _, stmt := range steps {
		if _, err := tx.ExecContext(ctx, stmt, groupID); err != nil {
			tx.Rollback()
			utils.Logger.Errorf("failed to delete group data: %v", err)
			utils.WriteError(w, "failed to delete group", http.StatusInternalServerError)
			return
		}
	}

	if err = tx.Commit(); err != nil {
		tx.Rollback()
		utils.Logger.Errorf("failed to commit transaction: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"message": "group deleted successfully",
	})
}
