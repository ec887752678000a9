package auth

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"splitmate/internal/api/handlers"
	"splitmate/internal/models"
	"splitmate/internal/otp"
	"splitmate/internal/repositories/sqlconnect"
	"splitmate/pkg/utils"
)

// OtpStore holds the hashed one-time passwords between request and verify.
// Set from main before the server starts.
var OtpStore otp.Store

func otpTTL() time.Duration {
	mins, err := strconv.Atoi(os.Getenv("OTP_TOKEN_EXP_DURATION"))
	if err != nil || mins <= 0 {
		mins = 5
	}
	return time.Duration(mins) * time.Minute
}

// FUNC TO REQUEST A LOGIN OTP
func RequestOtpHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if OtpStore == nil {
		utils.Logger.Error("OTP store is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	type request struct {
		Phone string `json:"phone"`
	}

	var req request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	req.Phone = strings.TrimSpace(req.Phone)
	if !handlers.ValidatePhoneNumber(w, req.Phone) {
		return
	}

	code, err := utils.GenerateSecureOTP()
	if err != nil {
		utils.Logger.Errorf("failed to generate otp: %v", err)
		utils.WriteError(w, "failed to generate otp", http.StatusInternalServerError)
		return
	}

	hashed, err := utils.HashOTP(code)
	if err != nil {
		utils.Logger.Errorf("failed to hash otp: %v", err)
		utils.WriteError(w, "failed to generate otp", http.StatusInternalServerError)
		return
	}

	ttl := otpTTL()
	if err := OtpStore.Set(r.Context(), req.Phone, hashed, ttl); err != nil {
		utils.Logger.Errorf("failed to store otp: %v", err)
		utils.WriteError(w, "failed to generate otp", http.StatusInternalServerError)
		return
	}

	// SMS delivery is an external collaborator. Outside production the code
	// is logged so the login flow can be exercised end to end.
	if os.Getenv("APP_ENV") != "production" {
		utils.Logger.Debugf("otp for %s: %s", req.Phone, code)
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"message": "OTP sent to your phone number",
		"data": map[string]interface{}{
			"expires_in_minutes": int(ttl.Minutes()),
		},
	})
}

// FUNC TO VERIFY OTP AND LOG IN (creates the user on first login)
func VerifyOtpHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	db := sqlconnect.DB
	if db == nil || OtpStore == nil {
		utils.Logger.Error("DB or OTP store is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	type request struct {
		Phone string `json:"phone"`
		Otp   string `json:"otp"`
	}

	var req request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	req.Phone = strings.TrimSpace(req.Phone)
	if req.Phone == "" || req.Otp == "" {
		utils.WriteError(w, "phone and otp are required", http.StatusBadRequest)
		return
	}

	hashed, err := OtpStore.Get(r.Context(), req.Phone)
	if err != nil {
		utils.WriteError(w, "invalid or expired otp", http.StatusBadRequest)
		return
	}

	if err := utils.VerifyOTP(req.Otp, hashed); err != nil {
		utils.WriteError(w, "invalid or expired otp", http.StatusBadRequest)
		return
	}

	// Single use: consume the code before issuing a session.
	if err := OtpStore.Delete(r.Context(), req.Phone); err != nil {
		utils.Logger.Errorf("failed to consume otp for %s: %v", req.Phone, err)
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	err = db.QueryRowContext(ctx, "SELECT id, phone, name, email, image FROM users WHERE phone = ?", req.Phone).
		Scan(&user.ID, &user.Phone, &user.Name, &user.Email, &user.Image)
	if err == sql.ErrNoRows {
		res, insertErr := db.ExecContext(ctx, "INSERT INTO users (phone) VALUES (?)", req.Phone)
		if insertErr != nil {
			utils.Logger.Errorf("failed to create user: %v", insertErr)
			utils.WriteError(w, "error signing in", http.StatusInternalServerError)
			return
		}
		id, _ := res.LastInsertId()
		user.ID = int(id)
		user.Phone = req.Phone
	} else if err != nil {
		utils.Logger.Errorf("failed to look up user: %v", err)
		utils.WriteError(w, "error signing in", http.StatusInternalServerError)
		return
	}

	tokenString, err := utils.SignToken(user.ID, user.Phone)
	if err != nil {
		utils.Logger.Error("could not create login token")
		utils.WriteError(w, "error signing in", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "Bearer",
		Value:    tokenString,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		Expires:  time.Now().Add(24 * time.Hour),
		SameSite: http.SameSiteStrictMode,
	})

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"message": "login successful",
		"token":   tokenString,
		"user": map[string]interface{}{
			"id":    user.ID,
			"phone": user.Phone,
			"name":  user.Name.String,
			"email": user.Email.String,
			"image": user.Image.String,
		},
	})
}

// FUNC FOR LOGOUT
func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "Bearer",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		Expires:  time.Unix(0, 0),
		SameSite: http.SameSiteStrictMode,
	})

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"message": "logged out successfully",
	})
}

// FUNC TO GET OWN PROFILE
func MeHandler(w http.ResponseWriter, r *http.Request) {
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

	idFloat, ok := r.Context().Value(utils.ContextKey("userId")).(float64)
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	userID := int(idFloat)

	var user models.User
	err := db.QueryRowContext(r.Context(), "SELECT id, phone, name, email, image, created_at FROM users WHERE id = ?", userID).
		Scan(&user.ID, &user.Phone, &user.Name, &user.Email, &user.Image, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			utils.WriteError(w, "user not found", http.StatusNotFound)
			return
		}
		utils.WriteError(w, "failed to retrieve profile", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"id":    user.ID,
			"phone": user.Phone,
			"name":  user.Name.String,
			"email": user.Email.String,
			"image": user.Image.String,
		},
	})
}

// FUNC TO UPDATE OWN PROFILE
func UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	idFloat, ok := r.Context().Value(utils.ContextKey("userId")).(float64)
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	userID := int(idFloat)

	type request struct {
		Name  string  `json:"name"`
		Email *string `json:"email"`
		Image *string `json:"image"`
	}

	var req request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		utils.WriteError(w, "name is required", http.StatusBadRequest)
		return
	}
	if len(req.Name) > 100 {
		utils.WriteError(w, "name too long", http.StatusBadRequest)
		return
	}

	// Omitted fields are left untouched; only the keys present in the
	// request make it into the SET clause.
	query := "UPDATE users SET name = ?"
	args := []interface{}{req.Name}
	if req.Email != nil {
		query += ", email = ?"
		args = append(args, *req.Email)
	}
	if req.Image != nil {
		query += ", image = ?"
		args = append(args, *req.Image)
	}
	query += " WHERE id = ?"
	args = append(args, userID)

	_, err := db.ExecContext(r.Context(), query, args...)
	if err != nil {
		utils.Logger.Errorf("failed to update profile: %v", err)
		utils.WriteError(w, "failed to update profile", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, map[string]interface{}{
		"status":  "success",
		"message": "profile updated successfully",
	})
}
