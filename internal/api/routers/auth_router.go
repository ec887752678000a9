package routers

import (
	"net/http"

	"splitmate/internal/api/handlers/auth"
)

func authRouter() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/auth/request-otp", auth.RequestOtpHandler)
	mux.HandleFunc("/auth/verify-otp", auth.VerifyOtpHandler)
	mux.HandleFunc("/auth/logout", auth.LogoutHandler)

	mux.HandleFunc("/auth/me", auth.MeHandler)
	mux.HandleFunc("/auth/profile", auth.UpdateProfileHandler)

	return mux
}
