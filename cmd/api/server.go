package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"splitmate/internal/api/handlers/auth"
	mw "splitmate/internal/api/middlewares"
	"splitmate/internal/api/routers"
	"splitmate/internal/otp"
	"splitmate/internal/repositories/sqlconnect"
	"splitmate/pkg/cron"
	"splitmate/pkg/utils"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		return
	}

	utils.InitLogger()

	err = sqlconnect.ConnectDb()
	if err != nil {
		utils.Logger.Fatal("DB connection failed: ", err)
	}

	// OTP codes live in Redis when one is configured, otherwise in
	// process memory. The in-memory store does not survive a restart,
	// which is acceptable for codes that expire in minutes.
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		store, err := otp.NewRedisStore(ctx, addr, os.Getenv("REDIS_PASSWORD"), redisDB)
		cancel()
		if err != nil {
			utils.Logger.Fatal("Redis connection failed: ", err)
		}
		auth.OtpStore = store
	} else {
		auth.OtpStore = otp.NewInMemoryStore(time.Minute)
	}
	defer auth.OtpStore.Close()

	cron.StartCronJob(sqlconnect.DB)

	port := os.Getenv("SERVER_PORT")

	cert := os.Getenv("CERT_FILE")
	key := os.Getenv("KEY_FILE")

	tlsConfig := &tls.Config{
		MinVersion: tls.VersionTLS12,
	}

	router := routers.MainRouter()
	jwtMiddleware := mw.MiddlewaresExcludePaths(mw.JWTMiddleware, "/auth/request-otp", "/auth/verify-otp")

	secureMux := jwtMiddleware(mw.SecurityHeaders(router))

	server := &http.Server{
		Addr:      port,
		Handler:   secureMux,
		TLSConfig: tlsConfig,
	}

	fmt.Println("Server is running on port", port)
	err = server.ListenAndServeTLS(cert, key)
	if err != nil {
		log.Fatalln("Error starting the server", err)
	}

}
