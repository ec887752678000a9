package routers

import (
	"net/http"

	"splitmate/internal/api/handlers/settlements"
)

func settlementsRouter() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/settlements/create", settlements.CreateSettlementHandler)

	mux.HandleFunc("/settlements/", settlements.GetUserSettlementsHandler)

	mux.HandleFunc("/settlements/balance", settlements.GetBalanceHandler)

	return mux
}
