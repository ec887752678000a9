package routers

import (
	"net/http"
)

func MainRouter() *http.ServeMux {

	mux := http.NewServeMux()

	aRouter := authRouter()
	mux.Handle("/auth/", aRouter)

	gRouter := groupsRouter()
	mux.Handle("/groups/", gRouter)

	eRouter := expensesRouter()
	mux.Handle("/expenses/", eRouter)

	sRouter := settlementsRouter()
	mux.Handle("/settlements/", sRouter)

	return mux
}
