package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"siphon/pkg/auth"
)

// NewRouter wires the drink routes. The summary list and the health
// probe are public; everything else runs behind a permission guard.
func NewRouter(drinks *DrinkServer, authManager *auth.Manager, logger *zap.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(requestLogger(logger))
	router.NotFoundHandler = http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writeError(writer, http.StatusNotFound, "resource not found")
	})

	router.HandleFunc("/healthz", drinks.Healthz).Methods(http.MethodGet)
	router.HandleFunc("/drinks", drinks.ListDrinks).Methods(http.MethodGet)
	router.HandleFunc("/drinks-detail", authManager.RequirePermission("get:drinks-detail", drinks.ListDrinksDetail)).Methods(http.MethodGet)
	router.HandleFunc("/drinks", authManager.RequirePermission("post:drinks", drinks.CreateDrink)).Methods(http.MethodPost)
	router.HandleFunc("/drinks/{id:[0-9]+}", authManager.RequirePermission("patch:drinks", drinks.UpdateDrink)).Methods(http.MethodPatch)
	router.HandleFunc("/drinks/{id:[0-9]+}", authManager.RequirePermission("delete:drinks", drinks.DeleteDrink)).Methods(http.MethodDelete)

	return router
}
