package ctrlbase

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"go.senan.xyz/ams/handlerutil"
)

func AddRoutes(c *Controller, r *mux.Router, logHTTP bool) {
	if logHTTP {
		r.Use(handlerutil.Log)
	}
	r.Use(handlers.RecoveryHandler(handlers.PrintRecoveryStack(true)))

	r.Handle("/", handlerutil.Redirect(c.Path("/admin/home"))).Methods(http.MethodGet)
	r.Handle("/ping", handlerutil.Message("OK")).Methods(http.MethodGet)
}
