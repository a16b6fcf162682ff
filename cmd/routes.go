package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders, app.requestID)
	jsonMiddleware := standardMiddleware.Append(makeResponseJSON)

	mux := pat.New()

	ts := app.tracking.HTTP

	// Deliveries
	mux.Post("/api/v1/deliveries", jsonMiddleware.ThenFunc(ts.CreateDelivery))
	mux.Get("/api/v1/deliveries/:id", jsonMiddleware.ThenFunc(ts.GetDelivery))
	mux.Post("/api/v1/deliveries/:id/advance", jsonMiddleware.ThenFunc(ts.AdvanceDelivery))
	mux.Post("/api/v1/deliveries/:id/status", jsonMiddleware.ThenFunc(ts.SetDeliveryStatus))

	// Simulation
	mux.Post("/api/v1/simulation/regenerate", jsonMiddleware.ThenFunc(ts.Regenerate))
	mux.Get("/api/v1/simulation/settings", jsonMiddleware.ThenFunc(ts.GetSettings))
	mux.Put("/api/v1/simulation/settings", jsonMiddleware.ThenFunc(ts.SaveSettings))

	// Public tracking
	mux.Get("/api/v1/track/:code", jsonMiddleware.ThenFunc(ts.Track))

	// Live updates
	mux.Get("/ws/track", standardMiddleware.ThenFunc(app.tracking.Hub.ServeWS))

	return standardMiddleware.Then(mux)
}
