package main

import (
	"net/http"
)

func composeRoutes(app *application) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/healthcheck", app.healthCheckHandler)

	mux.HandleFunc("POST /api/register", app.registerUserHandler)
	mux.HandleFunc("POST /api/login", app.loginUserHandler)
	mux.HandleFunc("POST /api/logout", app.logoutUserHandler)

	mux.HandleFunc("GET /api/habits", app.requireAuth(app.getHabitsHandler))
	mux.HandleFunc("POST /api/habits", app.requireAuth(app.createHabitHandler))
	mux.HandleFunc("PATCH /api/habits/{id}", app.requireAuth(app.toggleHabitHandler))
	mux.HandleFunc("DELETE /api/habits/{id}", app.requireAuth(app.deleteHabitHandler))
	mux.HandleFunc("POST /api/habits/reset", app.requireAuth(app.resetHabitsHandler))

	mux.HandleFunc("GET /api/history", app.requireAuth(app.getHistoryHandler))
	mux.HandleFunc("GET /api/ai-coach", app.requireAuth(app.adviceHandler))

	return app.enableCORS(mux)
}
