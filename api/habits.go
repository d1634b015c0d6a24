package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"
)

func (app *application) getHabitsHandler(w http.ResponseWriter, r *http.Request) {
	u := getUserFromRequest(r)
	habits, err := app.storage.getHabits(u.ID)
	if err != nil {
		log.Println(err)
		writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, habits)
}

func (app *application) createHabitHandler(w http.ResponseWriter, r *http.Request) {
	u := getUserFromRequest(r)
	var input struct {
		Name string `json:"name"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	h := &habit{
		UserID: u.ID,
		Name:   input.Name,
	}
	err = app.storage.insertHabit(h)
	if err != nil {
		log.Println(err)
		writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (app *application) toggleHabitHandler(w http.ResponseWriter, r *http.Request) {
	u := getUserFromRequest(r)
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, errors.New("Habit not found"), http.StatusNotFound)
		return
	}
	// Looked up with the owner in the filter: a habit belonging to someone
	// else answers exactly like a habit that does not exist.
	h, err := app.storage.getHabit(id, u.ID)
	if err != nil {
		log.Println(err)
		writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		return
	}
	if h == nil {
		writeError(w, errors.New("Habit not found"), http.StatusNotFound)
		return
	}
	err = app.storage.toggleHabit(h, app.today())
	if err != nil {
		log.Println(err)
		writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		return
	}
	result := struct {
		ID        int  `json:"id"`
		Completed bool `json:"completed"`
	}{
		ID:        h.ID,
		Completed: h.Completed,
	}
	writeJSON(w, http.StatusOK, result)
}

func (app *application) deleteHabitHandler(w http.ResponseWriter, r *http.Request) {
	u := getUserFromRequest(r)
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, errors.New("Habit not found"), http.StatusNotFound)
		return
	}
	found, err := app.storage.deleteHabit(id, u.ID)
	if err != nil {
		log.Println(err)
		writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		return
	}
	if !found {
		writeError(w, errors.New("Habit not found"), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Deleted"})
}

func (app *application) resetHabitsHandler(w http.ResponseWriter, r *http.Request) {
	u := getUserFromRequest(r)
	err := app.storage.resetHabits(u.ID)
	if err != nil {
		log.Println(err)
		writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "All habits reset"})
}

func (app *application) getHistoryHandler(w http.ResponseWriter, r *http.Request) {
	u := getUserFromRequest(r)
	to := app.today()
	from := to.AddDate(0, 0, -6)
	history, err := app.storage.getCompletionHistory(u.ID, from, to)
	if err != nil {
		log.Println(err)
		writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// today is the server's UTC calendar date, derived from the injected clock.
func (app *application) today() time.Time {
	now := app.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
