package testbackend

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/ChilyGarcia/imagineapps-frontend/models"
)

type fieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail any) {
	writeJSON(w, status, map[string]any{"detail": detail})
}

func missingField(name string) fieldError {
	return fieldError{Loc: []string{"body", name}, Msg: "field required", Type: "value_error.missing"}
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid form")
		return
	}
	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")

	var missing []fieldError
	if username == "" {
		missing = append(missing, missingField("username"))
	}
	if password == "" {
		missing = append(missing, missingField("password"))
	}
	if len(missing) > 0 {
		writeDetail(w, http.StatusUnprocessableEntity, missing)
		return
	}

	b.mu.Lock()
	rec, ok := b.users[username]
	b.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword([]byte(rec.passwordHash), []byte(password)) != nil {
		writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}

	token, err := b.IssueToken(username)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, models.AuthResponse{AccessToken: token, TokenType: "bearer"})
}

func (b *Backend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, []fieldError{{Msg: "invalid JSON body", Type: "value_error"}})
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeDetail(w, http.StatusUnprocessableEntity, []fieldError{missingField("username")})
		return
	}

	user, err := b.AddUser(req)
	if errors.Is(err, ErrUsernameTaken) {
		writeDetail(w, http.StatusBadRequest, "Username already registered")
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (b *Backend) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	fail := b.failCurrentUser
	user, ok := b.userByID(userIDFrom(r.Context()))
	b.mu.Unlock()

	if fail {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if !ok {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (b *Backend) handleCategories(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	categories := append([]models.Category{}, b.categories...)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, categories)
}

func (b *Backend) handleListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var categoryID int64
	if raw := q.Get("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, []fieldError{{
				Loc: []string{"query", "category_id"}, Msg: "value is not a valid integer", Type: "type_error.integer",
			}})
			return
		}
		categoryID = id
	}

	b.mu.Lock()
	events := b.filterEvents(categoryID, q.Get("time_filter"), q.Get("date"))
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, events)
}

func (b *Backend) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid event id")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range b.events {
		if e.ID == id {
			writeJSON(w, http.StatusOK, e)
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Event not found")
}

func (b *Backend) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, []fieldError{{Msg: "invalid JSON body", Type: "value_error"}})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeDetail(w, http.StatusUnprocessableEntity, []fieldError{missingField("name")})
		return
	}
	if _, err := time.Parse(time.DateOnly, req.StartDate); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid start_date")
		return
	}

	b.mu.Lock()
	category, ok := b.categoryByID(req.CategoryID)
	owner, ownerOK := b.userByID(userIDFrom(r.Context()))
	b.mu.Unlock()
	if !ok {
		writeDetail(w, http.StatusNotFound, "Category not found")
		return
	}
	if !ownerOK {
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	if req.UserID != 0 && req.UserID != owner.ID {
		writeDetail(w, http.StatusForbidden, "Cannot create events for another user")
		return
	}

	event := b.AddEvent(models.Event{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Location:    req.Location,
		StartTime:   req.StartTime,
		Prize:       req.Prize,
		Category:    category,
		User:        owner,
	})
	writeJSON(w, http.StatusCreated, event)
}

func (b *Backend) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid event id")
		return
	}
	userID := userIDFrom(r.Context())

	b.mu.Lock()
	defer b.mu.Unlock()
	for i, e := range b.events {
		if e.ID != id {
			continue
		}
		if e.User.ID != userID {
			writeDetail(w, http.StatusForbidden, "Not enough permissions")
			return
		}
		b.events = append(b.events[:i], b.events[i+1:]...)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeDetail(w, http.StatusNotFound, "Event not found")
}
