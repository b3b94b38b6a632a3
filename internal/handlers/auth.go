package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kreyolab/formations/internal/repo"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler issues JWT tokens to back-office editors.
type AuthHandler struct {
	Editors     *repo.EditorRepo
	Secret      []byte
	TokenExpiry time.Duration
}

// Login verifies editor credentials and returns a signed token.
// Body: {"username": "...", "password": "..."}.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	editor, err := h.Editors.GetByUsername(r.Context(), input.Username)
	if err != nil {
		JSONError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(editor.PasswordHash), []byte(input.Password)); err != nil {
		JSONError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	claims := jwt.MapClaims{
		"editor_id": editor.ID,
		"username":  editor.Username,
		"exp":       time.Now().Add(h.TokenExpiry).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.Secret)
	if err != nil {
		JSONError(w, "failed to issue token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"token":  signed,
		"editor": editor,
	})
}
