package handlers

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/diewo77/plombicrm/auth"
	"github.com/diewo77/plombicrm/httpx"
	"github.com/diewo77/plombicrm/internal/models"
)

type AuthHandler struct {
	db *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{db: db}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges the account credentials for a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}

	var user models.User
	if err := h.db.Where("email = ?", strings.TrimSpace(req.Email)).First(&user).Error; err != nil {
		httpx.JSONErrorLang(w, r, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		httpx.JSONErrorLang(w, r, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}

	token, err := auth.IssueToken(user.ID, user.Email, user.Name, time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"token": token})
}
