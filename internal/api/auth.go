package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"crediario/m/domain"
)

type ctxKey string

const ctxUserID ctxKey = "userID"

func userIDFromContext(r *http.Request) *int64 {
	if val := r.Context().Value(ctxUserID); val != nil {
		if id, ok := val.(int64); ok && id > 0 {
			return &id
		}
	}
	return nil
}

type authClaims struct {
	UserID int64  `json:"user_id"`
	Nome   string `json:"nome"`
	jwt.RegisteredClaims
}

func (h *Handler) generateToken(userID int64, nome string) (string, error) {
	claims := authClaims{
		UserID: userID,
		Nome:   nome,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.secret))
}

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		tokenString := strings.TrimSpace(header[len("Bearer "):])
		token, err := jwt.ParseWithClaims(tokenString, &authClaims{}, func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwt.SigningMethodHS256 {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(h.secret), nil
		})
		if err != nil || !token.Valid {
			respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		claims, ok := token.Claims.(*authClaims)
		if !ok {
			respondError(w, http.StatusUnauthorized, "invalid token claims")
			return
		}
		ctx := context.WithValue(r.Context(), ctxUserID, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type registerRequest struct {
	Nome  string `json:"nome"`
	Email string `json:"email"`
	Senha string `json:"senha"`
}

type authResponse struct {
	Token   string      `json:"token"`
	Usuario domain.User `json:"usuario"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Nome == "" || req.Email == "" || req.Senha == "" {
		respondError(w, http.StatusBadRequest, "nome, email e senha sao obrigatorios")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Senha), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to secure password")
		return
	}

	email := strings.ToLower(req.Email)
	var userID int64
	err = h.db.QueryRowx(
		h.db.Rebind(`INSERT INTO usuarios (nome, email, senha, criado_em) VALUES (?, ?, ?, ?) RETURNING id`),
		req.Nome, email, string(hashed), time.Now().UTC().Format(time.RFC3339)).Scan(&userID)
	if err != nil {
		if strings.Contains(err.Error(), "unique constraint") || strings.Contains(err.Error(), "UNIQUE") {
			respondError(w, http.StatusConflict, "email ja cadastrado")
		} else {
			respondError(w, http.StatusInternalServerError, "db error: "+err.Error())
		}
		return
	}

	token, err := h.generateToken(userID, req.Nome)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to generate token")
		return
	}
	respondJSON(w, http.StatusCreated, authResponse{
		Token:   token,
		Usuario: domain.User{ID: userID, Nome: req.Nome, Email: email},
	})
}

type loginRequest struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var user domain.User
	err := h.db.Get(&user,
		h.db.Rebind(`SELECT id, nome, email, senha, criado_em FROM usuarios WHERE email = ?`),
		strings.ToLower(req.Email))
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Senha), []byte(req.Senha)) != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.generateToken(user.ID, user.Nome)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to generate token")
		return
	}
	user.Senha = ""
	respondJSON(w, http.StatusOK, authResponse{Token: token, Usuario: user})
}
