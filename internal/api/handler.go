package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"

	"crediario/m/internal/ledger"
)

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	db     *sqlx.DB
	ledger *ledger.Service
	secret string
}

// New constructs a Handler.
func New(db *sqlx.DB, svc *ledger.Service, secret string) *Handler {
	return &Handler{db: db, ledger: svc, secret: secret}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(h.authMiddleware)

		r.Route("/clientes", func(r chi.Router) {
			r.Get("/", h.listClientes)
			r.Post("/", h.createCliente)
			r.Put("/{id}", h.updateCliente)
			r.Delete("/{id}", h.deleteCliente)
			r.Get("/{id}/historico", h.clienteHistorico)
			r.Post("/{id}/observacoes", h.createObservacao)
		})

		r.Route("/produtos", func(r chi.Router) {
			r.Get("/", h.listProdutos)
			r.Post("/", h.createProduto)
			r.Put("/{id}", h.updateProduto)
			r.Delete("/{id}", h.deleteProduto)
		})

		r.Post("/vendas", h.createVenda)
		r.Patch("/parcelas/{id}/pagar", h.pagarParcela)

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/meses-disponiveis", h.mesesDisponiveis)
			r.Get("/previsao-mensal", h.previsaoMensal)
			r.Get("/clientes-atrasados", h.clientesAtrasados)
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// respondLedgerError maps the core error taxonomy onto status codes:
// validation 400, missing reference 404, anything else 500.
func respondLedgerError(w http.ResponseWriter, err error) {
	switch {
	case ledger.IsValidation(err):
		respondError(w, http.StatusBadRequest, err.Error())
	case ledger.IsNotFound(err):
		respondError(w, http.StatusNotFound, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// Helpers

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
