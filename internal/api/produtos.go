package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"crediario/m/domain"
)

type produtoRequest struct {
	Nome    string          `json:"nome"`
	Marca   string          `json:"marca"`
	Preco   decimal.Decimal `json:"preco"`
	Estoque int64           `json:"estoque"`
}

func (req produtoRequest) validate() string {
	if req.Nome == "" {
		return "nome e obrigatorio"
	}
	if req.Preco.IsNegative() {
		return "preco nao pode ser negativo"
	}
	if req.Estoque < 0 {
		return "estoque nao pode ser negativo"
	}
	return ""
}

func (h *Handler) listProdutos(w http.ResponseWriter, r *http.Request) {
	produtos := []domain.Product{}
	err := h.db.Select(&produtos,
		`SELECT id, nome, marca, preco, estoque FROM produtos ORDER BY nome ASC`)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "erro ao buscar produtos")
		return
	}
	respondJSON(w, http.StatusOK, produtos)
}

func (h *Handler) createProduto(w http.ResponseWriter, r *http.Request) {
	var req produtoRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	var id int64
	err := h.db.QueryRowx(h.db.Rebind(
		`INSERT INTO produtos (nome, marca, preco, estoque) VALUES (?, ?, ?, ?) RETURNING id`),
		req.Nome, req.Marca, req.Preco, req.Estoque).Scan(&id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "erro ao cadastrar produto")
		return
	}
	respondJSON(w, http.StatusCreated, domain.Product{
		ID: id, Nome: req.Nome, Marca: req.Marca, Preco: req.Preco, Estoque: req.Estoque,
	})
}

func (h *Handler) updateProduto(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "id invalido")
		return
	}
	var req produtoRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	res, err := h.db.Exec(h.db.Rebind(
		`UPDATE produtos SET nome = ?, marca = ?, preco = ?, estoque = ? WHERE id = ?`),
		req.Nome, req.Marca, req.Preco, req.Estoque, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "erro ao atualizar produto")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		respondError(w, http.StatusNotFound, "produto nao encontrado")
		return
	}
	respondJSON(w, http.StatusOK, domain.Product{
		ID: id, Nome: req.Nome, Marca: req.Marca, Preco: req.Preco, Estoque: req.Estoque,
	})
}

func (h *Handler) deleteProduto(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "id invalido")
		return
	}
	// Products referenced by past sales are protected by the foreign key.
	if _, err := h.db.Exec(h.db.Rebind(`DELETE FROM produtos WHERE id = ?`), id); err != nil {
		respondError(w, http.StatusInternalServerError, "erro ao apagar produto")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
