package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"crediario/m/domain"
)

type clienteRequest struct {
	Nome      string           `json:"nome"`
	CPF       string           `json:"cpf"`
	Endereco  string           `json:"endereco"`
	Escola    string           `json:"escola"`
	Telefones domain.PhoneList `json:"telefones"`
}

func (h *Handler) listClientes(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))

	clientes := []domain.Customer{}
	var err error
	if q == "" {
		err = h.db.Select(&clientes,
			`SELECT id, nome, cpf, endereco, escola, telefones FROM clientes ORDER BY nome ASC`)
	} else {
		like := "%" + strings.ToLower(q) + "%"
		err = h.db.Select(&clientes, h.db.Rebind(
			`SELECT id, nome, cpf, endereco, escola, telefones FROM clientes
				WHERE LOWER(nome) LIKE ? OR LOWER(cpf) LIKE ? OR LOWER(escola) LIKE ?
				ORDER BY nome ASC`), like, like, like)
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "erro ao buscar clientes")
		return
	}
	respondJSON(w, http.StatusOK, clientes)
}

func (h *Handler) createCliente(w http.ResponseWriter, r *http.Request) {
	var req clienteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Nome == "" {
		respondError(w, http.StatusBadRequest, "nome e obrigatorio")
		return
	}
	if req.Telefones == nil {
		req.Telefones = domain.PhoneList{}
	}

	var id int64
	err := h.db.QueryRowx(h.db.Rebind(
		`INSERT INTO clientes (nome, cpf, endereco, escola, telefones) VALUES (?, ?, ?, ?, ?) RETURNING id`),
		req.Nome, req.CPF, req.Endereco, req.Escola, req.Telefones).Scan(&id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "erro ao cadastrar cliente")
		return
	}
	respondJSON(w, http.StatusCreated, domain.Customer{
		ID: id, Nome: req.Nome, CPF: req.CPF, Endereco: req.Endereco,
		Escola: req.Escola, Telefones: req.Telefones,
	})
}

func (h *Handler) updateCliente(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "id invalido")
		return
	}
	var req clienteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Nome == "" {
		respondError(w, http.StatusBadRequest, "nome e obrigatorio")
		return
	}
	if req.Telefones == nil {
		req.Telefones = domain.PhoneList{}
	}

	res, err := h.db.Exec(h.db.Rebind(
		`UPDATE clientes SET nome = ?, cpf = ?, endereco = ?, escola = ?, telefones = ? WHERE id = ?`),
		req.Nome, req.CPF, req.Endereco, req.Escola, req.Telefones, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "erro ao atualizar cliente")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		respondError(w, http.StatusNotFound, "cliente nao encontrado")
		return
	}
	respondJSON(w, http.StatusOK, domain.Customer{
		ID: id, Nome: req.Nome, CPF: req.CPF, Endereco: req.Endereco,
		Escola: req.Escola, Telefones: req.Telefones,
	})
}

func (h *Handler) deleteCliente(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "id invalido")
		return
	}
	if err := h.ledger.DeleteCustomer(r.Context(), id); err != nil {
		respondError(w, http.StatusInternalServerError, "erro ao apagar cliente e seu historico")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) clienteHistorico(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "id invalido")
		return
	}
	history, err := h.ledger.CustomerHistory(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "erro ao buscar historico")
		return
	}
	respondJSON(w, http.StatusOK, history)
}

type observacaoRequest struct {
	Texto string `json:"texto"`
}

func (h *Handler) createObservacao(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "id invalido")
		return
	}
	var req observacaoRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Texto) == "" {
		respondError(w, http.StatusBadRequest, "texto e obrigatorio")
		return
	}

	dataHora := time.Now().UTC().Format(time.RFC3339)
	var obsID int64
	err = h.db.QueryRowx(h.db.Rebind(
		`INSERT INTO observacoes (cliente_id, texto, data_hora) VALUES (?, ?, ?) RETURNING id`),
		id, req.Texto, dataHora).Scan(&obsID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "erro ao salvar observacao")
		return
	}
	respondJSON(w, http.StatusCreated, domain.Observation{
		ID: obsID, ClienteID: id, Texto: req.Texto, DataHora: dataHora,
	})
}
