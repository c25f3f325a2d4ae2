package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"crediario/m/internal/ledger"
)

type vendaProdutoRequest struct {
	ID int64 `json:"id"`
	// Preco is accepted from the cart but never trusted: the total comes
	// from the persisted product price.
	Preco decimal.Decimal `json:"preco"`
}

type vendaRequest struct {
	Cliente struct {
		ID int64 `json:"id"`
	} `json:"cliente"`
	Produtos   []vendaProdutoRequest `json:"produtos"`
	Pagamento  string                `json:"pagamento"`
	Parcelas   int64                 `json:"parcelas"`
	Assinatura *string               `json:"assinatura,omitempty"`
	DataVenda  string                `json:"dataVenda,omitempty"`
}

func (h *Handler) createVenda(w http.ResponseWriter, r *http.Request) {
	// The register client posts whole customer/product rows plus its own
	// total. Decode leniently and keep only what the finalizer needs; the
	// total is always recomputed server-side.
	var req vendaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Cliente.ID == 0 || len(req.Produtos) == 0 {
		respondError(w, http.StatusBadRequest, "dados da venda incompletos")
		return
	}

	produtos := make([]int64, len(req.Produtos))
	for i, p := range req.Produtos {
		produtos[i] = p.ID
	}

	result, err := h.ledger.FinalizeSale(r.Context(), ledger.SaleInput{
		ClienteID:  req.Cliente.ID,
		UsuarioID:  userIDFromContext(r),
		Produtos:   produtos,
		Pagamento:  req.Pagamento,
		Parcelas:   req.Parcelas,
		Assinatura: req.Assinatura,
		DataVenda:  req.DataVenda,
	})
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"message": "Venda finalizada com sucesso!",
		"vendaId": result.VendaID,
	})
}

func (h *Handler) pagarParcela(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "id invalido")
		return
	}
	parcela, err := h.ledger.MarkInstallmentPaid(r.Context(), id)
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, parcela)
}
