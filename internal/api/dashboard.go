package api

import (
	"net/http"
	"strconv"
	"time"
)

type mesDisponivel struct {
	Mes time.Time `json:"mes"`
}

func (h *Handler) mesesDisponiveis(w http.ResponseWriter, r *http.Request) {
	months, err := h.ledger.AvailableMonths(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "erro ao buscar meses disponiveis")
		return
	}
	payload := make([]mesDisponivel, len(months))
	for i, m := range months {
		payload[i] = mesDisponivel{Mes: m}
	}
	respondJSON(w, http.StatusOK, payload)
}

func (h *Handler) previsaoMensal(w http.ResponseWriter, r *http.Request) {
	mes, errMes := strconv.Atoi(r.URL.Query().Get("mes"))
	ano, errAno := strconv.Atoi(r.URL.Query().Get("ano"))
	if errMes != nil || errAno != nil || mes < 1 || mes > 12 {
		respondError(w, http.StatusBadRequest, "mes e ano sao obrigatorios")
		return
	}

	total, err := h.ledger.MonthlyReceivable(r.Context(), mes, ano)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "erro ao buscar previsao mensal")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"total": total})
}

func (h *Handler) clientesAtrasados(w http.ResponseWriter, r *http.Request) {
	clientes, err := h.ledger.OverdueCustomers(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "erro ao buscar clientes atrasados")
		return
	}
	respondJSON(w, http.StatusOK, clientes)
}
