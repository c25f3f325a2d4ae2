package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"crediario/m/domain"
	"crediario/m/internal/database"
	"crediario/m/internal/ledger"
	"crediario/m/internal/migrations"
)

type testServer struct {
	t      *testing.T
	server *httptest.Server
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Apply(db); err != nil {
		t.Fatalf("applying schema: %v", err)
	}

	handler := New(db, ledger.New(db), "test_secret")
	server := httptest.NewServer(handler.Router())
	t.Cleanup(server.Close)

	ts := &testServer{t: t, server: server}

	status, body := ts.do("POST", "/auth/register", map[string]string{
		"nome": "Operadora", "email": "loja@example.com", "senha": "segredo123",
	})
	if status != http.StatusCreated {
		t.Fatalf("register returned %d: %s", status, body)
	}
	var auth struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &auth); err != nil || auth.Token == "" {
		t.Fatalf("register response missing token: %s", body)
	}
	ts.token = auth.Token
	return ts
}

func (ts *testServer) do(method, path string, payload any) (int, []byte) {
	ts.t.Helper()
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			ts.t.Fatalf("encoding request: %v", err)
		}
	}
	req, err := http.NewRequest(method, ts.server.URL+path, &body)
	if err != nil {
		ts.t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if ts.token != "" {
		req.Header.Set("Authorization", "Bearer "+ts.token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		ts.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	var out bytes.Buffer
	if _, err := out.ReadFrom(resp.Body); err != nil {
		ts.t.Fatalf("reading response: %v", err)
	}
	return resp.StatusCode, out.Bytes()
}

func (ts *testServer) createCliente(nome string) int64 {
	ts.t.Helper()
	status, body := ts.do("POST", "/api/clientes", map[string]any{
		"nome": nome, "cpf": "123.456.789-00", "endereco": "Rua A", "escola": "Colegio B",
		"telefones": []string{"11 99999-0000"},
	})
	if status != http.StatusCreated {
		ts.t.Fatalf("createCliente returned %d: %s", status, body)
	}
	var cliente domain.Customer
	if err := json.Unmarshal(body, &cliente); err != nil {
		ts.t.Fatalf("decoding cliente: %v", err)
	}
	return cliente.ID
}

func (ts *testServer) createProduto(nome, preco string, estoque int64) int64 {
	ts.t.Helper()
	status, body := ts.do("POST", "/api/produtos", map[string]any{
		"nome": nome, "marca": "Generica", "preco": preco, "estoque": estoque,
	})
	if status != http.StatusCreated {
		ts.t.Fatalf("createProduto returned %d: %s", status, body)
	}
	var produto domain.Product
	if err := json.Unmarshal(body, &produto); err != nil {
		ts.t.Fatalf("decoding produto: %v", err)
	}
	return produto.ID
}

func (ts *testServer) estoqueDe(produtoID int64) int64 {
	ts.t.Helper()
	status, body := ts.do("GET", "/api/produtos", nil)
	if status != http.StatusOK {
		ts.t.Fatalf("listProdutos returned %d: %s", status, body)
	}
	var produtos []domain.Product
	if err := json.Unmarshal(body, &produtos); err != nil {
		ts.t.Fatalf("decoding produtos: %v", err)
	}
	for _, p := range produtos {
		if p.ID == produtoID {
			return p.Estoque
		}
	}
	ts.t.Fatalf("produto %d not found", produtoID)
	return 0
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)
	ts.token = ""
	status, _ := ts.do("GET", "/api/produtos", nil)
	if status != http.StatusUnauthorized {
		t.Errorf("got %d without token, want 401", status)
	}
}

func TestVendaCrediarioEndToEnd(t *testing.T) {
	ts := newTestServer(t)
	clienteID := ts.createCliente("Maria")
	produtoA := ts.createProduto("Caderno", "10.00", 5)
	produtoB := ts.createProduto("Caneta", "5.00", 4)

	status, body := ts.do("POST", "/api/vendas", map[string]any{
		"cliente": map[string]any{"id": clienteID},
		"produtos": []map[string]any{
			{"id": produtoA, "preco": "0.01"}, // client price is ignored
			{"id": produtoA, "preco": "0.01"},
			{"id": produtoB, "preco": "0.01"},
		},
		"pagamento": "crediario",
		"parcelas":  2,
	})
	if status != http.StatusCreated {
		t.Fatalf("createVenda returned %d: %s", status, body)
	}
	var created struct {
		Message string `json:"message"`
		VendaID int64  `json:"vendaId"`
	}
	if err := json.Unmarshal(body, &created); err != nil || created.VendaID == 0 {
		t.Fatalf("bad venda response: %s", body)
	}

	if got := ts.estoqueDe(produtoA); got != 3 {
		t.Errorf("produto A estoque = %d, want 3", got)
	}
	if got := ts.estoqueDe(produtoB); got != 3 {
		t.Errorf("produto B estoque = %d, want 3", got)
	}

	status, body = ts.do("GET", fmt.Sprintf("/api/clientes/%d/historico", clienteID), nil)
	if status != http.StatusOK {
		t.Fatalf("historico returned %d: %s", status, body)
	}
	var history ledger.History
	if err := json.Unmarshal(body, &history); err != nil {
		t.Fatalf("decoding historico: %v", err)
	}
	if len(history.Vendas) != 1 {
		t.Fatalf("got %d vendas in history, want 1", len(history.Vendas))
	}
	venda := history.Vendas[0]
	if !venda.Total.Equal(decimal.RequireFromString("25.00")) {
		t.Errorf("total = %s, want 25.00 regardless of client prices", venda.Total)
	}
	if len(venda.DetalheParcelas) != 2 {
		t.Fatalf("got %d installments, want 2", len(venda.DetalheParcelas))
	}
	for i, p := range venda.DetalheParcelas {
		if !p.Valor.Equal(decimal.RequireFromString("12.50")) {
			t.Errorf("parcela %d = %s, want 12.50", i, p.Valor)
		}
	}
}

func TestVendaAcceptsFullClientPayload(t *testing.T) {
	ts := newTestServer(t)
	clienteID := ts.createCliente("Beatriz")
	produtoID := ts.createProduto("Estojo", "12.50", 5)

	// The register client posts entire rows and a client-side total.
	// The extra fields are tolerated and the total recomputed.
	status, body := ts.do("POST", "/api/vendas", map[string]any{
		"cliente": map[string]any{
			"id": clienteID, "nome": "Beatriz", "cpf": "123.456.789-00",
			"endereco": "Rua A", "escola": "Colegio B",
			"telefones": []string{"11 99999-0000"},
		},
		"produtos": []map[string]any{
			{"id": produtoID, "nome": "Estojo", "marca": "Generica",
				"preco": "1.00", "estoque": 5},
			{"id": produtoID, "nome": "Estojo", "marca": "Generica",
				"preco": "1.00", "estoque": 5},
		},
		"pagamento": "dinheiro",
		"total":     "2.00",
	})
	if status != http.StatusCreated {
		t.Fatalf("createVenda returned %d: %s", status, body)
	}

	status, body = ts.do("GET", fmt.Sprintf("/api/clientes/%d/historico", clienteID), nil)
	if status != http.StatusOK {
		t.Fatalf("historico returned %d", status)
	}
	var history ledger.History
	if err := json.Unmarshal(body, &history); err != nil {
		t.Fatalf("decoding historico: %v", err)
	}
	if len(history.Vendas) != 1 {
		t.Fatalf("got %d vendas, want 1", len(history.Vendas))
	}
	venda := history.Vendas[0]
	if !venda.Total.Equal(decimal.RequireFromString("25.00")) {
		t.Errorf("total = %s, want 25.00 recomputed from catalog prices", venda.Total)
	}
	if venda.UsuarioID == nil || *venda.UsuarioID != 1 {
		t.Errorf("usuario_id = %v, want the authenticated operator", venda.UsuarioID)
	}
}

func TestVendaValidation(t *testing.T) {
	ts := newTestServer(t)
	clienteID := ts.createCliente("Joana")
	produtoID := ts.createProduto("Regua", "3.00", 2)

	status, _ := ts.do("POST", "/api/vendas", map[string]any{
		"cliente":  map[string]any{"id": clienteID},
		"produtos": []map[string]any{},
	})
	if status != http.StatusBadRequest {
		t.Errorf("empty cart returned %d, want 400", status)
	}

	status, _ = ts.do("POST", "/api/vendas", map[string]any{
		"cliente":   map[string]any{"id": clienteID},
		"produtos":  []map[string]any{{"id": produtoID, "preco": "3.00"}},
		"pagamento": "cheque",
	})
	if status != http.StatusBadRequest {
		t.Errorf("unknown payment method returned %d, want 400", status)
	}

	status, _ = ts.do("POST", "/api/vendas", map[string]any{
		"produtos": []map[string]any{{"id": 1, "preco": "1.00"}},
	})
	if status != http.StatusBadRequest {
		t.Errorf("missing customer returned %d, want 400", status)
	}
}

func TestPagarParcela(t *testing.T) {
	ts := newTestServer(t)
	clienteID := ts.createCliente("Ana")
	produtoID := ts.createProduto("Mochila", "100.00", 3)

	status, body := ts.do("POST", "/api/vendas", map[string]any{
		"cliente":   map[string]any{"id": clienteID},
		"produtos":  []map[string]any{{"id": produtoID, "preco": "100.00"}},
		"pagamento": "crediario",
		"parcelas":  2,
	})
	if status != http.StatusCreated {
		t.Fatalf("createVenda returned %d: %s", status, body)
	}

	status, body = ts.do("GET", fmt.Sprintf("/api/clientes/%d/historico", clienteID), nil)
	if status != http.StatusOK {
		t.Fatalf("historico returned %d", status)
	}
	var history ledger.History
	if err := json.Unmarshal(body, &history); err != nil {
		t.Fatalf("decoding historico: %v", err)
	}
	parcelaID := history.Vendas[0].DetalheParcelas[0].ID

	for range 2 { // second call is an idempotent no-op
		status, body = ts.do("PATCH", fmt.Sprintf("/api/parcelas/%d/pagar", parcelaID), nil)
		if status != http.StatusOK {
			t.Fatalf("pagarParcela returned %d: %s", status, body)
		}
		var parcela domain.Installment
		if err := json.Unmarshal(body, &parcela); err != nil {
			t.Fatalf("decoding parcela: %v", err)
		}
		if parcela.Status != domain.ParcelaPaga {
			t.Errorf("status = %s, want paga", parcela.Status)
		}
	}

	status, _ = ts.do("PATCH", "/api/parcelas/9999/pagar", nil)
	if status != http.StatusNotFound {
		t.Errorf("unknown parcela returned %d, want 404", status)
	}
}

func TestDashboard(t *testing.T) {
	ts := newTestServer(t)
	clienteID := ts.createCliente("Carla")
	produtoID := ts.createProduto("Agenda", "90.00", 5)

	status, _ := ts.do("GET", "/api/dashboard/previsao-mensal", nil)
	if status != http.StatusBadRequest {
		t.Errorf("previsao without params returned %d, want 400", status)
	}

	status, body := ts.do("GET", "/api/dashboard/previsao-mensal?mes=12&ano=2030", nil)
	if status != http.StatusOK {
		t.Fatalf("previsao returned %d: %s", status, body)
	}
	var previsao struct {
		Total decimal.Decimal `json:"total"`
	}
	if err := json.Unmarshal(body, &previsao); err != nil {
		t.Fatalf("decoding previsao: %v", err)
	}
	if !previsao.Total.IsZero() {
		t.Errorf("empty month total = %s, want 0", previsao.Total)
	}

	status, body = ts.do("POST", "/api/vendas", map[string]any{
		"cliente":   map[string]any{"id": clienteID},
		"produtos":  []map[string]any{{"id": produtoID, "preco": "90.00"}},
		"pagamento": "crediario",
		"parcelas":  3,
		"dataVenda": "2020-01-10",
	})
	if status != http.StatusCreated {
		t.Fatalf("createVenda returned %d: %s", status, body)
	}

	status, body = ts.do("GET", "/api/dashboard/meses-disponiveis", nil)
	if status != http.StatusOK {
		t.Fatalf("meses-disponiveis returned %d", status)
	}
	var meses []struct {
		Mes string `json:"mes"`
	}
	if err := json.Unmarshal(body, &meses); err != nil {
		t.Fatalf("decoding meses: %v", err)
	}
	if len(meses) != 3 {
		t.Fatalf("got %d months, want 3 (%s)", len(meses), body)
	}
	if meses[0].Mes != "2020-02-01T00:00:00Z" {
		t.Errorf("first month = %s, want 2020-02-01T00:00:00Z", meses[0].Mes)
	}

	// The 2020 schedule is long overdue, so the customer shows up late.
	status, body = ts.do("GET", "/api/dashboard/clientes-atrasados", nil)
	if status != http.StatusOK {
		t.Fatalf("clientes-atrasados returned %d", status)
	}
	var atrasados []ledger.OverdueCustomer
	if err := json.Unmarshal(body, &atrasados); err != nil {
		t.Fatalf("decoding atrasados: %v", err)
	}
	if len(atrasados) != 1 || atrasados[0].ID != clienteID {
		t.Errorf("atrasados = %+v, want only cliente %d", atrasados, clienteID)
	}
}

func TestDeleteClienteRestoresStock(t *testing.T) {
	ts := newTestServer(t)
	clienteID := ts.createCliente("Sofia")
	produtoC := ts.createProduto("Lapis", "15.50", 4)

	status, body := ts.do("POST", "/api/vendas", map[string]any{
		"cliente":   map[string]any{"id": clienteID},
		"produtos":  []map[string]any{{"id": produtoC, "preco": "15.50"}},
		"pagamento": "dinheiro",
	})
	if status != http.StatusCreated {
		t.Fatalf("createVenda returned %d: %s", status, body)
	}
	if got := ts.estoqueDe(produtoC); got != 3 {
		t.Fatalf("estoque after sale = %d, want 3", got)
	}

	status, _ = ts.do("DELETE", fmt.Sprintf("/api/clientes/%d", clienteID), nil)
	if status != http.StatusNoContent {
		t.Fatalf("deleteCliente returned %d", status)
	}
	if got := ts.estoqueDe(produtoC); got != 4 {
		t.Errorf("estoque after delete = %d, want 4", got)
	}

	status, body = ts.do("GET", "/api/clientes", nil)
	if status != http.StatusOK {
		t.Fatalf("listClientes returned %d", status)
	}
	var clientes []domain.Customer
	if err := json.Unmarshal(body, &clientes); err != nil {
		t.Fatalf("decoding clientes: %v", err)
	}
	if len(clientes) != 0 {
		t.Errorf("clientes after delete = %+v, want none", clientes)
	}
}

func TestObservacoes(t *testing.T) {
	ts := newTestServer(t)
	clienteID := ts.createCliente("Helena")

	status, body := ts.do("POST", fmt.Sprintf("/api/clientes/%d/observacoes", clienteID),
		map[string]string{"texto": "prefere boleto"})
	if status != http.StatusCreated {
		t.Fatalf("createObservacao returned %d: %s", status, body)
	}

	status, body = ts.do("GET", fmt.Sprintf("/api/clientes/%d/historico", clienteID), nil)
	if status != http.StatusOK {
		t.Fatalf("historico returned %d", status)
	}
	var history ledger.History
	if err := json.Unmarshal(body, &history); err != nil {
		t.Fatalf("decoding historico: %v", err)
	}
	if len(history.Observacoes) != 1 || history.Observacoes[0].Texto != "prefere boleto" {
		t.Errorf("observacoes = %+v", history.Observacoes)
	}
}

func TestClienteSearch(t *testing.T) {
	ts := newTestServer(t)
	ts.createCliente("Maria Souza")
	status, body := ts.do("POST", "/api/clientes", map[string]any{
		"nome": "Pedro Lima", "cpf": "999", "endereco": "", "escola": "Colegio C",
		"telefones": []string{},
	})
	if status != http.StatusCreated {
		t.Fatalf("createCliente returned %d: %s", status, body)
	}

	status, body = ts.do("GET", "/api/clientes?q=pedro", nil)
	if status != http.StatusOK {
		t.Fatalf("search returned %d", status)
	}
	var clientes []domain.Customer
	if err := json.Unmarshal(body, &clientes); err != nil {
		t.Fatalf("decoding clientes: %v", err)
	}
	if len(clientes) != 1 || clientes[0].Nome != "Pedro Lima" {
		t.Errorf("search result = %+v, want Pedro Lima", clientes)
	}
}
