package migrations

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
)

// Run creates the database schema. Timestamps and due dates are text
// (RFC 3339 / YYYY-MM-DD) and money columns are decimal text, so the same
// queries behave identically on postgres and sqlite.
func Run(db *sqlx.DB) {
	if err := Apply(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
}

// Apply runs the schema statements and returns the first failure.
func Apply(db *sqlx.DB) error {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if db.DriverName() == "pgx" {
		serial = "SERIAL PRIMARY KEY"
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS usuarios (
			id ` + serial + `,
			nome TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			senha TEXT NOT NULL,
			criado_em TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS clientes (
			id ` + serial + `,
			nome TEXT NOT NULL,
			cpf TEXT,
			endereco TEXT,
			escola TEXT,
			telefones TEXT NOT NULL DEFAULT '[]'
		);`,
		`CREATE TABLE IF NOT EXISTS produtos (
			id ` + serial + `,
			nome TEXT NOT NULL,
			marca TEXT,
			preco TEXT NOT NULL,
			estoque INTEGER NOT NULL DEFAULT 0 CHECK (estoque >= 0)
		);`,
		`CREATE TABLE IF NOT EXISTS vendas (
			id ` + serial + `,
			cliente_id INTEGER NOT NULL REFERENCES clientes(id),
			usuario_id INTEGER REFERENCES usuarios(id),
			total TEXT NOT NULL,
			pagamento TEXT NOT NULL,
			parcelas INTEGER NOT NULL DEFAULT 1,
			assinatura TEXT,
			data_hora TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS vendas_produtos (
			id ` + serial + `,
			venda_id INTEGER NOT NULL REFERENCES vendas(id) ON DELETE CASCADE,
			produto_id INTEGER NOT NULL REFERENCES produtos(id),
			quantidade INTEGER NOT NULL,
			preco_unitario TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS parcelas_crediario (
			id ` + serial + `,
			venda_id INTEGER NOT NULL REFERENCES vendas(id) ON DELETE CASCADE,
			valor TEXT NOT NULL,
			data_vencimento TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pendente'
		);`,
		`CREATE TABLE IF NOT EXISTS observacoes (
			id ` + serial + `,
			cliente_id INTEGER NOT NULL REFERENCES clientes(id),
			texto TEXT NOT NULL,
			data_hora TEXT NOT NULL
		);`,
	}

	for i, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}
