package seed

import (
	"encoding/csv"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// LoadProducts ingests the CSV catalog (nome,marca,preco,estoque) into the
// produtos table. It runs only against an empty table so restarts never
// duplicate or reset stock.
func LoadProducts(db *sqlx.DB, csvPath string) {
	var count int
	if err := db.Get(&count, `SELECT COUNT(*) FROM produtos`); err != nil {
		log.Printf("unable to inspect product catalog: %v", err)
		return
	}
	if count > 0 {
		return
	}

	file, err := os.Open(csvPath)
	if err != nil {
		log.Printf("unable to load product catalog %s: %v", csvPath, err)
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	// Skip header
	if _, err := reader.Read(); err != nil {
		log.Printf("unable to read catalog header: %v", err)
		return
	}

	tx, err := db.Beginx()
	if err != nil {
		log.Printf("unable to start catalog transaction: %v", err)
		return
	}
	stmt, err := tx.Preparex(db.Rebind(`INSERT INTO produtos (nome, marca, preco, estoque) VALUES (?, ?, ?, ?)`))
	if err != nil {
		log.Printf("unable to prepare catalog insert: %v", err)
		_ = tx.Rollback()
		return
	}
	defer stmt.Close()

	rows := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("unable to read catalog row: %v", err)
			continue
		}
		if len(record) < 4 {
			continue
		}
		nome := strings.TrimSpace(record[0])
		marca := strings.TrimSpace(record[1])
		if nome == "" {
			continue
		}
		preco, err := decimal.NewFromString(strings.TrimSpace(record[2]))
		if err != nil {
			log.Printf("invalid price for %s: %v", nome, err)
			continue
		}
		estoque, err := strconv.ParseInt(strings.TrimSpace(record[3]), 10, 64)
		if err != nil || estoque < 0 {
			log.Printf("invalid stock for %s", nome)
			continue
		}

		if _, err := stmt.Exec(nome, marca, preco, estoque); err != nil {
			log.Printf("unable to insert product %s: %v", nome, err)
		} else {
			rows++
		}
	}

	if err := tx.Commit(); err != nil {
		log.Printf("unable to commit product catalog: %v", err)
	} else {
		log.Printf("seeded product catalog with %d rows", rows)
	}
}
