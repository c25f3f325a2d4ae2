package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// PhoneList is an ordered list of phone numbers, stored as a JSON array
// so the same column works on postgres and sqlite.
type PhoneList []string

func (p PhoneList) Value() (driver.Value, error) {
	if p == nil {
		p = PhoneList{}
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (p *PhoneList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*p = PhoneList{}
		return nil
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("cannot scan %T into PhoneList", src)
	}
}

type Customer struct {
	ID        int64     `db:"id" json:"id"`
	Nome      string    `db:"nome" json:"nome"`
	CPF       string    `db:"cpf" json:"cpf"`
	Endereco  string    `db:"endereco" json:"endereco"`
	Escola    string    `db:"escola" json:"escola"`
	Telefones PhoneList `db:"telefones" json:"telefones"`
}
