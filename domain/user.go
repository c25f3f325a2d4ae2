package domain

type User struct {
	ID       int64  `json:"id" db:"id"`
	Nome     string `json:"nome" db:"nome"`
	Email    string `json:"email" db:"email"`
	Senha    string `json:"senha,omitempty" db:"senha"`
	CriadoEm string `json:"criado_em,omitempty" db:"criado_em"`
}
