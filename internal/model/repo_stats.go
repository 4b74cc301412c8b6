package model

type RepoStats struct {
	Stars        int     `json:"stars"`
	Forks        int     `json:"forks"`
	LastUpdated  string  `json:"lastUpdated"`
	Contributors int     `json:"contributors"`
	Language     *string `json:"language"`
	IsArchived   bool    `json:"isArchived"`
}
