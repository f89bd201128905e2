package domain

import "strconv"

// Grade represents a single grade record as returned by the API.
type Grade struct {
	ID      int    `json:"id"`
	Subject string `json:"subject"`
	Grade   string `json:"grade"`
	Comment string `json:"comment"`
}

// Key returns the stable diff key for the grade record.
func (g Grade) Key() string {
	return strconv.Itoa(g.ID)
}
