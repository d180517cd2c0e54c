package model

// Account is a bank account that statements can be imported into.
type Account struct {
	ID          string
	Name        string
	Institution string
	Currency    string
	LastFour    string
}
