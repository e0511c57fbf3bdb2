package model

type Account struct {
	Index int
	Token string
}

// Masked returns a short, log-safe form of the session token.
func (a Account) Masked() string {
	const visible = 6
	if len(a.Token) <= visible {
		return "***"
	}
	return a.Token[:visible] + "***"
}

type Profile struct {
	Email   string
	RefCode string
}
