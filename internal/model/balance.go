package model

// BalanceResponse represents response for GET /employer/balance
type BalanceResponse struct {
	Employer string `json:"employer"`
	Token    string `json:"token"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
	Balance  string `json:"balance"`
	Raw      string `json:"raw"`
	// Native is the gas currency balance in ETH units.
	Native   string `json:"native"`
}
