package model

// SessionResponse represents response for GET /session and the connect/disconnect endpoints
type SessionResponse struct {
	ID       string `json:"id,omitempty"`
	Status   string `json:"status"`
	Account  string `json:"account,omitempty"`
	ChainID  string `json:"chainId,omitempty"`
	Provider string `json:"provider"`
}

// EmployerView represents response for GET /employer
type EmployerView struct {
	Welcome       string           `json:"welcome,omitempty"`
	Session       SessionResponse  `json:"session"`
	CanConnect    bool             `json:"canConnect"`
	CanDisconnect bool             `json:"canDisconnect"`
	Form          *FormResponse    `json:"form,omitempty"`
	Payrolls      PayrollsResponse `json:"payrolls"`
}
