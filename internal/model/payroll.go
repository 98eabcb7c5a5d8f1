package model

// CreatePayrollRequest represents request for POST /payrolls
type CreatePayrollRequest struct {
	Employee string `json:"employee" binding:"required"`
	Amount   string `json:"amount" binding:"required"`
}

// FormResponse represents the payroll creation form state
type FormResponse struct {
	State     string          `json:"state"`
	Message   string          `json:"message"`
	Employer  string          `json:"employer,omitempty"`
	Employee  string          `json:"employee"`
	Amount    string          `json:"amount"`
	Schedule  string          `json:"schedule"`
	CanSubmit bool            `json:"canSubmit"`
	Result    *PayrollCreated `json:"result,omitempty"`
	ErrorCode string          `json:"errorCode,omitempty"`
}

// PayrollCreated describes a confirmed vault creation
type PayrollCreated struct {
	TxHash        string `json:"txHash"`
	BlockNumber   uint64 `json:"blockNumber"`
	Vault         string `json:"vault,omitempty"`
	MonthlyAmount string `json:"monthlyAmount"`
	FirstPayment  int64  `json:"firstPayment"`
	Reference     string `json:"reference"`
}

// PayrollsResponse represents response for GET /payrolls
type PayrollsResponse struct {
	State    string   `json:"state"`
	Employer string   `json:"employer,omitempty"`
	Heading  string   `json:"heading,omitempty"`
	Message  string   `json:"message,omitempty"`
	Vaults   []string `json:"vaults"`
	Error    string   `json:"error,omitempty"`
}
