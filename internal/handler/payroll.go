package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/AlexZinkM/payroll-employer/internal/common"
	"github.com/AlexZinkM/payroll-employer/internal/model"
	"github.com/AlexZinkM/payroll-employer/internal/session"
	"github.com/AlexZinkM/payroll-employer/payroll"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"
)

// Employer is the page service behind the HTTP API. *payroll.Employer implements it.
type Employer interface {
	Connect(ctx context.Context) (session.Snapshot, error)
	Disconnect(ctx context.Context) session.Snapshot
	Snapshot() session.Snapshot
	View() payroll.EmployerView
	FormStatus() payroll.FormStatus
	CreatePayroll(ctx context.Context, employee, amount string) (*payroll.Result, error)
	Payrolls(ctx context.Context, refresh bool) (payroll.ListView, error)
	Balance(ctx context.Context) (*model.BalanceResponse, error)
	QRCode() ([]byte, error)
}

// PayrollHandler serves the employer page over HTTP.
type PayrollHandler struct {
	employer Employer
	logger   *zap.Logger
}

func NewPayrollHandler(employer Employer, logger *zap.Logger) *PayrollHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PayrollHandler{employer: employer, logger: logger.Named("handler")}
}

// GetSession handles GET /session
// @Summary      Get wallet session
// @Description  Returns the current wallet session state
// @Tags         session
// @Produce      json
// @Success      200  {object}  model.SessionResponse
// @Router       /session [get]
func (h *PayrollHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(h.employer.Snapshot()))
}

// Connect handles POST /session/connect
// @Summary      Connect wallet
// @Description  Connects the configured wallet provider and switches it to the target chain
// @Tags         session
// @Produce      json
// @Success      200  {object}  model.SessionResponse
// @Failure      409  {object}  model.ErrorResponse
// @Router       /session/connect [post]
func (h *PayrollHandler) Connect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	snap, err := h.employer.Connect(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(snap))
}

// Disconnect handles POST /session/disconnect
// @Summary      Disconnect wallet
// @Description  Clears the wallet session; always succeeds
// @Tags         session
// @Produce      json
// @Success      200  {object}  model.SessionResponse
// @Router       /session/disconnect [post]
func (h *PayrollHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(h.employer.Disconnect(r.Context())))
}

// SessionQR handles GET /session/qr
// @Summary      Employer address QR code
// @Description  PNG QR code of the connected employer address
// @Tags         session
// @Produce      png
// @Success      200
// @Failure      409  {object}  model.ErrorResponse
// @Router       /session/qr [get]
func (h *PayrollHandler) SessionQR(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	png, err := h.employer.QRCode()
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// GetEmployer handles GET /employer
// @Summary      Employer page
// @Description  Session, creation form (when connected) and payroll list in one view
// @Tags         employer
// @Produce      json
// @Success      200  {object}  model.EmployerView
// @Router       /employer [get]
func (h *PayrollHandler) GetEmployer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	v := h.employer.View()
	resp := model.EmployerView{
		Welcome:       v.Welcome,
		Session:       toSessionResponse(v.Session),
		CanConnect:    v.CanConnect,
		CanDisconnect: v.CanDisconnect,
		Payrolls:      toPayrollsResponse(v.Payrolls),
	}
	if v.Form != nil {
		form := toFormResponse(*v.Form)
		resp.Form = &form
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetBalance handles GET /employer/balance
// @Summary      Employer token balance
// @Description  Payroll token balance of the connected employer
// @Tags         employer
// @Produce      json
// @Success      200  {object}  model.BalanceResponse
// @Failure      409  {object}  model.ErrorResponse
// @Failure      502  {object}  model.ErrorResponse
// @Router       /employer/balance [get]
func (h *PayrollHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	balance, err := h.employer.Balance(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

// Payrolls handles GET and POST /payrolls
func (h *PayrollHandler) Payrolls(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.ListPayrolls(w, r)
	case http.MethodPost:
		h.CreatePayroll(w, r)
	default:
		http.Error(w, "Method not allowed. Should be GET or POST", http.StatusMethodNotAllowed)
	}
}

// ListPayrolls handles GET /payrolls
// @Summary      List payroll vaults
// @Description  Vaults created by the connected employer
// @Tags         payrolls
// @Produce      json
// @Param        refresh  query     bool  false  "Reload from the factory before answering"
// @Success      200      {object}  model.PayrollsResponse
// @Failure      502      {object}  model.ErrorResponse
// @Router       /payrolls [get]
func (h *PayrollHandler) ListPayrolls(w http.ResponseWriter, r *http.Request) {
	refresh := r.URL.Query().Get("refresh") == "true"

	view, err := h.employer.Payrolls(r.Context(), refresh)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPayrollsResponse(view))
}

// CreatePayroll handles POST /payrolls
// @Summary      Create payroll vault
// @Description  Validates the input, simulates and sends createVault, then waits for the receipt
// @Tags         payrolls
// @Accept       json
// @Produce      json
// @Param        request  body      model.CreatePayrollRequest  true  "Employee and monthly amount"
// @Success      200      {object}  model.FormResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      409      {object}  model.ErrorResponse
// @Failure      422      {object}  model.ErrorResponse
// @Failure      502      {object}  model.ErrorResponse
// @Failure      504      {object}  model.ErrorResponse
// @Router       /payrolls [post]
func (h *PayrollHandler) CreatePayroll(w http.ResponseWriter, r *http.Request) {
	var req model.CreatePayrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: err.Error(), Code: string(model.KindValidation)})
		return
	}

	// a dropped client must not cut the confirmation wait of a broadcast transaction
	ctx := context.WithoutCancel(r.Context())
	if _, err := h.employer.CreatePayroll(ctx, req.Employee, req.Amount); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toFormResponse(h.employer.FormStatus()))
}

// GetForm handles GET /payrolls/form
// @Summary      Creation form state
// @Description  State machine step, message and fields of the payroll creation form
// @Tags         payrolls
// @Produce      json
// @Success      200  {object}  model.FormResponse
// @Router       /payrolls/form [get]
func (h *PayrollHandler) GetForm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, toFormResponse(h.employer.FormStatus()))
}

func (h *PayrollHandler) writeError(w http.ResponseWriter, err error) {
	kind := model.KindOf(err)
	status := statusForKind(kind)
	switch {
	case model.IsKind(err, model.KindConfirmationTimeout):
		h.logger.Warn("transaction sent but not confirmed in time, it may still be mined", zap.Error(err))
	case status >= http.StatusInternalServerError:
		h.logger.Error("request failed", zap.String("kind", string(kind)), zap.Error(err))
	}
	writeJSON(w, status, model.ErrorResponse{Error: model.UserMessage(err), Code: string(kind)})
}

func statusForKind(kind model.ErrorKind) int {
	switch kind {
	case model.KindValidation:
		return http.StatusBadRequest
	case model.KindConnection, model.KindChainSwitch, model.KindBusy:
		return http.StatusConflict
	case model.KindSimulation:
		return http.StatusUnprocessableEntity
	case model.KindSubmission, model.KindQuery:
		return http.StatusBadGateway
	case model.KindConfirmationTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func toSessionResponse(s session.Snapshot) model.SessionResponse {
	resp := model.SessionResponse{
		ID:       s.ID,
		Status:   string(s.Status),
		Provider: s.Provider,
	}
	if s.HasAccount() {
		resp.Account = s.Account.Hex()
	}
	if s.ChainID != nil {
		resp.ChainID = s.ChainID.String()
	}
	return resp
}

func toFormResponse(st payroll.FormStatus) model.FormResponse {
	resp := model.FormResponse{
		State:     string(st.State),
		Message:   st.Message,
		Employee:  st.Employee,
		Amount:    st.Amount,
		Schedule:  payroll.ScheduleMonthly,
		CanSubmit: st.CanSubmit,
		ErrorCode: string(st.ErrorKind),
	}
	if st.Connected {
		resp.Employer = st.Employer.Hex()
	}
	if st.Result != nil {
		resp.Result = &model.PayrollCreated{
			TxHash:        st.Result.TxHash.Hex(),
			BlockNumber:   st.Result.BlockNumber,
			MonthlyAmount: common.MicroToUSDT(st.Result.MonthlyAmount),
			FirstPayment:  st.Result.FirstPayment,
			Reference:     hexutil.Encode(st.Result.Reference[:]),
		}
		if st.Result.HasVault {
			resp.Result.Vault = st.Result.Vault.Hex()
		}
	}
	return resp
}

func toPayrollsResponse(v payroll.ListView) model.PayrollsResponse {
	resp := model.PayrollsResponse{
		State:   string(v.State),
		Heading: v.Heading,
		Message: v.Message,
		Vaults:  make([]string, 0, len(v.Vaults)),
		Error:   v.Error,
	}
	if v.State != payroll.ListNoAccount {
		resp.Employer = v.Employer.Hex()
	}
	for _, vault := range v.Vaults {
		resp.Vaults = append(resp.Vaults, vault.Hex())
	}
	return resp
}
