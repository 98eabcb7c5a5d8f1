package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AlexZinkM/payroll-employer/internal/model"
	"github.com/AlexZinkM/payroll-employer/internal/session"
	"github.com/AlexZinkM/payroll-employer/payroll"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var (
	employerAddr = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	vaultAddr    = common.HexToAddress("0x00000000000000000000000000000000000000aa")
)

// MockEmployer answers with whatever the test puts into its function fields.
type MockEmployer struct {
	ConnectFunc       func() (session.Snapshot, error)
	SnapshotValue     session.Snapshot
	ViewValue         payroll.EmployerView
	FormValue         payroll.FormStatus
	CreatePayrollFunc func(employee, amount string) (*payroll.Result, error)
	PayrollsFunc      func(refresh bool) (payroll.ListView, error)
	BalanceFunc       func() (*model.BalanceResponse, error)
	QRCodeFunc        func() ([]byte, error)

	createCtx context.Context
}

func (m *MockEmployer) Connect(context.Context) (session.Snapshot, error) { return m.ConnectFunc() }

func (m *MockEmployer) Disconnect(context.Context) session.Snapshot {
	return session.Snapshot{Status: session.StatusDisconnected, Provider: "keystore"}
}

func (m *MockEmployer) Snapshot() session.Snapshot      { return m.SnapshotValue }
func (m *MockEmployer) View() payroll.EmployerView      { return m.ViewValue }
func (m *MockEmployer) FormStatus() payroll.FormStatus { return m.FormValue }

func (m *MockEmployer) CreatePayroll(ctx context.Context, employee, amount string) (*payroll.Result, error) {
	m.createCtx = ctx
	return m.CreatePayrollFunc(employee, amount)
}

func (m *MockEmployer) Payrolls(_ context.Context, refresh bool) (payroll.ListView, error) {
	return m.PayrollsFunc(refresh)
}

func (m *MockEmployer) Balance(context.Context) (*model.BalanceResponse, error) { return m.BalanceFunc() }

func (m *MockEmployer) QRCode() ([]byte, error) { return m.QRCodeFunc() }

func connectedSnapshot() session.Snapshot {
	return session.Snapshot{
		ID:       "0b6f3c1e-3f51-4a38-9d2b-6c7a1b9e2f10",
		Status:   session.StatusConnected,
		Account:  employerAddr,
		ChainID:  big.NewInt(31337),
		Provider: "keystore",
	}
}

func decodeError(t *testing.T, recorder *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var resp model.ErrorResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	return resp
}

func TestConnect(t *testing.T) {
	tests := []struct {
		name      string
		mockSetup func() *MockEmployer
		assert    func(t *testing.T, recorder *httptest.ResponseRecorder)
	}{
		{
			name: "success",
			mockSetup: func() *MockEmployer {
				return &MockEmployer{ConnectFunc: func() (session.Snapshot, error) { return connectedSnapshot(), nil }}
			},
			assert: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusOK, recorder.Code)
				assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))

				var resp model.SessionResponse
				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
				assert.Equal(t, "connected", resp.Status)
				assert.Equal(t, employerAddr.Hex(), resp.Account)
				assert.Equal(t, "31337", resp.ChainID)
				assert.Equal(t, "keystore", resp.Provider)
				assert.NotEmpty(t, resp.ID)
			},
		},
		{
			name: "wallet_rejected",
			mockSetup: func() *MockEmployer {
				return &MockEmployer{ConnectFunc: func() (session.Snapshot, error) {
					return session.Snapshot{Status: session.StatusDisconnected}, model.NewError(model.KindConnection, "wallet refused to connect: User rejected the request.", nil)
				}}
			},
			assert: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusConflict, recorder.Code)
				resp := decodeError(t, recorder)
				assert.Equal(t, "CONNECTION", resp.Code)
				assert.Equal(t, "wallet refused to connect: User rejected the request.", resp.Error)
			},
		},
		{
			name: "chain_switch_rejected",
			mockSetup: func() *MockEmployer {
				return &MockEmployer{ConnectFunc: func() (session.Snapshot, error) {
					return session.Snapshot{}, model.NewError(model.KindChainSwitch, "failed to switch to chain 31337", nil)
				}}
			},
			assert: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusConflict, recorder.Code)
				assert.Equal(t, "CHAIN_SWITCH", decodeError(t, recorder).Code)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewPayrollHandler(tt.mockSetup(), nil)

			req := httptest.NewRequest(http.MethodPost, "/session/connect", nil)
			recorder := httptest.NewRecorder()

			handler.Connect(recorder, req)

			tt.assert(t, recorder)
		})
	}
}

func TestSessionMethodNotAllowed(t *testing.T) {
	handler := NewPayrollHandler(&MockEmployer{}, nil)

	recorder := httptest.NewRecorder()
	handler.Connect(recorder, httptest.NewRequest(http.MethodGet, "/session/connect", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, recorder.Code)

	recorder = httptest.NewRecorder()
	handler.GetSession(recorder, httptest.NewRequest(http.MethodPost, "/session", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, recorder.Code)
}

func TestDisconnect(t *testing.T) {
	handler := NewPayrollHandler(&MockEmployer{}, nil)

	recorder := httptest.NewRecorder()
	handler.Disconnect(recorder, httptest.NewRequest(http.MethodPost, "/session/disconnect", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	var resp model.SessionResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.Equal(t, "disconnected", resp.Status)
	assert.Empty(t, resp.Account)
	assert.Empty(t, resp.ID)
}

func TestCreatePayroll(t *testing.T) {
	tests := []struct {
		name      string
		mockSetup func() *MockEmployer
		body      string
		assert    func(t *testing.T, recorder *httptest.ResponseRecorder)
	}{
		{
			name: "success",
			mockSetup: func() *MockEmployer {
				result := &payroll.Result{
					TxHash:        common.HexToHash("0xabc"),
					BlockNumber:   12,
					Vault:         vaultAddr,
					HasVault:      true,
					MonthlyAmount: big.NewInt(1_500_000_000),
					FirstPayment:  1_762_592_000,
					Reference:     [32]byte{0xff},
				}
				return &MockEmployer{
					CreatePayrollFunc: func(employee, amount string) (*payroll.Result, error) {
						if employee != "0x70997970C51812dc3A010C7d01b50e0d17dc79C8" || amount != "1500" {
							return nil, model.NewError(model.KindValidation, "unexpected input", nil)
						}
						return result, nil
					},
					FormValue: payroll.FormStatus{
						State:     payroll.FormSuccess,
						Message:   "Payroll created. Block 12.",
						Employer:  employerAddr,
						Connected: true,
						CanSubmit: true,
						Result:    result,
					},
				}
			},
			body: `{"employee":"0x70997970C51812dc3A010C7d01b50e0d17dc79C8","amount":"1500"}`,
			assert: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusOK, recorder.Code)

				var resp model.FormResponse
				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
				assert.Equal(t, "success", resp.State)
				assert.Equal(t, "Payroll created. Block 12.", resp.Message)
				assert.Equal(t, employerAddr.Hex(), resp.Employer)
				assert.Equal(t, "monthly", resp.Schedule)
				require.NotNil(t, resp.Result)
				assert.Equal(t, uint64(12), resp.Result.BlockNumber)
				assert.Equal(t, vaultAddr.Hex(), resp.Result.Vault)
				assert.Equal(t, "1500.000000", resp.Result.MonthlyAmount)
				assert.Equal(t, int64(1_762_592_000), resp.Result.FirstPayment)
				assert.Len(t, resp.Result.Reference, 66)
				assert.Equal(t, common.HexToHash("0xabc").Hex(), resp.Result.TxHash)
			},
		},
		{
			name:      "invalid_json",
			mockSetup: func() *MockEmployer { return &MockEmployer{} },
			body:      `{"employee":`,
			assert: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusBadRequest, recorder.Code)
				assert.Equal(t, "VALIDATION", decodeError(t, recorder).Code)
			},
		},
		{
			name: "invalid_amount",
			mockSetup: func() *MockEmployer {
				return &MockEmployer{CreatePayrollFunc: func(string, string) (*payroll.Result, error) {
					return nil, model.NewError(model.KindValidation, "Amount must be a number like 1500 or 1500.25.", nil)
				}}
			},
			body: `{"employee":"0x70997970C51812dc3A010C7d01b50e0d17dc79C8","amount":"abc"}`,
			assert: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusBadRequest, recorder.Code)
				assert.Equal(t, "Amount must be a number like 1500 or 1500.25.", decodeError(t, recorder).Error)
			},
		},
		{
			name: "not_connected",
			mockSetup: func() *MockEmployer {
				return &MockEmployer{CreatePayrollFunc: func(string, string) (*payroll.Result, error) {
					return nil, model.NewError(model.KindConnection, "Connect your wallet first.", nil)
				}}
			},
			body: `{"employee":"0x70997970C51812dc3A010C7d01b50e0d17dc79C8","amount":"1500"}`,
			assert: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusConflict, recorder.Code)
				assert.Equal(t, "CONNECTION", decodeError(t, recorder).Code)
			},
		},
		{
			name: "reverted",
			mockSetup: func() *MockEmployer {
				return &MockEmployer{CreatePayrollFunc: func(string, string) (*payroll.Result, error) {
					return nil, model.NewError(model.KindSimulation, "PayrollFactory: insufficient allowance", nil)
				}}
			},
			body: `{"employee":"0x70997970C51812dc3A010C7d01b50e0d17dc79C8","amount":"1500"}`,
			assert: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
				resp := decodeError(t, recorder)
				assert.Equal(t, "SIMULATION", resp.Code)
				assert.Equal(t, "PayrollFactory: insufficient allowance", resp.Error)
			},
		},
		{
			name: "busy",
			mockSetup: func() *MockEmployer {
				return &MockEmployer{CreatePayrollFunc: func(string, string) (*payroll.Result, error) {
					return nil, payroll.ErrSubmitInProgress
				}}
			},
			body: `{"employee":"0x70997970C51812dc3A010C7d01b50e0d17dc79C8","amount":"1500"}`,
			assert: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusConflict, recorder.Code)
				assert.Equal(t, "BUSY", decodeError(t, recorder).Code)
			},
		},
		{
			name: "confirmation_timeout",
			mockSetup: func() *MockEmployer {
				return &MockEmployer{CreatePayrollFunc: func(string, string) (*payroll.Result, error) {
					return nil, model.NewError(model.KindConfirmationTimeout, "transaction not confirmed", context.DeadlineExceeded)
				}}
			},
			body: `{"employee":"0x70997970C51812dc3A010C7d01b50e0d17dc79C8","amount":"1500"}`,
			assert: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusGatewayTimeout, recorder.Code)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewPayrollHandler(tt.mockSetup(), nil)

			req := httptest.NewRequest(http.MethodPost, "/payrolls", bytes.NewReader([]byte(tt.body)))
			req.Header.Set("Content-Type", "application/json")
			recorder := httptest.NewRecorder()

			handler.Payrolls(recorder, req)

			tt.assert(t, recorder)
		})
	}
}

func TestCreatePayrollOutlivesClientDisconnect(t *testing.T) {
	mock := &MockEmployer{
		CreatePayrollFunc: func(string, string) (*payroll.Result, error) {
			return &payroll.Result{BlockNumber: 3}, nil
		},
		FormValue: payroll.FormStatus{State: payroll.FormSuccess, Connected: true, Employer: employerAddr},
	}
	h := NewPayrollHandler(mock, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	body := bytes.NewBufferString(`{"employee":"0x70997970C51812dc3A010C7d01b50e0d17dc79C8","amount":"1500"}`)
	req := httptest.NewRequest(http.MethodPost, "/payrolls", body).WithContext(ctx)
	recorder := httptest.NewRecorder()
	h.Payrolls(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	require.NotNil(t, mock.createCtx)
	assert.NoError(t, mock.createCtx.Err())
}

func TestCreatePayrollConfirmationTimeoutIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	mock := &MockEmployer{
		CreatePayrollFunc: func(string, string) (*payroll.Result, error) {
			return nil, model.NewError(model.KindConfirmationTimeout, "transaction 0xabc not confirmed", context.DeadlineExceeded)
		},
	}
	h := NewPayrollHandler(mock, zap.New(core))

	body := bytes.NewBufferString(`{"employee":"0x70997970C51812dc3A010C7d01b50e0d17dc79C8","amount":"1500"}`)
	recorder := httptest.NewRecorder()
	h.Payrolls(recorder, httptest.NewRequest(http.MethodPost, "/payrolls", body))

	assert.Equal(t, http.StatusGatewayTimeout, recorder.Code)
	assert.Equal(t, string(model.KindConfirmationTimeout), decodeError(t, recorder).Code)
	assert.Equal(t, 1, logs.FilterMessageSnippet("not confirmed in time").Len())
}

func TestListPayrolls(t *testing.T) {
	var gotRefresh bool
	mock := &MockEmployer{PayrollsFunc: func(refresh bool) (payroll.ListView, error) {
		gotRefresh = refresh
		return payroll.ListView{
			State:    payroll.ListLoaded,
			Employer: employerAddr,
			Heading:  "Payrolls for 0xf39F…2266",
			Vaults:   []common.Address{vaultAddr},
		}, nil
	}}
	handler := NewPayrollHandler(mock, nil)

	recorder := httptest.NewRecorder()
	handler.Payrolls(recorder, httptest.NewRequest(http.MethodGet, "/payrolls?refresh=true", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, gotRefresh)

	var resp model.PayrollsResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.Equal(t, "loaded", resp.State)
	assert.Equal(t, employerAddr.Hex(), resp.Employer)
	assert.Equal(t, []string{vaultAddr.Hex()}, resp.Vaults)
	assert.Equal(t, "Payrolls for 0xf39F…2266", resp.Heading)
}

func TestListPayrollsNoAccount(t *testing.T) {
	mock := &MockEmployer{PayrollsFunc: func(bool) (payroll.ListView, error) {
		return payroll.ListView{State: payroll.ListNoAccount, Message: payroll.MsgConnectToList}, nil
	}}
	handler := NewPayrollHandler(mock, nil)

	recorder := httptest.NewRecorder()
	handler.Payrolls(recorder, httptest.NewRequest(http.MethodGet, "/payrolls", nil))

	var resp model.PayrollsResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.Equal(t, "no_account", resp.State)
	assert.Equal(t, "Connect your wallet to see payrolls.", resp.Message)
	assert.Empty(t, resp.Employer)
	assert.NotNil(t, resp.Vaults)
}

func TestListPayrollsQueryError(t *testing.T) {
	mock := &MockEmployer{PayrollsFunc: func(bool) (payroll.ListView, error) {
		return payroll.ListView{State: payroll.ListError}, model.NewError(model.KindQuery, "failed to call employerVaults", nil)
	}}
	handler := NewPayrollHandler(mock, nil)

	recorder := httptest.NewRecorder()
	handler.Payrolls(recorder, httptest.NewRequest(http.MethodGet, "/payrolls?refresh=true", nil))

	assert.Equal(t, http.StatusBadGateway, recorder.Code)
	assert.Equal(t, "QUERY", decodeError(t, recorder).Code)
}

func TestGetEmployer(t *testing.T) {
	form := payroll.FormStatus{
		State:     payroll.FormIdle,
		Employer:  employerAddr,
		Connected: true,
		Employee:  payroll.DefaultEmployee,
		Amount:    payroll.DefaultAmount,
		CanSubmit: true,
	}
	mock := &MockEmployer{ViewValue: payroll.EmployerView{
		Welcome:       "Welcome " + employerAddr.Hex() + "!",
		Session:       connectedSnapshot(),
		CanDisconnect: true,
		Form:          &form,
		Payrolls:      payroll.ListView{State: payroll.ListLoaded, Employer: employerAddr, Message: payroll.MsgNoPayrolls},
	}}
	handler := NewPayrollHandler(mock, nil)

	recorder := httptest.NewRecorder()
	handler.GetEmployer(recorder, httptest.NewRequest(http.MethodGet, "/employer", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	var resp model.EmployerView
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.Equal(t, "Welcome "+employerAddr.Hex()+"!", resp.Welcome)
	assert.True(t, resp.CanDisconnect)
	assert.False(t, resp.CanConnect)
	require.NotNil(t, resp.Form)
	assert.Equal(t, "idle", resp.Form.State)
	assert.Equal(t, "1500", resp.Form.Amount)
	assert.True(t, resp.Form.CanSubmit)
	assert.Equal(t, "No payrolls found.", resp.Payrolls.Message)
}

func TestGetEmployerDisconnected(t *testing.T) {
	mock := &MockEmployer{ViewValue: payroll.EmployerView{
		Session:    session.Snapshot{Status: session.StatusDisconnected, Provider: "node"},
		CanConnect: true,
		Payrolls:   payroll.ListView{State: payroll.ListNoAccount, Message: payroll.MsgConnectToList},
	}}
	handler := NewPayrollHandler(mock, nil)

	recorder := httptest.NewRecorder()
	handler.GetEmployer(recorder, httptest.NewRequest(http.MethodGet, "/employer", nil))

	var resp model.EmployerView
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.Nil(t, resp.Form)
	assert.True(t, resp.CanConnect)
	assert.Equal(t, "disconnected", resp.Session.Status)
	assert.Empty(t, resp.Session.Account)
}

func TestGetBalance(t *testing.T) {
	mock := &MockEmployer{BalanceFunc: func() (*model.BalanceResponse, error) {
		return &model.BalanceResponse{Employer: employerAddr.Hex(), Symbol: "USDT", Decimals: 6, Balance: "2500.500000", Raw: "2500500000"}, nil
	}}
	handler := NewPayrollHandler(mock, nil)

	recorder := httptest.NewRecorder()
	handler.GetBalance(recorder, httptest.NewRequest(http.MethodGet, "/employer/balance", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	var resp model.BalanceResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.Equal(t, "2500.500000", resp.Balance)
	assert.Equal(t, "USDT", resp.Symbol)
}

func TestSessionQR(t *testing.T) {
	mock := &MockEmployer{QRCodeFunc: func() ([]byte, error) { return []byte("\x89PNG\r\n"), nil }}
	handler := NewPayrollHandler(mock, nil)

	recorder := httptest.NewRecorder()
	handler.SessionQR(recorder, httptest.NewRequest(http.MethodGet, "/session/qr", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "image/png", recorder.Header().Get("Content-Type"))
	assert.Equal(t, []byte("\x89PNG\r\n"), recorder.Body.Bytes())

	mock.QRCodeFunc = func() ([]byte, error) {
		return nil, model.NewError(model.KindConnection, "Connect your wallet first.", nil)
	}
	recorder = httptest.NewRecorder()
	handler.SessionQR(recorder, httptest.NewRequest(http.MethodGet, "/session/qr", nil))
	assert.Equal(t, http.StatusConflict, recorder.Code)
}

func TestStatusForKind(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusForKind(""))
	assert.Equal(t, http.StatusBadGateway, statusForKind(model.KindSubmission))
}
