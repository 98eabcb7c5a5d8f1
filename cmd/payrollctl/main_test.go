package main

import (
	"bytes"
	"encoding/json"
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/AlexZinkM/payroll-employer/internal/model"
	"github.com/AlexZinkM/payroll-employer/payroll"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		verbose bool
		want    zapcore.Level
		wantErr bool
	}{
		{name: "info", level: "info", want: zapcore.InfoLevel},
		{name: "warn", level: "warn", want: zapcore.WarnLevel},
		{name: "verbose overrides", level: "error", verbose: true, want: zapcore.DebugLevel},
		{name: "unknown level", level: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := newLogger(tt.level, tt.verbose)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, l.Core().Enabled(tt.want))
			assert.False(t, l.Core().Enabled(tt.want-1))
		})
	}
}

func TestCommandsRegistered(t *testing.T) {
	for _, path := range [][]string{
		{"serve"},
		{"vaults"},
		{"create"},
		{"keystore", "generate"},
		{"keystore", "passwd"},
		{"keystore", "address"},
	} {
		cmd, _, err := rootCmd.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}

	employee := createCmd.Flags().Lookup("employee")
	require.NotNil(t, employee)
	assert.Equal(t, payroll.DefaultEmployee, employee.DefValue)
	assert.Equal(t, payroll.DefaultAmount, createCmd.Flags().Lookup("amount").DefValue)
}

func TestPrintVaults(t *testing.T) {
	var buf bytes.Buffer
	printVaults(&buf, payroll.ListView{Heading: "Payrolls for 0x7099…79C8"})
	assert.Equal(t, "Payrolls for 0x7099…79C8\nNo payrolls found.\n", buf.String())

	vault := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	buf.Reset()
	printVaults(&buf, payroll.ListView{
		Heading: "Payrolls for 0x7099…79C8",
		Vaults:  []common.Address{vault},
	})
	assert.Contains(t, buf.String(), "  1. "+vault.Hex())
}

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	first := time.Date(2026, 11, 18, 0, 0, 0, 0, time.UTC)
	printResult(&buf, &payroll.Result{
		TxHash:        common.HexToHash("0x01"),
		BlockNumber:   42,
		Vault:         common.HexToAddress("0x00000000000000000000000000000000000000bb"),
		HasVault:      true,
		MonthlyAmount: big.NewInt(1500_250000),
		FirstPayment:  first.Unix(),
	})

	out := buf.String()
	assert.Contains(t, out, "Payroll created. Block 42.")
	assert.Contains(t, out, "vault:")
	assert.Contains(t, out, "1500.25")
	assert.Contains(t, out, "2026-11-18T00:00:00Z")
}

func TestWriteGenerateResponse(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeGenerateResponse(&buf, &model.GenerateResponse{
		Success: true,
		Message: "Key file saved to employer.cwt",
		Address: "0x70997970C51812dc3A010C7d01b50e0d17dc79C8",
	}))

	var got model.GenerateResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.True(t, got.Success)
	assert.Equal(t, "0x70997970C51812dc3A010C7d01b50e0d17dc79C8", got.Address)
}

func TestKeystoreAddressCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "employer.cwt")
	address, err := payroll.GenerateKeystore(path, []byte("secret"), model.KDFParams{N: 1 << 10, R: 8, P: 1, KeyLen: 32})
	require.NoError(t, err)

	keystorePath = path
	t.Cleanup(func() { keystorePath = "" })

	var buf bytes.Buffer
	keystoreAddressCmd.SetOut(&buf)
	require.NoError(t, keystoreAddressCmd.RunE(keystoreAddressCmd, nil))
	assert.Equal(t, address+"\n", buf.String())
}
