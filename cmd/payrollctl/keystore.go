package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/AlexZinkM/payroll-employer/internal/config"
	"github.com/AlexZinkM/payroll-employer/internal/crypto"
	"github.com/AlexZinkM/payroll-employer/internal/model"
	"github.com/AlexZinkM/payroll-employer/payroll"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	keystorePath string
	generateJSON bool
)

var keystoreCmd = &cobra.Command{
	Use:   "keystore",
	Short: "Manage the encrypted employer key file",
}

var keystoreGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new employer key and save it encrypted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := keystoreFile()

		password, err := promptNewPassword()
		if err != nil {
			return err
		}
		defer clear(password)

		address, err := payroll.GenerateKeystore(path, password, crypto.DefaultKDF)
		if err != nil {
			if payroll.IsFileExistsError(err) {
				err = fmt.Errorf("key file %s already exists", path)
			}
			if generateJSON {
				_ = writeGenerateResponse(cmd.OutOrStdout(), &model.GenerateResponse{Success: false, Message: err.Error()})
			}
			return err
		}

		logger.Info("key file generated", zap.String("path", path), zap.String("address", address))
		resp := &model.GenerateResponse{
			Success: true,
			Message: "Key file saved to " + path,
			Address: address,
		}
		if generateJSON {
			return writeGenerateResponse(cmd.OutOrStdout(), resp)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Employer address: %s\n%s\n", resp.Address, resp.Message)
		return nil
	},
}

func writeGenerateResponse(w io.Writer, resp *model.GenerateResponse) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

var keystoreAddressCmd = &cobra.Command{
	Use:   "address",
	Short: "Print the employer address stored in the key file without unlocking it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		address, err := crypto.ReadWalletAddress(keystoreFile())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), address)
		return nil
	},
}

var keystorePasswdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Re-encrypt the key file under a new password",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := keystoreFile()

		oldPassword, err := config.PromptForPassword("Current password: ")
		if err != nil {
			return err
		}
		defer clear(oldPassword)

		newPassword, err := promptNewPassword()
		if err != nil {
			return err
		}
		defer clear(newPassword)

		if err := payroll.ChangeKeystorePassword(path, oldPassword, newPassword, crypto.DefaultKDF); err != nil {
			return err
		}

		logger.Info("key file re-encrypted", zap.String("path", path))
		fmt.Fprintln(cmd.OutOrStdout(), "Password changed.")
		return nil
	},
}

func keystoreFile() string {
	if keystorePath != "" {
		return keystorePath
	}
	return cfg.KeystorePath
}

func promptNewPassword() ([]byte, error) {
	password, err := config.PromptForPassword("New password: ")
	if err != nil {
		return nil, err
	}
	confirm, err := config.PromptForPassword("Repeat password: ")
	if err != nil {
		clear(password)
		return nil, err
	}
	defer clear(confirm)

	if string(password) != string(confirm) {
		clear(password)
		return nil, errors.New("passwords do not match")
	}
	return password, nil
}

func init() {
	keystoreCmd.PersistentFlags().StringVar(&keystorePath, "file", "", "Key file path (defaults to KEYSTORE_PATH)")

	keystoreGenerateCmd.Flags().BoolVar(&generateJSON, "json", false, "Print the result as JSON")

	keystoreCmd.AddCommand(keystoreGenerateCmd)
	keystoreCmd.AddCommand(keystoreAddressCmd)
	keystoreCmd.AddCommand(keystorePasswdCmd)
}
