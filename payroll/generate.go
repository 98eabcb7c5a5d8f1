package payroll

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/AlexZinkM/payroll-employer/internal/crypto"
	"github.com/AlexZinkM/payroll-employer/internal/model"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/skip2/go-qrcode"
)

// QRSize is the edge length in pixels of generated QR images.
const QRSize = 256

// IsFileExistsError reports whether err means the key file already has content.
func IsFileExistsError(err error) bool {
	return errors.Is(err, os.ErrExist)
}

// GenerateKeystore creates a new employer key and saves it to a .cwt file.
// Returns the generated address on success.
// password must be []byte for security (caller should zero it after use)
func GenerateKeystore(filePath string, password []byte, kdf model.KDFParams) (address string, err error) {
	if filepath.Ext(filePath) != ".cwt" {
		return "", errors.New("file must have .cwt extension")
	}

	key, err := ethcrypto.GenerateKey()
	if err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	privateKey := ethcrypto.FromECDSA(key)
	defer clear(privateKey)
	defer key.D.SetInt64(0)

	address = ethcrypto.PubkeyToAddress(key.PublicKey).Hex()

	qrPNG, err := AddressQRCode(address)
	if err != nil {
		return "", err
	}

	walletData := &model.WalletData{
		PrivateKey: privateKey,
		CreatedAt:  time.Now().Format(time.RFC3339),
	}

	if err := crypto.EncryptWallet(filePath, crypto.NetworkEVM, address, base64.StdEncoding.EncodeToString(qrPNG), walletData, password, kdf); err != nil {
		return "", fmt.Errorf("failed to encrypt key file: %w", err)
	}

	return address, nil
}

// ChangeKeystorePassword re-encrypts the key file under a new password.
func ChangeKeystorePassword(filePath string, oldPassword, newPassword []byte, kdf model.KDFParams) error {
	if err := crypto.ChangePassword(filePath, oldPassword, newPassword, kdf); err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}
	return nil
}

// AddressQRCode renders address as a PNG QR code.
func AddressQRCode(address string) ([]byte, error) {
	qr, err := qrcode.New(address, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}

	png, err := qr.PNG(QRSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PNG: %w", err)
	}
	return png, nil
}
