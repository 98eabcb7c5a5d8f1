package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AlexZinkM/payroll-employer/internal/model"

	"golang.org/x/crypto/scrypt"
)

const (
	saltLen  = 32
	nonceLen = 12

	// NetworkEVM marks key files holding a secp256k1 key.
	NetworkEVM = "evm"
)

// DefaultKDF are the scrypt parameters for new key files.
//
// N=2^18 (~256MB RAM, 0.5-2s) keeps brute force expensive while still
// fitting the per-process memory limits of small machines.
var DefaultKDF = model.KDFParams{N: 1 << 18, R: 8, P: 1, KeyLen: 32}

// EncryptWallet encrypts wallet data and writes it to .cwt
// password must be []byte for security (caller should zero it after use)
func EncryptWallet(filePath string, network, address, qrCode string, walletData *model.WalletData, password []byte, kdf model.KDFParams) error {
	if !strings.HasSuffix(filePath, ".cwt") {
		return errors.New("file must have .cwt extension")
	}

	if fileInfo, err := os.Stat(filePath); err == nil && fileInfo.Size() > 0 {
		return fmt.Errorf("file is not empty: %w", os.ErrExist)
	}

	return writeSealed(filePath, network, address, qrCode, walletData, password, kdf)
}

// ChangePassword re-seals an existing key file under a new password with fresh salt and nonce.
func ChangePassword(filePath string, oldPassword, newPassword []byte, kdf model.KDFParams) error {
	cwtFile, walletData, err := DecryptWallet(filePath, oldPassword)
	if err != nil {
		return err
	}
	defer clear(walletData.PrivateKey)

	return writeSealed(filePath, cwtFile.Network, cwtFile.Address, cwtFile.QR, walletData, newPassword, kdf)
}

func writeSealed(filePath string, network, address, qrCode string, walletData *model.WalletData, password []byte, kdf model.KDFParams) error {
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	aesGCM, err := newGCM(password, salt, kdf)
	if err != nil {
		return err
	}

	plaintext, err := json.Marshal(walletData)
	if err != nil {
		return fmt.Errorf("failed to marshal wallet data: %w", err)
	}
	defer clear(plaintext) // wipe plaintext bytes from memory

	ciphertext := aesGCM.Seal(nil, nonce, plaintext, nil)

	cwtFile := model.CWTFile{
		Network:    network,
		Address:    address,
		QR:         qrCode,
		KDF:        kdf,
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		CipherText: base64.StdEncoding.EncodeToString(ciphertext),
	}

	fileData, err := json.MarshalIndent(cwtFile, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cwt file: %w", err)
	}

	// Add UTF-8 BOM for proper display in Windows
	utf8BOM := []byte{0xEF, 0xBB, 0xBF}
	fileDataWithBOM := append(utf8BOM, fileData...)

	if err := os.WriteFile(filePath, fileDataWithBOM, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

func newGCM(password, salt []byte, kdf model.KDFParams) (cipher.AEAD, error) {
	key, err := scrypt.Key(password, salt, kdf.N, kdf.R, kdf.P, kdf.KeyLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	defer clear(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aesGCM, nil
}
