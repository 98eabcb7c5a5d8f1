package model

// CWTFile represents .cwt file structure
type CWTFile struct {
	Network    string    `json:"network"`
	Address    string    `json:"address"`
	QR         string    `json:"QR"`
	KDF        KDFParams `json:"kdf"`
	Salt       string    `json:"salt"`
	Nonce      string    `json:"nonce"`
	CipherText string    `json:"cipherText"`
}

// KDFParams are the scrypt parameters the file was sealed with.
type KDFParams struct {
	N      int `json:"n"`
	R      int `json:"r"`
	P      int `json:"p"`
	KeyLen int `json:"keyLen"`
}

// WalletData represents decrypted wallet data
type WalletData struct {
	PrivateKey []byte `json:"privateKey"` // 32-byte secp256k1 scalar (stored as base64 in JSON)
	CreatedAt  string `json:"createdAt"`
}
