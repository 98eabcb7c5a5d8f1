package common

import (
	"errors"
	"fmt"
	"strings"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

var (
	ErrInvalidAddress  = errors.New("invalid address")
	ErrChecksumAddress = errors.New("address checksum mismatch")
)

// ParseAddress validates a hex address the way wallets do: a lowercase 0x
// prefix followed by either an all-lowercase body or the exact EIP-55
// checksummed form.
func ParseAddress(s string) (ethcommon.Address, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") || !ethcommon.IsHexAddress(s) {
		return ethcommon.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}

	addr := ethcommon.HexToAddress(s)
	if body := s[2:]; body != strings.ToLower(body) && addr.Hex() != s {
		return ethcommon.Address{}, fmt.Errorf("%w: %q", ErrChecksumAddress, s)
	}
	return addr, nil
}

// ShortAddress renders an address as 0x1234…abcd.
func ShortAddress(addr ethcommon.Address) string {
	h := addr.Hex()
	return h[:6] + "…" + h[len(h)-4:]
}
