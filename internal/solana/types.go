package solana

import (
	"encoding/base64"
	"fmt"
)

// TokenAmount from getTokenSupply.
type TokenAmount struct {
	Amount         string // raw u64 as decimal string
	Decimals       uint8
	UIAmountString string
}

// AccountInfo represents Solana account information.
type AccountInfo struct {
	Lamports   uint64 `json:"lamports"`
	Owner      string `json:"owner"`
	Data       string `json:"data"` // base64 encoded
	Executable bool   `json:"executable"`
	RentEpoch  uint64 `json:"rentEpoch"`
}

// DecodedData returns the raw account bytes.
func (a *AccountInfo) DecodedData() ([]byte, error) {
	decoded, err := base64.StdEncoding.DecodeString(a.Data)
	if err != nil {
		return nil, fmt.Errorf("decode account data: %w", err)
	}
	return decoded, nil
}
