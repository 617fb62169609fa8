package token

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxDecimals is the largest decimal count whose scale factor fits in a u64.
const MaxDecimals = 19

var powersOfTen = func() [MaxDecimals + 1]uint64 {
	var p [MaxDecimals + 1]uint64
	p[0] = 1
	for i := 1; i <= MaxDecimals; i++ {
		p[i] = p[i-1] * 10
	}
	return p
}()

// FormatSupply renders a raw token amount scaled by decimals, without
// trailing fractional zeros or a trailing decimal point.
//
//	FormatSupply("1500000", 6) == "1.5"
//	FormatSupply("1000000", 6) == "1"
func FormatSupply(raw string, decimals uint8) (string, error) {
	amount, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidAmount, raw, err)
	}
	if decimals > MaxDecimals {
		return "", fmt.Errorf("%w: 10^%d does not fit in 64 bits", ErrOverflow, decimals)
	}

	divisor := powersOfTen[decimals]
	whole := amount / divisor
	if decimals == 0 {
		return strconv.FormatUint(whole, 10), nil
	}

	frac := amount % divisor
	formatted := fmt.Sprintf("%d.%0*d", whole, int(decimals), frac)
	formatted = strings.TrimRight(formatted, "0")
	formatted = strings.TrimSuffix(formatted, ".")
	return formatted, nil
}
