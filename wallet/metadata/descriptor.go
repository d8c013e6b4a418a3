package metadata

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

type Network string

const (
	NetworkDevnet  Network = "devnet"
	NetworkMainnet Network = "mainnet-beta"

	MaxDecimals = 9

	// limits of the token metadata program
	MaxNameLength   = 32
	MaxSymbolLength = 10
	MaxURILength    = 200

	// value of the image field until the image has been uploaded
	ImagePlaceholder = "Will be replaced automatically"
)

var ErrInvalidDescriptor = errors.New("invalid token descriptor")

type (
	// Descriptor is the user supplied description of the token to issue.
	Descriptor struct {
		Name        string      `json:"name"`
		Symbol      string      `json:"symbol"`
		Description string      `json:"description"`
		Decimals    uint8       `json:"decimals"`
		MintAmount  uint64      `json:"mintAmount"`
		Network     Network     `json:"network"`
		Image       string      `json:"image"`
		Attributes  []Attribute `json:"attributes"`
	}

	Attribute struct {
		TraitType string `json:"trait_type"`
		Value     any    `json:"value"`
	}
)

func ParseNetwork(s string) (Network, error) {
	switch n := Network(strings.ToLower(strings.TrimSpace(s))); n {
	case NetworkDevnet, NetworkMainnet:
		return n, nil
	case "mainnet":
		return NetworkMainnet, nil
	default:
		return "", fmt.Errorf("unsupported network %q, expected %q or %q", s, NetworkDevnet, NetworkMainnet)
	}
}

func (n Network) String() string {
	return string(n)
}

/*
Normalize trims the text fields, upper-cases the symbol and assigns defaults to
the optional fields.
*/
func (d *Descriptor) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Symbol = strings.ToUpper(strings.TrimSpace(d.Symbol))
	d.Description = strings.TrimSpace(d.Description)
	if d.Network == "" {
		d.Network = NetworkDevnet
	}
	if d.Image == "" {
		d.Image = ImagePlaceholder
	}
	if d.Attributes == nil {
		d.Attributes = []Attribute{}
	}
}

// Validate returns error wrapping ErrInvalidDescriptor for every rule the descriptor breaks.
func (d *Descriptor) Validate() error {
	var errs []error
	if d.Name == "" {
		errs = append(errs, errors.New("name is required"))
	} else if len(d.Name) > MaxNameLength {
		errs = append(errs, fmt.Errorf("name must not be longer than %d bytes", MaxNameLength))
	}
	if d.Symbol == "" {
		errs = append(errs, errors.New("symbol is required"))
	} else if len(d.Symbol) > MaxSymbolLength {
		errs = append(errs, fmt.Errorf("symbol must not be longer than %d bytes", MaxSymbolLength))
	}
	if d.Decimals > MaxDecimals {
		errs = append(errs, fmt.Errorf("decimals must be between 0 and %d", MaxDecimals))
	}
	if d.MintAmount == 0 {
		errs = append(errs, errors.New("mint amount must be greater than zero"))
	}
	if _, err := ParseNetwork(string(d.Network)); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidDescriptor, errors.Join(errs...))
	}
	if _, err := d.BaseUnits(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDescriptor, err)
	}
	return nil
}

/*
BaseUnits returns the amount to mint in the smallest indivisible units, ie
MintAmount * 10^Decimals. Error is returned when the result doesn't fit into u64.
*/
func (d *Descriptor) BaseUnits() (uint64, error) {
	if d.Decimals > MaxDecimals {
		return 0, fmt.Errorf("decimals must be between 0 and %d", MaxDecimals)
	}
	scale := new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(d.Decimals)))
	units, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(d.MintAmount), scale)
	if overflow || !units.IsUint64() {
		return 0, fmt.Errorf("mint amount %d with %d decimals exceeds the maximum token supply", d.MintAmount, d.Decimals)
	}
	return units.Uint64(), nil
}

// DisplaySupply returns the supply in whole tokens.
func (d *Descriptor) DisplaySupply() string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(d.MintAmount), 0).String()
}

// FormatBaseUnits formats amount of base units as decimal number with given precision.
func FormatBaseUnits(amount uint64, decimals uint8) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -int32(decimals)).StringFixed(int32(decimals))
}
