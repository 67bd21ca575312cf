package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownBank   = errors.New("unknown bank")
	ErrUnknownStatus = errors.New("unknown account status")
	ErrUnknownKind   = errors.New("unknown movement kind")
)

// Bank identifies one of the fixed set of banks an account may belong to
type Bank string

const (
	BankNubank    Bank = "Nubank"
	BankSantander Bank = "Santander"
	BankInter     Bank = "Inter"
	BankNeon      Bank = "Neon"
	BankItau      Bank = "Itaú"
)

// Banks lists every supported bank in display order
var Banks = []Bank{BankNubank, BankSantander, BankInter, BankNeon, BankItau}

func (b Bank) Valid() bool {
	switch b {
	case BankNubank, BankSantander, BankInter, BankNeon, BankItau:
		return true
	}
	return false
}

func (b Bank) String() string { return string(b) }

// ParseBank matches a bank name case-insensitively. "Itau" is accepted for Itaú.
func ParseBank(name string) (Bank, error) {
	name = strings.TrimSpace(name)
	for _, b := range Banks {
		if strings.EqualFold(name, string(b)) {
			return b, nil
		}
	}
	if strings.EqualFold(name, "itau") {
		return BankItau, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBank, name)
}

// Status is the lifecycle state of an account
type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive:
		return true
	}
	return false
}

func (s Status) String() string { return string(s) }

// Kind is the direction of a history entry
type Kind string

const (
	KindCredit Kind = "Credit"
	KindDebit  Kind = "Debit"
)

// Kinds lists every movement kind in display order
var Kinds = []Kind{KindCredit, KindDebit}

func (k Kind) Valid() bool {
	switch k {
	case KindCredit, KindDebit:
		return true
	}
	return false
}

func (k Kind) String() string { return string(k) }

func ParseKind(name string) (Kind, error) {
	name = strings.TrimSpace(name)
	for _, k := range Kinds {
		if strings.EqualFold(name, string(k)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, name)
}
