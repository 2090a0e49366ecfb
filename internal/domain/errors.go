package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound   = errors.New("account not found")
	ErrAccountExists     = errors.New("account already exists")
	ErrAccountInactive   = errors.New("account is inactive")
	ErrInsufficientFunds = errors.New("insufficient funds in source account")

	// Transfer errors
	ErrSameAccount      = errors.New("cannot transfer to same account")
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrCurrencyMismatch = errors.New("cannot move money between different currencies")
	ErrTransferNotFound = errors.New("transfer not found")

	// Sale / debt errors
	ErrSaleNotFound = errors.New("sale not found")
	ErrSaleFinal    = errors.New("sale is already paid or cancelled")
	ErrDebtNotFound = errors.New("debt not found")
	ErrDebtSettled  = errors.New("debt is already settled")
	ErrDebtVoided   = errors.New("debt has been voided")

	// Ingestion errors
	ErrUnsupportedMission = errors.New("unsupported mission")
	ErrJobLocked          = errors.New("another ingestion job holds the collection lock")
	ErrJobNotFound        = errors.New("migration job not found")

	// Engine errors
	ErrConcurrencyExhausted = errors.New("transaction retries exhausted")
)
