// Package domain contains the core domain types for the execution context.
package domain

import "github.com/fd1az/solarb/internal/apperror"

// Mode selects what submission actually does.
type Mode string

const (
	// ModeSimulate never leaves the process; receipts are synthetic.
	ModeSimulate Mode = "simulate"
	// ModePaper logs the would-be trade without sending it.
	ModePaper Mode = "paper"
	// ModeLive submits to the ledger RPC node.
	ModeLive Mode = "live"
)

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSimulate, ModePaper, ModeLive:
		return Mode(s), nil
	default:
		return "", apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext("execution mode: "+s))
	}
}
