// Package importer turns uploaded statement and receipt files into create
// params for the transaction and receipt services.
package importer

import (
	"io"

	"github.com/MrJamesThe3rd/receiptmatch/internal/transaction"
)

type Bank string

const (
	BankDNB    Bank = "dnb"
	BankNordea Bank = "nordea"
	BankCGD    Bank = "cgd"
)

// Banks lists the supported statement formats in display order.
var Banks = []Bank{BankDNB, BankNordea, BankCGD}

type Importer interface {
	Parse(r io.Reader) ([]transaction.CreateParams, error)
}
