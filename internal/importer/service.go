package importer

import (
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/receiptmatch/internal/importer/bankcsv"
	"github.com/MrJamesThe3rd/receiptmatch/internal/importer/receiptcsv"
	"github.com/MrJamesThe3rd/receiptmatch/internal/transaction"
)

type Service struct {
	banks map[Bank]Importer
}

func NewService() *Service {
	return &Service{
		banks: map[Bank]Importer{
			BankDNB:    bankcsv.NewDNB(),
			BankNordea: bankcsv.NewNordea(),
			BankCGD:    bankcsv.NewCGD(),
		},
	}
}

func (s *Service) Import(bank Bank, r io.Reader) ([]transaction.CreateParams, error) {
	importer, ok := s.banks[bank]
	if !ok {
		return nil, fmt.Errorf("unknown bank: %s", bank)
	}

	return importer.Parse(r)
}

// ImportReceipts reads a receipt extraction export. Rows that cannot be read
// are returned separately so the rest of the file can still be stored.
func (s *Service) ImportReceipts(r io.Reader) (*receiptcsv.Result, error) {
	return receiptcsv.Parse(r)
}
