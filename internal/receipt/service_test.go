package receipt_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/receiptmatch/internal/apperror"
	"github.com/MrJamesThe3rd/receiptmatch/internal/period"
	"github.com/MrJamesThe3rd/receiptmatch/internal/receipt"
	"github.com/MrJamesThe3rd/receiptmatch/internal/transaction"
)

var march10 = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

func rema() receipt.CreateParams {
	return receipt.CreateParams{
		ExternalID: "gmail-18c2",
		Amount:     50000,
		Currency:   "NOK",
		Date:       march10.Add(14 * time.Hour),
		Vendor:     " Rema 1000 ",
	}
}

func TestService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := receipt.NewMockRepository(ctrl)
	repo.EXPECT().
		CreateReceipt(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, r *receipt.Receipt) error {
			r.ID = uuid.New()
			return nil
		})

	got, err := receipt.NewService(repo).Create(context.Background(), rema())
	require.NoError(t, err)
	assert.Equal(t, "Rema 1000", got.Vendor)
	assert.Equal(t, march10, got.Date)
	assert.Equal(t, transaction.DirectionOutgoing, got.Direction)
	assert.Equal(t, receipt.StatusUnmatched, got.Status)
}

func TestService_Create_Invalid(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p := rema()
	p.Amount = 0

	_, err := receipt.NewService(receipt.NewMockRepository(ctrl)).Create(context.Background(), p)
	assert.True(t, apperror.IsValidation(err))
}

func TestService_ListUnmatchedReceipts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := receipt.NewMockRepository(ctrl)
	r := period.New(march10, march10)

	repo.EXPECT().
		ListReceipts(gomock.Any(), receipt.ListFilter{
			Status:    new(receipt.StatusUnmatched),
			Currency:  new("NOK"),
			StartDate: new(r.Start),
			EndDate:   new(r.End),
		}).
		Return([]*receipt.Receipt{{ID: uuid.New()}}, nil)

	got, err := receipt.NewService(repo).ListUnmatchedReceipts(context.Background(), r, "nok")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestService_Import(t *testing.T) {
	type testCase struct {
		name        string
		params      []receipt.CreateParams
		setupMock   func(m *receipt.MockRepository)
		wantErr     bool
		wantCreated int
		wantSkipped int
		wantInvalid int
	}

	bad := rema()
	bad.Currency = "KRONER"

	tests := []testCase{
		{
			name:   "SkipsKnownExternalIDs",
			params: []receipt.CreateParams{rema(), rema()},
			setupMock: func(m *receipt.MockRepository) {
				m.EXPECT().
					InsertReceipts(gomock.Any(), gomock.Len(2)).
					DoAndReturn(func(_ context.Context, rs []*receipt.Receipt) ([]*receipt.Receipt, error) {
						return rs[:1], nil
					})
			},
			wantCreated: 1,
			wantSkipped: 1,
		},
		{
			name:        "OnlyInvalid",
			params:      []receipt.CreateParams{bad},
			wantInvalid: 1,
		},
		{
			name:   "RepoError",
			params: []receipt.CreateParams{rema()},
			setupMock: func(m *receipt.MockRepository) {
				m.EXPECT().InsertReceipts(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := receipt.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			got, err := receipt.NewService(repo).Import(context.Background(), tt.params)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Len(t, got.Imported, tt.wantCreated)
			assert.Equal(t, tt.wantSkipped, got.Skipped)
			assert.Len(t, got.Invalid, tt.wantInvalid)
		})
	}
}

func TestService_Reject(t *testing.T) {
	id := uuid.New()

	t.Run("Unmatched", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := receipt.NewMockRepository(ctrl)
		repo.EXPECT().GetReceipt(gomock.Any(), id).Return(&receipt.Receipt{ID: id, Status: receipt.StatusUnmatched}, nil)
		repo.EXPECT().UpdateStatus(gomock.Any(), id, receipt.StatusUnmatched, receipt.StatusRejected).Return(true, nil)

		assert.NoError(t, receipt.NewService(repo).Reject(context.Background(), id))
	})

	t.Run("Matched", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := receipt.NewMockRepository(ctrl)
		repo.EXPECT().GetReceipt(gomock.Any(), id).Return(&receipt.Receipt{ID: id, Status: receipt.StatusMatched}, nil)

		err := receipt.NewService(repo).Reject(context.Background(), id)
		assert.True(t, apperror.IsValidation(err))
	})
}
