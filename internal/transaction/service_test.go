package transaction_test

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
	"github.com/MrJamesThe3rd/receiptmatch/internal/transaction"
)

var march10 = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

func validParams() transaction.CreateParams {
	return transaction.CreateParams{
		Amount:       49900,
		Currency:     "nok",
		Date:         march10,
		Counterparty: "RemaButikk",
		Description:  "VISA 1234 REMABUTIKK OSLO",
		Direction:    transaction.DirectionOutgoing,
	}
}

func TestService_Create(t *testing.T) {
	type testCase struct {
		name      string
		params    transaction.CreateParams
		setupMock func(m *transaction.MockRepository)
		wantErr   bool
		wantValid bool
	}

	tests := []testCase{
		{
			name:   "Success",
			params: validParams(),
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *transaction.Transaction) error {
						tx.ID = uuid.New()
						tx.CreatedAt = time.Now()
						return nil
					})
			},
		},
		{
			name: "NegativeAmount",
			params: func() transaction.CreateParams {
				p := validParams()
				p.Amount = -100
				return p
			}(),
			wantErr:   true,
			wantValid: true,
		},
		{
			name: "UnknownDirection",
			params: func() transaction.CreateParams {
				p := validParams()
				p.Direction = "sideways"
				return p
			}(),
			wantErr:   true,
			wantValid: true,
		},
		{
			name:   "RepoError",
			params: validParams(),
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					Return(errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := transaction.NewService(repo)
			got, err := svc.Create(context.Background(), tt.params)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)
				assert.Equal(t, tt.wantValid, apperror.IsValidation(err))

				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, got.ID)
			assert.Equal(t, "NOK", got.Currency)
			assert.Equal(t, transaction.StatusUnmatched, got.Status)
		})
	}
}

func TestService_ListUnmatchedTransactions(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	svc := transaction.NewService(repo)

	r := period.New(march10, march10.AddDate(0, 0, 5))
	want := transaction.ListFilter{
		Status:    new(transaction.StatusUnmatched),
		StartDate: new(r.Start),
		EndDate:   new(r.End),
	}

	repo.EXPECT().
		ListTransactions(gomock.Any(), want).
		Return([]*transaction.Transaction{{ID: uuid.New()}, {ID: uuid.New()}}, nil)

	got, err := svc.ListUnmatchedTransactions(context.Background(), r)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = svc.ListUnmatchedTransactions(context.Background(), period.Range{})
	assert.True(t, apperror.IsValidation(err))
}

func TestService_Ignore(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name      string
		setupMock func(m *transaction.MockRepository)
		wantValid bool
		wantErr   bool
	}{
		{
			name: "Success",
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().GetTransaction(gomock.Any(), id).
					Return(&transaction.Transaction{ID: id, Status: transaction.StatusUnmatched}, nil)
				m.EXPECT().UpdateStatus(gomock.Any(), id, transaction.StatusUnmatched, transaction.StatusIgnored).
					Return(true, nil)
			},
		},
		{
			name: "AlreadyMatched",
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().GetTransaction(gomock.Any(), id).
					Return(&transaction.Transaction{ID: id, Status: transaction.StatusMatched}, nil)
			},
			wantErr:   true,
			wantValid: true,
		},
		{
			name: "RaceLost",
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().GetTransaction(gomock.Any(), id).
					Return(&transaction.Transaction{ID: id, Status: transaction.StatusUnmatched}, nil)
				m.EXPECT().UpdateStatus(gomock.Any(), id, transaction.StatusUnmatched, transaction.StatusIgnored).
					Return(false, nil)
			},
			wantErr:   true,
			wantValid: true,
		},
		{
			name: "NotFound",
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().GetTransaction(gomock.Any(), id).
					Return(nil, apperror.NotFound("transaction", id))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			tt.setupMock(repo)

			err := transaction.NewService(repo).Ignore(context.Background(), id)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			assert.Error(t, err)
			assert.Equal(t, tt.wantValid, apperror.IsValidation(err))
		})
	}
}

func TestService_ImportBatch_NoConflicts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	itx := transaction.NewMockImportTx(ctrl)
	svc := transaction.NewService(repo)

	params := []transaction.CreateParams{validParams()}

	repo.EXPECT().BeginImport(gomock.Any(), march10, march10).Return(itx, nil)
	itx.EXPECT().FindDuplicates(gomock.Any(), params).Return(nil, nil)
	itx.EXPECT().CreateTransactions(gomock.Any(), gomock.Any()).Return(nil)
	itx.EXPECT().Commit().Return(nil)
	itx.EXPECT().Rollback().Return(nil)

	result, err := svc.ImportBatch(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, result.Imported, 1)
	assert.Equal(t, "RemaButikk", result.Imported[0].Counterparty)
	assert.Empty(t, result.Conflicts)
	assert.Empty(t, result.New)
}

func TestService_ImportBatch_WithConflicts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	itx := transaction.NewMockImportTx(ctrl)
	svc := transaction.NewService(repo)

	second := validParams()
	second.Amount = 12000
	second.Description = "VIPPS KIWI"
	params := []transaction.CreateParams{validParams(), second}

	existing := &transaction.Transaction{
		ID:          uuid.New(),
		Amount:      49900,
		Direction:   transaction.DirectionOutgoing,
		Description: "VISA 1234 REMABUTIKK OSLO",
		Date:        march10,
	}

	repo.EXPECT().BeginImport(gomock.Any(), march10, march10).Return(itx, nil)
	itx.EXPECT().FindDuplicates(gomock.Any(), params).Return([]*transaction.Transaction{existing}, nil)
	itx.EXPECT().Rollback().Return(nil)

	result, err := svc.ImportBatch(context.Background(), params)
	require.NoError(t, err)
	assert.Empty(t, result.Imported)
	assert.Len(t, result.New, 1)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, params[0], result.Conflicts[0].Incoming)
	assert.Equal(t, existing, result.Conflicts[0].Existing)
}

func TestService_ImportBatch_InvalidRowsSkipped(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	svc := transaction.NewService(repo)

	bad := validParams()
	bad.Currency = ""

	result, err := svc.ImportBatch(context.Background(), []transaction.CreateParams{bad})
	require.NoError(t, err)
	require.Len(t, result.Invalid, 1)
	assert.Equal(t, 0, result.Invalid[0].Index)
	assert.True(t, apperror.IsValidation(result.Invalid[0].Err))
	assert.Empty(t, result.Imported)
}

func TestService_CreateBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	itx := transaction.NewMockImportTx(ctrl)
	svc := transaction.NewService(repo)

	params := []transaction.CreateParams{validParams()}

	repo.EXPECT().BeginImport(gomock.Any(), march10, march10).Return(itx, nil)
	itx.EXPECT().CreateTransactions(gomock.Any(), gomock.Any()).Return(nil)
	itx.EXPECT().Commit().Return(nil)
	itx.EXPECT().Rollback().Return(nil)

	txs, err := svc.CreateBatch(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, int64(49900), txs[0].Amount)
	assert.Equal(t, transaction.DirectionOutgoing, txs[0].Direction)
}
