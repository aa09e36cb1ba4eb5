package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"vault-engine/internal/builtin"
	"vault-engine/internal/core/codec"
	"vault-engine/internal/core/domain"
	"vault-engine/internal/core/ports"
	"vault-engine/internal/core/ports/mocks"
	"vault-engine/pkg/apperror"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type queryTestDeps struct {
	svc          *QueryServiceImpl
	cfg          EngineConfig
	accountRepo  *mocks.MockAccountRepository
	receiptRepo  *mocks.MockReceiptRepository
	receiptCache *mocks.MockReceiptCache
	ctrl         *gomock.Controller
}

func setupQueryService(t *testing.T) *queryTestDeps {
	ctrl := gomock.NewController(t)
	cfg := testEngineConfig(t)
	d := &queryTestDeps{
		cfg:          cfg,
		accountRepo:  mocks.NewMockAccountRepository(ctrl),
		receiptRepo:  mocks.NewMockReceiptRepository(ctrl),
		receiptCache: mocks.NewMockReceiptCache(ctrl),
		ctrl:         ctrl,
	}
	runtime := NewRuntime(DefaultMaxInvokeDepth, zerolog.Nop(), NewEngine(cfg, zerolog.Nop()), builtin.NewSystemProgram())
	d.svc = NewQueryService(cfg, runtime, d.accountRepo, d.receiptRepo, d.receiptCache, zerolog.Nop())
	return d
}

func TestQueryService_GetAccount_DecodesRecords(t *testing.T) {
	d := setupQueryService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()

	vaultData, err := codec.EncodeVault(&domain.Vault{Creator: testKey(1), FeeBps: 50, Seed: 4, Bump: 255})
	require.NoError(t, err)
	poolData, err := codec.EncodePool(&domain.Pool{WithdrawAuthority: testKey(2), Value: 9, Vault: testKey(3)})
	require.NoError(t, err)
	authority := testKey(4)
	mintData, err := codec.EncodeMint(&domain.Mint{MintAuthority: &authority, Decimals: 6, IsInitialized: true})
	require.NoError(t, err)

	tests := []struct {
		name  string
		acct  *domain.Account
		kind  string
		check func(t *testing.T, v *ports.AccountView)
	}{
		{"vault", &domain.Account{Key: testKey(10), Owner: d.cfg.ProgramID, Data: vaultData}, "Vault", func(t *testing.T, v *ports.AccountView) {
			require.NotNil(t, v.Vault)
			assert.Equal(t, uint16(50), v.Vault.FeeBps)
		}},
		{"pool", &domain.Account{Key: testKey(11), Owner: d.cfg.ProgramID, Data: poolData}, "Pool", func(t *testing.T, v *ports.AccountView) {
			require.NotNil(t, v.Pool)
			assert.Equal(t, uint64(9), v.Pool.Value)
		}},
		{"mint", &domain.Account{Key: testKey(12), Owner: d.cfg.TokenProgramID, Data: mintData}, ViewKindMint, func(t *testing.T, v *ports.AccountView) {
			require.NotNil(t, v.Mint)
			assert.Equal(t, uint8(6), v.Mint.Decimals)
		}},
		{"system", &domain.Account{Key: testKey(13), Owner: solana.SystemProgramID, Lamports: 5}, ViewKindSystem, nil},
		{"corrupt record", &domain.Account{Key: testKey(14), Owner: d.cfg.ProgramID, Data: []byte{1, 2, 3}}, ViewKindUnknown, nil},
		{"foreign owner", &domain.Account{Key: testKey(15), Owner: testKey(99), Data: vaultData}, ViewKindUnknown, func(t *testing.T, v *ports.AccountView) {
			assert.Nil(t, v.Vault)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d.accountRepo.EXPECT().Get(ctx, tt.acct.Key).Return(tt.acct, nil)
			v, err := d.svc.GetAccount(ctx, tt.acct.Key)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, v.Kind)
			if tt.check != nil {
				tt.check(t, v)
			}
		})
	}
}

func TestQueryService_GetAccount_NotFound(t *testing.T) {
	d := setupQueryService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()

	d.accountRepo.EXPECT().Get(ctx, testKey(20)).Return(nil, nil)
	_, err := d.svc.GetAccount(ctx, testKey(20))
	assertCode(t, err, apperror.CodeNotFound)

	d.accountRepo.EXPECT().Get(ctx, solana.SystemProgramID).Return(nil, nil)
	v, err := d.svc.GetAccount(ctx, solana.SystemProgramID)
	require.NoError(t, err)
	assert.Equal(t, ViewKindProgram, v.Kind)
	assert.True(t, v.Account.Executable)
}

func TestQueryService_GetReceipt_CacheHit(t *testing.T) {
	d := setupQueryService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()

	cached, err := json.Marshal(&domain.Receipt{MessageHash: "abc", Status: domain.ReceiptStatusSuccess})
	require.NoError(t, err)
	d.receiptCache.EXPECT().Get(ctx, "abc").Return(cached, nil)

	r, err := d.svc.GetReceipt(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, domain.ReceiptStatusSuccess, r.Status)
}

func TestQueryService_GetReceipt_FallsBackToDB(t *testing.T) {
	d := setupQueryService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()

	d.receiptCache.EXPECT().Get(ctx, "abc").Return(nil, errors.New("connection refused"))
	d.receiptRepo.EXPECT().GetByMessageHash(ctx, "abc").Return(&domain.Receipt{MessageHash: "abc", Status: domain.ReceiptStatusFailed}, nil)
	d.receiptCache.EXPECT().Set(ctx, "abc", gomock.Any(), receiptCacheTTL).Return(nil)

	r, err := d.svc.GetReceipt(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, domain.ReceiptStatusFailed, r.Status)
}

func TestQueryService_GetReceipt_NotFound(t *testing.T) {
	d := setupQueryService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()

	d.receiptCache.EXPECT().Get(ctx, "abc").Return(nil, nil)
	d.receiptRepo.EXPECT().GetByMessageHash(ctx, "abc").Return(nil, nil)

	_, err := d.svc.GetReceipt(ctx, "abc")
	assertCode(t, err, apperror.CodeNotFound)
}

func TestQueryService_ListReceipts(t *testing.T) {
	d := setupQueryService(t)
	defer d.ctrl.Finish()
	ctx := context.Background()

	params := ports.ReceiptListParams{Page: 1, PageSize: 20}
	d.receiptRepo.EXPECT().List(ctx, params).Return([]domain.Receipt{{MessageHash: "a"}, {MessageHash: "b"}}, int64(2), nil)

	receipts, total, err := d.svc.ListReceipts(ctx, params)
	require.NoError(t, err)
	assert.Len(t, receipts, 2)
	assert.Equal(t, int64(2), total)

	d.receiptRepo.EXPECT().List(ctx, params).Return(nil, int64(0), errors.New("boom"))
	_, _, err = d.svc.ListReceipts(ctx, params)
	assertCode(t, err, apperror.CodeInternal)
}
