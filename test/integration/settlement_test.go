//go:build integration

package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fanpicks/platform/internal/repository"
	"github.com/fanpicks/platform/internal/settlement"
	"github.com/fanpicks/platform/test/integration/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWallet = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"

func newPgStore(env *testutil.TestEnv) *settlement.PgStore {
	return settlement.NewPgStore(env.Pool, settlement.StoreRepos{
		Users:        repository.NewUserRepository(),
		Contests:     repository.NewContestRepository(),
		Entries:      repository.NewUserContestRepository(),
		Transactions: repository.NewTransactionRepository(),
		Outbox:       repository.NewOutboxRepository(),
		Signatures:   repository.NewSignatureRepository(),
	}, env.Logger)
}

func openContest(t *testing.T, env *testutil.TestEnv) uuid.UUID {
	t.Helper()
	admin := env.CreateAdmin("admin@test.com")
	fx := env.CreateFixture(admin)
	env.SetStatus("contests", fx.ContestID, "OPEN", admin)
	return fx.ContestID
}

func signatureOutcome(t *testing.T, env *testutil.TestEnv, sig string) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var outcome string
	err := env.Pool.QueryRow(ctx, `SELECT outcome FROM processed_signatures WHERE signature = $1`, sig).Scan(&outcome)
	require.NoError(t, err)
	return outcome
}

func TestPgStore_ApplyContestEntered(t *testing.T) {
	env := testutil.NewTestEnv(t)
	contestID := openContest(t, env)
	store := newPgStore(env)
	ctx := context.Background()

	ev := settlement.ContestEntered{ContestID: contestID.String(), User: testWallet, EntryFee: 250_000_000}
	res, err := store.ApplyContestEntered(ctx, "sig-1", ev)
	require.NoError(t, err)
	assert.Equal(t, settlement.OutcomeApplied, res.Outcome)

	assert.Equal(t, 1, testutil.CountRows(t, env, "SELECT COUNT(*) FROM users WHERE wallet_address = $1", testWallet))
	assert.Equal(t, 1, testutil.CountRows(t, env, "SELECT COUNT(*) FROM user_contests WHERE contest_id = $1", contestID))
	assert.Equal(t, 1, testutil.CountRows(t, env,
		"SELECT COUNT(*) FROM transactions WHERE transaction_hash = $1 AND type = 'ENTRY_FEE' AND amount = 0.25", "sig-1"))
	assert.Equal(t, 1, testutil.CountOutboxEvents(t, env, contestID, "entered"))
	assert.Equal(t, "applied", signatureOutcome(t, env, "sig-1"))

	processed, err := store.Processed(ctx, "sig-1")
	require.NoError(t, err)
	assert.True(t, processed)
}

func TestPgStore_DuplicateSignature(t *testing.T) {
	env := testutil.NewTestEnv(t)
	contestID := openContest(t, env)
	store := newPgStore(env)
	ctx := context.Background()

	ev := settlement.ContestEntered{ContestID: contestID.String(), User: testWallet, EntryFee: 250_000_000}
	_, err := store.ApplyContestEntered(ctx, "sig-dup", ev)
	require.NoError(t, err)

	res, err := store.ApplyContestEntered(ctx, "sig-dup", ev)
	require.NoError(t, err)
	assert.Equal(t, settlement.OutcomeDuplicate, res.Outcome)
	assert.Equal(t, 1, testutil.CountRows(t, env, "SELECT COUNT(*) FROM transactions WHERE transaction_hash = $1", "sig-dup"))
}

func TestPgStore_ConcurrentSameSignature(t *testing.T) {
	env := testutil.NewTestEnv(t)
	contestID := openContest(t, env)
	store := newPgStore(env)

	ev := settlement.ContestEntered{ContestID: contestID.String(), User: testWallet, EntryFee: 250_000_000}

	const workers = 6
	outcomes := make([]settlement.Outcome, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := store.ApplyContestEntered(context.Background(), "sig-race", ev)
			if err == nil {
				outcomes[i] = res.Outcome
			}
		}(i)
	}
	wg.Wait()

	applied := 0
	for _, o := range outcomes {
		if o == settlement.OutcomeApplied {
			applied++
		}
	}
	assert.Equal(t, 1, applied)
	assert.Equal(t, 1, testutil.CountRows(t, env, "SELECT COUNT(*) FROM user_contests WHERE contest_id = $1", contestID))
}

func TestPgStore_SecondEntrySameWallet(t *testing.T) {
	env := testutil.NewTestEnv(t)
	contestID := openContest(t, env)
	store := newPgStore(env)
	ctx := context.Background()

	ev := settlement.ContestEntered{ContestID: contestID.String(), User: testWallet, EntryFee: 250_000_000}
	_, err := store.ApplyContestEntered(ctx, "sig-a", ev)
	require.NoError(t, err)

	res, err := store.ApplyContestEntered(ctx, "sig-b", ev)
	require.NoError(t, err)
	assert.Equal(t, settlement.OutcomeRejected, res.Outcome)
	assert.Equal(t, "rejected", signatureOutcome(t, env, "sig-b"))
	assert.Equal(t, 0, testutil.CountRows(t, env, "SELECT COUNT(*) FROM transactions WHERE transaction_hash = $1", "sig-b"))
}

func TestPgStore_UnknownContestRejected(t *testing.T) {
	env := testutil.NewTestEnv(t)
	store := newPgStore(env)
	ctx := context.Background()

	res, err := store.ApplyContestEntered(ctx, "sig-unknown",
		settlement.ContestEntered{ContestID: uuid.NewString(), User: testWallet, EntryFee: 1})
	require.NoError(t, err)
	assert.Equal(t, settlement.OutcomeRejected, res.Outcome)
	assert.Equal(t, "rejected", signatureOutcome(t, env, "sig-unknown"))
	assert.Equal(t, 0, testutil.CountRows(t, env, "SELECT COUNT(*) FROM users WHERE wallet_address = $1", testWallet))

	res, err = store.ApplyContestEntered(ctx, "sig-bad-id",
		settlement.ContestEntered{ContestID: "on-chain-7", User: testWallet, EntryFee: 1})
	require.NoError(t, err)
	assert.Equal(t, settlement.OutcomeRejected, res.Outcome)
}

func TestPgStore_TerminalContestRejected(t *testing.T) {
	for _, status := range []string{"COMPLETED", "CANCELLED"} {
		t.Run(status, func(t *testing.T) {
			env := testutil.NewTestEnv(t)
			admin := env.CreateAdmin("admin@test.com")
			fx := env.CreateFixture(admin)
			env.SetStatus("contests", fx.ContestID, "OPEN", admin)
			env.SetStatus("contests", fx.ContestID, status, admin)
			store := newPgStore(env)

			sig := "sig-" + status
			res, err := store.ApplyContestEntered(context.Background(), sig,
				settlement.ContestEntered{ContestID: fx.ContestID.String(), User: testWallet, EntryFee: 250_000_000})
			require.NoError(t, err)
			assert.Equal(t, settlement.OutcomeRejected, res.Outcome)
			assert.Contains(t, res.Reason, status)

			assert.Equal(t, "rejected", signatureOutcome(t, env, sig))
			assert.Equal(t, 0, testutil.CountRows(t, env, "SELECT COUNT(*) FROM user_contests WHERE contest_id = $1", fx.ContestID))
			assert.Equal(t, 0, testutil.CountRows(t, env, "SELECT COUNT(*) FROM transactions WHERE transaction_hash = $1", sig))
			assert.Equal(t, 0, testutil.CountRows(t, env, "SELECT COUNT(*) FROM users WHERE wallet_address = $1", testWallet))
			assert.Equal(t, 0, testutil.CountOutboxEvents(t, env, fx.ContestID, "entered"))
		})
	}
}

func TestPgStore_RecordIgnored(t *testing.T) {
	env := testutil.NewTestEnv(t)
	store := newPgStore(env)
	ctx := context.Background()

	res, err := store.RecordIgnored(ctx, "sig-created", settlement.EventContestCreated, "informational")
	require.NoError(t, err)
	assert.Equal(t, settlement.OutcomeIgnored, res.Outcome)
	assert.Equal(t, "ignored", signatureOutcome(t, env, "sig-created"))

	res, err = store.RecordIgnored(ctx, "sig-created", settlement.EventContestCreated, "informational")
	require.NoError(t, err)
	assert.Equal(t, settlement.OutcomeDuplicate, res.Outcome)
}
