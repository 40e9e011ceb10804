package digest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"danaku/internal/mailer"
	"danaku/internal/models"
	"danaku/internal/testutil"
)

type fakeSender struct {
	mu      sync.Mutex
	sent    []mailer.Message
	failFor string
}

func (f *fakeSender) Send(_ context.Context, msg mailer.Message) error {
	if msg.ToEmail == f.failFor {
		return errors.New("emailjs down")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeSender) byEmail(email string) (mailer.Message, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.sent {
		if m.ToEmail == email {
			return m, true
		}
	}
	return mailer.Message{}, false
}

func TestFormatRupiah(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "0", want: "Rp 0"},
		{in: "950", want: "Rp 950"},
		{in: "1000", want: "Rp 1.000"},
		{in: "1234567", want: "Rp 1.234.567"},
		{in: "100000000", want: "Rp 100.000.000"},
		{in: "-50000", want: "-Rp 50.000"},
		{in: "1999.6", want: "Rp 2.000"},
		{in: "-0.4", want: "Rp 0"},
		{in: "9999999999999999", want: "Rp 9.999.999.999.999.999"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatRupiah(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "7/1/2025", FormatDate(time.Date(2025, 1, 7, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, "31/12/2024", FormatDate(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)))
}

func TestNextRun(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*60*60)

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "later_today",
			now:  time.Date(2025, 3, 10, 9, 0, 0, 0, jakarta),
			want: time.Date(2025, 3, 10, 23, 0, 0, 0, jakarta),
		},
		{
			name: "exactly_at_run_time_goes_to_tomorrow",
			now:  time.Date(2025, 3, 10, 23, 0, 0, 0, jakarta),
			want: time.Date(2025, 3, 11, 23, 0, 0, 0, jakarta),
		},
		{
			name: "utc_input_converted",
			now:  time.Date(2025, 3, 10, 17, 30, 0, 0, time.UTC), // 00:30 on the 11th in Jakarta
			want: time.Date(2025, 3, 11, 23, 0, 0, 0, jakarta),
		},
		{
			name: "month_rollover",
			now:  time.Date(2025, 1, 31, 23, 30, 0, 0, jakarta),
			want: time.Date(2025, 2, 1, 23, 0, 0, 0, jakarta),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextRun(tt.now, 23, 0, jakarta)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}

func TestBuilder_Build(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	db.Model(user).Update("name", "")
	user.Name = ""
	wallet := testutil.CreateTestWalletWithBalance(t, db, user.ID, 100000)
	testutil.CreateTestTransaction(t, db, user.ID, wallet.ID, models.TransactionTypeExpense, "Jajan", 25000)

	rep, err := NewBuilder(db).Build(context.Background(), user, time.Date(2025, 5, 17, 23, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, DefaultName, rep.Name)
	assert.Equal(t, user.Email, rep.Email)
	assert.Equal(t, "17/5/2025", rep.Date)
	assert.True(t, rep.TotalBalance.Equal(decimal.NewFromInt(75000)))
	assert.Equal(t, 2, rep.TransactionCount)

	msg := rep.Message()
	assert.Equal(t, "Rp 75.000", msg.Params["total_balance"])
	assert.Equal(t, 2, msg.Params["total_transactions"])
	assert.Equal(t, "User", msg.Params["to_name"])
}

func TestRunner_RunOnce(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	alice := testutil.CreateTestUserWithEmail(t, db, "alice@example.com")
	testutil.CreateTestWalletWithBalance(t, db, alice.ID, 5000)
	testutil.CreateTestUserWithEmail(t, db, "broken@example.com")
	noEmail := testutil.CreateTestUserWithEmail(t, db, "temp@example.com")
	db.Model(noEmail).Update("email", "")
	inactive := testutil.CreateTestUserWithEmail(t, db, "inactive@example.com")
	db.Model(inactive).Update("is_active", false)

	sender := &fakeSender{failFor: "broken@example.com"}
	runner := NewRunner(db, sender, DefaultSchedule())

	result, err := runner.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Users)
	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Errors, 1)

	msg, ok := sender.byEmail("alice@example.com")
	require.True(t, ok)
	assert.Equal(t, "Rp 5.000", msg.Params["total_balance"])
	assert.Equal(t, "Test User", msg.Params["to_name"])

	_, ok = sender.byEmail("inactive@example.com")
	assert.False(t, ok)
}

func TestRunner_StartStopsOnCancel(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	runner := NewRunner(db, &fakeSender{}, DefaultSchedule())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		runner.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}
