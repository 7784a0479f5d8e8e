package persist

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/kitab-khata/internal/domain"
)

func sampleRecords() []domain.Transaction {
	cheque := "004512"
	return []domain.Transaction{
		{
			ID: "b", Date: "2024-03-02", CustomerName: "Sunita", BookTitle: "RD Sharma Maths",
			TotalPrice: decimal.RequireFromString("650.50"), AmountPaid: decimal.RequireFromString("650.50"),
			Balance: decimal.Zero, PaymentMethod: domain.PaymentCheque, ChequeNumber: &cheque,
			Notes: "school order", Status: domain.StatusPaid,
		},
		{
			ID: "a", Date: "2024-03-01", CustomerName: "Ramesh", BookTitle: "NCERT Physics XI",
			TotalPrice: decimal.NewFromInt(450), AmountPaid: decimal.NewFromInt(200),
			Balance: decimal.NewFromInt(250), PaymentMethod: domain.PaymentCash, Status: domain.StatusPartial,
		},
	}
}

func requireSameRecords(t *testing.T, want, got []domain.Transaction) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		w, g := want[i], got[i]
		assert.Equal(t, w.ID, g.ID)
		assert.Equal(t, w.Date, g.Date)
		assert.Equal(t, w.CustomerName, g.CustomerName)
		assert.Equal(t, w.BookTitle, g.BookTitle)
		assert.True(t, w.TotalPrice.Equal(g.TotalPrice), "totalPrice %s != %s", w.TotalPrice, g.TotalPrice)
		assert.True(t, w.AmountPaid.Equal(g.AmountPaid), "amountPaid %s != %s", w.AmountPaid, g.AmountPaid)
		assert.True(t, w.Balance.Equal(g.Balance), "balance %s != %s", w.Balance, g.Balance)
		assert.Equal(t, w.PaymentMethod, g.PaymentMethod)
		assert.Equal(t, w.ChequeNumber, g.ChequeNumber)
		assert.Equal(t, w.Notes, g.Notes)
		assert.Equal(t, w.Status, g.Status)
	}
}

func TestDecode_Empty(t *testing.T) {
	for _, in := range []string{"", "  \n", "null", "[]"} {
		got, err := Decode([]byte(in))
		require.NoError(t, err, in)
		assert.NotNil(t, got, in)
		assert.Empty(t, got, in)
	}
}

func TestDecode_AcceptsNumericAmounts(t *testing.T) {
	data := `[{"id":"x","date":"2024-01-01","customerName":"A","bookTitle":"B",
		"totalPrice":100,"amountPaid":40.5,"balance":59.5,"paymentMethod":"UPI","status":"Partial"}]`
	got, err := Decode([]byte(data))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "40.5", got[0].AmountPaid.String())
	assert.Nil(t, got[0].ChequeNumber)
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode([]byte(`{"not":"an array"}`))
	assert.Error(t, err)
}

func TestEncode_NilIsEmptyArray(t *testing.T) {
	data, err := Encode(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestEncode_AmountsAreNumbers(t *testing.T) {
	data, err := Encode([]domain.Transaction{{
		ID: "x", Date: "2024-01-01", CustomerName: "A", BookTitle: "B",
		TotalPrice: decimal.RequireFromString("100.50"), AmountPaid: decimal.NewFromInt(40),
		Balance: decimal.RequireFromString("60.5"), PaymentMethod: domain.PaymentUPI, Status: domain.StatusPartial,
	}})
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, `"totalPrice":100.5`)
	assert.Contains(t, out, `"amountPaid":40`)
	assert.Contains(t, out, `"balance":60.5`)
	assert.NotContains(t, out, `"totalPrice":"`)
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	want := sampleRecords()
	data, err := Encode(want)
	require.NoError(t, err)
	got, err := Decode(data)
	require.NoError(t, err)
	requireSameRecords(t, want, got)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, s.Save(ctx, sampleRecords()))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	requireSameRecords(t, sampleRecords(), got)
	assert.Equal(t, 1, s.Saves())

	_, err = s.LoadUser(ctx)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestBoltStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "khata.db")

	s, err := OpenBolt(path)
	require.NoError(t, err)

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	require.NoError(t, s.Save(ctx, sampleRecords()))
	require.NoError(t, s.Close())

	// Reopen to make sure the data reached the file.
	s, err = OpenBolt(path)
	require.NoError(t, err)
	defer s.Close()

	got, err = s.Load(ctx)
	require.NoError(t, err)
	requireSameRecords(t, sampleRecords(), got)

	require.NoError(t, s.Save(ctx, []domain.Transaction{}))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBoltStore_User(t *testing.T) {
	ctx := context.Background()
	s, err := OpenBolt(filepath.Join(t.TempDir(), "khata.db"))
	require.NoError(t, err)
	defer s.Close()

	_, err = s.LoadUser(ctx)
	assert.ErrorIs(t, err, ErrNoData)

	user := domain.User{Name: "Vikas Kumar", Email: "vikas.kumar@shop.local", ID: "local-1"}
	require.NoError(t, s.SaveUser(ctx, user))

	got, err := s.LoadUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, user, got)

	require.NoError(t, s.ClearUser(ctx))
	_, err = s.LoadUser(ctx)
	assert.ErrorIs(t, err, ErrNoData)
}
