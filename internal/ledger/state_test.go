package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/kitab-khata/internal/domain"
)

func input(customer, date, total, paid string) domain.Input {
	return domain.Input{
		Date:          date,
		CustomerName:  customer,
		BookTitle:     "Lakhmir Singh Chemistry",
		TotalPrice:    d(total),
		AmountPaid:    d(paid),
		PaymentMethod: domain.PaymentUPI,
	}
}

func TestReduce_CreatePrependsNewest(t *testing.T) {
	s := State{}
	s, err := Reduce(s, CreateAction{Input: input("Amit", "2024-01-01", "100", "0")})
	require.NoError(t, err)
	s, err = Reduce(s, CreateAction{Input: input("Bina", "2024-01-02", "200", "0")})
	require.NoError(t, err)

	require.Len(t, s.Records, 2)
	assert.Equal(t, "Bina", s.Records[0].CustomerName)
	assert.Equal(t, "Amit", s.Records[1].CustomerName)
}

func TestReduce_DoesNotMutatePreviousState(t *testing.T) {
	s0, err := Reduce(State{}, CreateAction{Input: input("Amit", "2024-01-01", "100", "0")})
	require.NoError(t, err)
	id := s0.Records[0].ID

	s1, err := Reduce(s0, UpdateAction{ID: id, Input: input("Amit", "2024-01-01", "100", "100")})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUnpaid, s0.Records[0].Status)
	assert.Equal(t, domain.StatusPaid, s1.Records[0].Status)

	s2, err := Reduce(s1, DeleteAction{ID: id})
	require.NoError(t, err)
	assert.Empty(t, s2.Records)
	assert.Len(t, s1.Records, 1)
}

func TestReduce_UnknownIDs(t *testing.T) {
	s := State{Records: []domain.Transaction{bill("Amit", "1", "0")}}

	_, err := Reduce(s, UpdateAction{ID: "missing", Input: input("x", "2024-01-01", "1", "1")})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = Reduce(s, DeleteAction{ID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReduce_UpdateKeepsPosition(t *testing.T) {
	records := []domain.Transaction{bill("A", "1", "0"), bill("B", "1", "0"), bill("C", "1", "0")}
	s := State{Records: records}

	next, err := Reduce(s, UpdateAction{ID: records[1].ID, Input: input("B2", "2024-01-01", "5", "1")})
	require.NoError(t, err)
	assert.Equal(t, []string{records[0].ID, records[1].ID, records[2].ID}, ids(next.Records))
	assert.Equal(t, "B2", next.Records[1].CustomerName)
}

func TestState_View(t *testing.T) {
	s := State{}
	var err error
	for _, in := range []domain.Input{
		input("Alice", "2024-01-01", "100", "40"),
		input("Bob", "2024-03-01", "50", "50"),
		input("Alice", "2024-02-01", "10", "0"),
	} {
		s, err = Reduce(s, CreateAction{Input: in})
		require.NoError(t, err)
	}

	s, _ = Reduce(s, SetSearch{Term: "ali"})
	s, _ = Reduce(s, SetSort{Direction: domain.SortAsc})
	s, _ = Reduce(s, SelectCustomer{Name: "Alice"})

	v := s.View()
	assert.Equal(t, 3, v.Stats.TransactionCount)
	assert.Equal(t, []string{"2024-01-01", "2024-02-01"}, dates(v.Visible))
	assert.Len(t, v.CustomerRecords, 2)
	assert.True(t, v.CustomerStats.Due.Equal(d("70")))

	s, _ = Reduce(s, SelectCustomer{Name: ""})
	v = s.View()
	assert.Empty(t, v.CustomerRecords)
	assert.True(t, v.CustomerStats.Total.IsZero())
}

func TestReduce_ReplaceAllCopies(t *testing.T) {
	loaded := []domain.Transaction{bill("A", "1", "0")}
	s, err := Reduce(State{}, ReplaceAll{Records: loaded})
	require.NoError(t, err)

	loaded[0].CustomerName = "changed"
	assert.Equal(t, "A", s.Records[0].CustomerName)
}
