package ledger

import (
	"fmt"

	"github.com/dvloznov/kitab-khata/internal/domain"
)

// State is everything the ledger screen depends on. It is a value: Reduce
// returns a new State and leaves the old one untouched.
type State struct {
	Records          []domain.Transaction
	SelectedCustomer string
	SearchTerm       string
	Sort             domain.SortDirection
}

// Action is a state transition understood by Reduce.
type Action interface {
	isAction()
}

// CreateAction records a new sale. The new record is Records[0] of the
// resulting state.
type CreateAction struct{ Input domain.Input }

// UpdateAction replaces the fields of an existing sale.
type UpdateAction struct {
	ID    string
	Input domain.Input
}

// DeleteAction removes a sale.
type DeleteAction struct{ ID string }

// SelectCustomer opens (or with an empty name closes) a customer's account.
type SelectCustomer struct{ Name string }

// SetSearch changes the search term.
type SetSearch struct{ Term string }

// SetSort changes the date ordering.
type SetSort struct{ Direction domain.SortDirection }

// ReplaceAll swaps in a freshly loaded record store.
type ReplaceAll struct{ Records []domain.Transaction }

func (CreateAction) isAction()   {}
func (UpdateAction) isAction()   {}
func (DeleteAction) isAction()   {}
func (SelectCustomer) isAction() {}
func (SetSearch) isAction()      {}
func (SetSort) isAction()        {}
func (ReplaceAll) isAction()     {}

// Reduce applies a to s.
func Reduce(s State, a Action) (State, error) {
	switch a := a.(type) {
	case CreateAction:
		s.Records = Insert(s.Records, NewTransaction(a.Input))
	case UpdateAction:
		records, _, err := Replace(s.Records, a.ID, a.Input)
		if err != nil {
			return s, err
		}
		s.Records = records
	case DeleteAction:
		records, err := Remove(s.Records, a.ID)
		if err != nil {
			return s, err
		}
		s.Records = records
	case SelectCustomer:
		s.SelectedCustomer = a.Name
	case SetSearch:
		s.SearchTerm = a.Term
	case SetSort:
		s.Sort = a.Direction
	case ReplaceAll:
		s.Records = clone(a.Records)
	default:
		return s, fmt.Errorf("Reduce: unknown action %T", a)
	}
	return s, nil
}

// View is what a screen renders for a State.
type View struct {
	Stats           domain.LedgerStats   `json:"stats"`
	Visible         []domain.Transaction `json:"visible"`
	Customer        string               `json:"customer,omitempty"`
	CustomerRecords []domain.Transaction `json:"customerRecords"`
	CustomerStats   domain.CustomerStats `json:"customerStats"`
}

// View derives the presentation of s.
func (s State) View() View {
	records, stats := Rollup(s.Records, s.SelectedCustomer)
	return View{
		Stats:           Stats(s.Records),
		Visible:         Search(s.Records, s.SearchTerm, s.sort()),
		Customer:        s.SelectedCustomer,
		CustomerRecords: records,
		CustomerStats:   stats,
	}
}

func (s State) sort() domain.SortDirection {
	if s.Sort == "" {
		return domain.SortDesc
	}
	return s.Sort
}
