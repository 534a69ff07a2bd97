package assistant

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Action kinds, as spelled in the "action" field of the model response.
const (
	KindAddTransaction = "add_transaction"
	KindCreateAccount  = "create_account"
	KindDeleteAccount  = "delete_account"
	KindAskUser        = "ask_user"
	KindInformUser     = "inform_user"
	KindGetAccounts    = "get_accounts"
)

// Action is one instruction of a Batch. The set of implementations is closed:
// AddTransaction, CreateAccount, DeleteAccount, AskUser, InformUser,
// GetAccounts, Unknown and Invalid.
type Action interface {
	// Kind returns the action name as found in the model response.
	Kind() string
	isAction()
}

// AddTransaction records one transaction. A transfer between two accounts is
// two AddTransaction actions.
type AddTransaction struct {
	AccountID       string          `json:"accountId"`
	Type            string          `json:"type"` // "income" or "expense"
	Amount          decimal.Decimal `json:"amount"`
	Category        string          `json:"category,omitempty"`
	Date            string          `json:"date,omitempty"` // "YYYY-MM-DD"
	Note            string          `json:"note,omitempty"`
	IsFriendPayment bool            `json:"isFriendPayment,omitempty"`
}

// CreateAccount creates an account with a name not used yet.
type CreateAccount struct {
	AccountName string `json:"accountName"`
}

// DeleteAccount deletes an account and all its transactions.
type DeleteAccount struct {
	AccountID string `json:"accountId"`
}

// AskUser asks the user for clarification.
type AskUser struct {
	Message string `json:"message"`
}

// InformUser gives the user an answer or any other information.
type InformUser struct {
	Message string `json:"message"`
}

// GetAccounts acknowledges a request for the account list.
type GetAccounts struct{}

// Unknown is an action with an unrecognized kind. It is kept so that the
// batch can report it instead of failing.
type Unknown struct {
	Name string
	Raw  json.RawMessage
}

// Invalid is an action of a known kind whose fields could not be decoded,
// such as an amount written "₹50". It fails on its own, the other actions of
// the batch are applied.
type Invalid struct {
	Name string          `json:"action"`
	Raw  json.RawMessage `json:"raw"`
	Err  error           `json:"-"`
}

func (AddTransaction) Kind() string { return KindAddTransaction }
func (CreateAccount) Kind() string  { return KindCreateAccount }
func (DeleteAccount) Kind() string  { return KindDeleteAccount }
func (AskUser) Kind() string        { return KindAskUser }
func (InformUser) Kind() string     { return KindInformUser }
func (GetAccounts) Kind() string    { return KindGetAccounts }
func (u Unknown) Kind() string      { return u.Name }
func (i Invalid) Kind() string      { return i.Name }

func (AddTransaction) isAction() {}
func (CreateAccount) isAction()  {}
func (DeleteAccount) isAction()  {}
func (AskUser) isAction()        {}
func (InformUser) isAction()     {}
func (GetAccounts) isAction()    {}
func (Unknown) isAction()        {}
func (Invalid) isAction()        {}

// textID decodes identifiers the model writes either as strings or as numbers.
type textID string

func (id *textID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = textID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", b, err)
	}
	*id = textID(n.String())
	return nil
}

// DecodeActions parses a model response into its actions.
//
// The response is either a single action object, an object whose "actions"
// field holds a list of actions (or a single one), or a bare list of actions.
//
// Only a document that is not JSON, or not shaped as above, is an error. An
// action whose fields have the wrong type is returned as Invalid.
func DecodeActions(b []byte) ([]Action, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil, errors.New("empty document")
	}
	if !json.Valid(b) {
		return nil, fmt.Errorf("invalid JSON %.40q", b)
	}
	switch b[0] {
	case '[':
		return decodeList(b)
	case '{':
	default:
		return nil, fmt.Errorf("expected a JSON object, got %.20q", b)
	}

	var top struct {
		Actions json.RawMessage `json:"actions"`
	}
	if err := json.Unmarshal(b, &top); err != nil {
		return nil, err
	}
	actions := bytes.TrimSpace(top.Actions)
	if len(actions) == 0 || bytes.Equal(actions, []byte("null")) {
		a, err := decodeAction(b)
		if err != nil {
			return nil, err
		}
		return []Action{a}, nil
	}
	if actions[0] == '{' {
		a, err := decodeAction(actions)
		if err != nil {
			return nil, err
		}
		return []Action{a}, nil
	}
	return decodeList(actions)
}

func decodeList(b []byte) ([]Action, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(b, &raws); err != nil {
		return nil, err
	}
	out := make([]Action, 0, len(raws))
	for i, raw := range raws {
		a, err := decodeAction(raw)
		if err != nil {
			return nil, fmt.Errorf("action #%d: %w", i+1, err)
		}
		out = append(out, a)
	}
	return out, nil
}

func invalid(kind string, b []byte, err error) Action {
	return Invalid{Name: kind, Raw: append(json.RawMessage(nil), b...), Err: err}
}

// decodeAction decodes one action. Only an element that is not an object
// with a textual "action" field is an error.
func decodeAction(b []byte) (Action, error) {
	var head struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return nil, err
	}
	switch head.Action {
	case KindAddTransaction:
		var v struct {
			AccountID       textID          `json:"accountId"`
			Type            string          `json:"type"`
			Amount          decimal.Decimal `json:"amount"`
			Category        string          `json:"category"`
			Date            string          `json:"date"`
			Note            string          `json:"note"`
			IsFriendPayment bool            `json:"isFriendPayment"`
		}
		if err := json.Unmarshal(b, &v); err != nil {
			return invalid(head.Action, b, err), nil
		}
		return AddTransaction{
			AccountID:       string(v.AccountID),
			Type:            v.Type,
			Amount:          v.Amount,
			Category:        v.Category,
			Date:            v.Date,
			Note:            v.Note,
			IsFriendPayment: v.IsFriendPayment,
		}, nil
	case KindCreateAccount:
		var v CreateAccount
		if err := json.Unmarshal(b, &v); err != nil {
			return invalid(head.Action, b, err), nil
		}
		return v, nil
	case KindDeleteAccount:
		var v struct {
			AccountID textID `json:"accountId"`
		}
		if err := json.Unmarshal(b, &v); err != nil {
			return invalid(head.Action, b, err), nil
		}
		return DeleteAccount{AccountID: string(v.AccountID)}, nil
	case KindAskUser:
		var v AskUser
		if err := json.Unmarshal(b, &v); err != nil {
			return invalid(head.Action, b, err), nil
		}
		return v, nil
	case KindInformUser:
		var v InformUser
		if err := json.Unmarshal(b, &v); err != nil {
			return invalid(head.Action, b, err), nil
		}
		return v, nil
	case KindGetAccounts:
		return GetAccounts{}, nil
	default:
		return Unknown{Name: head.Action, Raw: append(json.RawMessage(nil), b...)}, nil
	}
}
