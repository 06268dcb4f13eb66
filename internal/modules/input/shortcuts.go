package input

import (
	"sort"
	"strings"
)

// Action is what a shortcut asks the terminal to do.
type Action string

const (
	ActionNewSale        Action = "new_sale"
	ActionOpenSearch     Action = "open_search"
	ActionFocusCustomer  Action = "focus_customer"
	ActionOpenDiscount   Action = "open_discount"
	ActionOpenSangria    Action = "open_sangria"
	ActionOpenSuprimento Action = "open_suprimento"
	ActionRemoveLastItem Action = "remove_last_item"
	ActionCancelSale     Action = "cancel_sale"
	ActionFinalizeSale   Action = "finalize_sale"
	ActionOpenHistory    Action = "open_history"
	ActionOpenDashboard  Action = "open_dashboard"
	ActionCloseModal     Action = "close_modal"
)

// Binding is a key with its modifier.
type Binding struct {
	Key  string `json:"key"`
	Ctrl bool   `json:"ctrl,omitempty"`
}

func (b Binding) String() string {
	if b.Ctrl {
		return "Ctrl+" + b.Key
	}
	return b.Key
}

// Shortcut is one row of the table.
type Shortcut struct {
	Binding
	Action Action `json:"action"`
}

var table = map[Binding]Action{
	{Key: "F2"}:            ActionNewSale,
	{Key: "F3"}:            ActionOpenSearch,
	{Key: "F4"}:            ActionFocusCustomer,
	{Key: "F5"}:            ActionOpenDiscount,
	{Key: "F6"}:            ActionOpenSangria,
	{Key: "F7"}:            ActionOpenSuprimento,
	{Key: "F8"}:            ActionRemoveLastItem,
	{Key: "F9"}:            ActionCancelSale,
	{Key: "F10"}:           ActionFinalizeSale,
	{Key: "H", Ctrl: true}: ActionOpenHistory,
	{Key: "D", Ctrl: true}: ActionOpenDashboard,
	{Key: "Escape"}:        ActionCloseModal,
}

// Dispatch maps a keystroke to its action. While a modal is open only Escape
// is dispatched.
func Dispatch(ev KeyEvent, modalOpen bool) (Action, bool) {
	b := normalize(ev)
	action, ok := table[b]
	if !ok {
		return "", false
	}
	if modalOpen && action != ActionCloseModal {
		return "", false
	}
	return action, true
}

// Shortcuts lists the table ordered by key for help screens.
func Shortcuts() []Shortcut {
	out := make([]Shortcut, 0, len(table))
	for b, a := range table {
		out = append(out, Shortcut{Binding: b, Action: a})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Ctrl != out[j].Ctrl {
			return !out[i].Ctrl
		}
		if len(out[i].Key) != len(out[j].Key) {
			return len(out[i].Key) < len(out[j].Key)
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func normalize(ev KeyEvent) Binding {
	key := ev.Key
	switch {
	case key == "":
	case strings.EqualFold(key, "esc"), strings.EqualFold(key, "escape"):
		key = "Escape"
	case len(key) == 1:
		key = strings.ToUpper(key)
	default:
		key = strings.ToUpper(key[:1]) + key[1:]
	}
	return Binding{Key: key, Ctrl: ev.Ctrl}
}
