// Package keys defines the closed set of actions an on-screen key can carry.
package keys

import "fmt"

// Kind enumerates key actions.
type Kind uint8

const (
	None Kind = iota
	Char
	Backspace
	Send
	StoreTX
	QueryTX
	ClearTX
	StoreRX
	QueryRX
	ClearRX
	SendChunks
)

var kindNames = [...]string{
	None:       "none",
	Char:       "char",
	Backspace:  "backspace",
	Send:       "send",
	StoreTX:    "store-tx",
	QueryTX:    "query-tx",
	ClearTX:    "clear-tx",
	StoreRX:    "store-rx",
	QueryRX:    "query-rx",
	ClearRX:    "clear-rx",
	SendChunks: "send-chunks",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Action is attached to a region when the layout is built. C is only
// meaningful for Char.
type Action struct {
	Kind Kind
	C    byte
}

// Of returns an action without a character.
func Of(k Kind) Action { return Action{Kind: k} }

// Rune returns a Char action typing c.
func Rune(c byte) Action { return Action{Kind: Char, C: c} }

func (a Action) String() string {
	if a.Kind == Char {
		return fmt.Sprintf("char(%q)", a.C)
	}
	return a.Kind.String()
}
