// Package ledger provides an in-memory host interface capability for
// tests and tooling: accounts with a balance and deployed bytecode,
// value transfer on call initiation and a call stack mirroring the
// frames of one invocation. Production chains supply their own
// types.Interface; the execution core is agnostic to which one it gets.
package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	dbm "github.com/cometbft/cometbft-db"
	"github.com/rs/zerolog"
	"github.com/shamaton/msgpack/v2"

	"github.com/halcyonchain/scvm/types"
)

// addressPrefix marks addresses derived from bytecode checksums.
const addressPrefix = "SC"

var (
	// ErrUnknownAddress reports a call target with no account.
	ErrUnknownAddress = errors.New("unknown address")
	// ErrInsufficientFunds reports a transfer exceeding the caller's balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrEmptyCallStack reports call-stack bookkeeping with no active frame.
	ErrEmptyCallStack = errors.New("call stack is empty")
)

// account is the stored record for one address.
type account struct {
	Balance  uint64 `msgpack:"balance"`
	Bytecode []byte `msgpack:"bytecode"`
}

// Ledger implements types.Interface on a cometbft-db backend.
type Ledger struct {
	db     dbm.DB
	costs  types.GasCosts
	logger zerolog.Logger

	// stack holds the addresses of the active call chain, innermost
	// last. InitCall pushes, FinishCall pops.
	stack []string
}

var _ types.Interface = (*Ledger)(nil)

// New creates an empty ledger with the default cost schedule.
func New(logger zerolog.Logger) *Ledger {
	return NewWithCosts(logger, types.DefaultGasCosts())
}

// NewWithCosts creates an empty ledger with a custom cost schedule.
func NewWithCosts(logger zerolog.Logger, costs types.GasCosts) *Ledger {
	return &Ledger{
		db:     dbm.NewMemDB(),
		costs:  costs,
		logger: logger,
	}
}

func accountKey(address string) []byte {
	return []byte("acct/" + address)
}

func (l *Ledger) getAccount(address string) (account, error) {
	raw, err := l.db.Get(accountKey(address))
	if err != nil {
		return account{}, fmt.Errorf("reading account %q: %w", address, err)
	}
	if raw == nil {
		return account{}, fmt.Errorf("%w: %s", ErrUnknownAddress, address)
	}
	var acct account
	if err := msgpack.Unmarshal(raw, &acct); err != nil {
		return account{}, &types.SerializationError{Msg: "decoding account " + address, Err: err}
	}
	return acct, nil
}

func (l *Ledger) putAccount(address string, acct account) error {
	raw, err := msgpack.Marshal(acct)
	if err != nil {
		return &types.SerializationError{Msg: "encoding account " + address, Err: err}
	}
	if err := l.db.Set(accountKey(address), raw); err != nil {
		return fmt.Errorf("writing account %q: %w", address, err)
	}
	return nil
}

// CreateAccount registers an address holding a balance and no bytecode.
func (l *Ledger) CreateAccount(address string, balance uint64) error {
	return l.putAccount(address, account{Balance: balance})
}

// SetBytecode deploys bytecode at an existing address.
func (l *Ledger) SetBytecode(address string, bytecode []byte) error {
	acct, err := l.getAccount(address)
	if err != nil {
		return err
	}
	acct.Bytecode = append([]byte(nil), bytecode...)
	return l.putAccount(address, acct)
}

// Balance returns the funds held at an address.
func (l *Ledger) Balance(address string) (uint64, error) {
	acct, err := l.getAccount(address)
	if err != nil {
		return 0, err
	}
	return acct.Balance, nil
}

// PushCaller sets the top-level caller of an invocation. The execution
// core never calls this; the host runtime does before entering the
// sandbox so value transfers have a payer.
func (l *Ledger) PushCaller(address string) {
	l.stack = append(l.stack, address)
}

// InitCall resolves address to its bytecode and applies the value
// transfer from the active caller. All checks run before any mutation,
// so a failed InitCall leaves balances untouched.
func (l *Ledger) InitCall(address string, coins uint64) ([]byte, error) {
	callee, err := l.getAccount(address)
	if err != nil {
		return nil, err
	}
	if coins > 0 {
		if len(l.stack) == 0 {
			return nil, fmt.Errorf("%w: no caller to transfer from", ErrEmptyCallStack)
		}
		from := l.stack[len(l.stack)-1]
		caller, err := l.getAccount(from)
		if err != nil {
			return nil, err
		}
		if caller.Balance < coins {
			return nil, fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientFunds, from, caller.Balance, coins)
		}
		caller.Balance -= coins
		callee.Balance += coins
		if err := l.putAccount(from, caller); err != nil {
			return nil, err
		}
		if err := l.putAccount(address, callee); err != nil {
			return nil, err
		}
	}
	l.stack = append(l.stack, address)
	l.logger.Debug().Str("address", address).Uint64("coins", coins).Msg("call initiated")
	return append([]byte(nil), callee.Bytecode...), nil
}

// FinishCall pops the finished frame off the call stack.
func (l *Ledger) FinishCall() error {
	if len(l.stack) == 0 {
		return ErrEmptyCallStack
	}
	l.stack = l.stack[:len(l.stack)-1]
	return nil
}

// CreateModule registers bytecode under an address derived from its
// checksum and returns that address. Registration only: the bytecode is
// neither compiled nor executed here.
func (l *Ledger) CreateModule(bytecode []byte) (string, error) {
	sum := sha256.Sum256(bytecode)
	address := addressPrefix + hex.EncodeToString(sum[:])
	if err := l.putAccount(address, account{Bytecode: append([]byte(nil), bytecode...)}); err != nil {
		return "", err
	}
	l.logger.Debug().Str("address", address).Int("size", len(bytecode)).Msg("module created")
	return address, nil
}

// GasCosts exposes the ledger's cost schedule.
func (l *Ledger) GasCosts() types.GasCosts {
	return l.costs
}

// CallDepth reports how many frames are currently active.
func (l *Ledger) CallDepth() int {
	return len(l.stack)
}
