// Package script runs Lua scripts with a global dice table.
//
//	dice.init([seed])
//	dice.version()
//	dice.roll(sides)
//	dice.roll_multiple(count, sides)
//	dice.roll_individual(count, sides) -- sum, {d1, d2, ...}
//	dice.roll_notation(text)
//
// Dice failures raise Lua errors prefixed with the error kind, for example
// "InvalidSides: invalid number of sides: 0".
package script

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/Shopify/go-lua"
	"github.com/louisbranch/roll/internal/core/dice"
	"github.com/louisbranch/roll/internal/core/random"
)

const libraryName = "dice"

// maxExactSeed is the largest seed a Lua number holds exactly. Larger seeds
// must be passed as strings.
const maxExactSeed = 1 << 53

// Engine runs scripts against one dice roller.
type Engine struct {
	out    io.Writer
	roller *dice.Roller
	init   func(*uint64)
}

// Option configures an Engine.
type Option func(*Engine)

// WithOutput routes Lua print to w.
func WithOutput(w io.Writer) Option {
	return func(e *Engine) {
		if w != nil {
			e.out = w
		}
	}
}

// WithSeed rolls on a private generator seeded with seed instead of the
// process-wide one.
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		generator := random.NewSeeded(seed)
		e.roller = dice.NewRoller(generator)
		e.init = generator.Init
	}
}

// New returns an engine on the process-wide generator writing to stdout.
func New(opts ...Option) *Engine {
	e := &Engine{
		out:    os.Stdout,
		roller: dice.Default(),
		init:   dice.Init,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunFile executes the Lua file at path.
func (e *Engine) RunFile(path string) error {
	state := e.newState()
	if err := lua.LoadFile(state, path, ""); err != nil {
		return fmt.Errorf("load lua: %w", err)
	}
	if err := state.ProtectedCall(0, 0, 0); err != nil {
		return fmt.Errorf("run lua: %w", err)
	}
	return nil
}

// RunString executes source as a chunk called name.
func (e *Engine) RunString(name, source string) error {
	state := e.newState()
	if err := lua.LoadBuffer(state, source, name, ""); err != nil {
		return fmt.Errorf("load lua: %w", err)
	}
	if err := state.ProtectedCall(0, 0, 0); err != nil {
		return fmt.Errorf("run lua: %w", err)
	}
	return nil
}

func (e *Engine) newState() *lua.State {
	state := lua.NewState()
	lua.OpenLibraries(state)
	state.Register("print", e.print)
	lua.NewLibrary(state, e.library())
	state.SetGlobal(libraryName)
	return state
}

func (e *Engine) library() []lua.RegistryFunction {
	return []lua.RegistryFunction{
		{Name: "init", Function: e.luaInit},
		{Name: "version", Function: luaVersion},
		{Name: "roll", Function: e.luaRoll},
		{Name: "roll_multiple", Function: e.luaRollMultiple},
		{Name: "roll_individual", Function: e.luaRollIndividual},
		{Name: "roll_notation", Function: e.luaRollNotation},
	}
}

func (e *Engine) print(state *lua.State) int {
	parts := make([]string, 0, state.Top())
	for i := 1; i <= state.Top(); i++ {
		text, _ := lua.ToStringMeta(state, i)
		state.Pop(1)
		parts = append(parts, text)
	}
	fmt.Fprintln(e.out, strings.Join(parts, "\t"))
	return 0
}

func (e *Engine) luaInit(state *lua.State) int {
	if state.IsNoneOrNil(1) {
		e.init(nil)
		return 0
	}
	seed, err := seedArgument(state, 1)
	if err != nil {
		lua.ArgumentError(state, 1, err.Error())
		return 0
	}
	e.init(&seed)
	return 0
}

func luaVersion(state *lua.State) int {
	state.PushString(dice.Version())
	return 1
}

func (e *Engine) luaRoll(state *lua.State) int {
	sides := lua.CheckInteger(state, 1)
	value, err := e.roller.Roll(sides)
	if err != nil {
		raise(state, err)
		return 0
	}
	state.PushInteger(value)
	return 1
}

func (e *Engine) luaRollMultiple(state *lua.State) int {
	count := lua.CheckInteger(state, 1)
	sides := lua.CheckInteger(state, 2)
	sum, err := e.roller.RollMultiple(count, sides)
	if err != nil {
		raise(state, err)
		return 0
	}
	state.PushInteger(sum)
	return 1
}

func (e *Engine) luaRollIndividual(state *lua.State) int {
	count := lua.CheckInteger(state, 1)
	sides := lua.CheckInteger(state, 2)
	outcome, err := e.roller.RollIndividual(count, sides)
	if err != nil {
		raise(state, err)
		return 0
	}
	state.PushInteger(outcome.Sum)
	state.CreateTable(len(outcome.Individual), 0)
	for i, value := range outcome.Individual {
		state.PushInteger(value)
		state.RawSetInt(-2, i+1)
	}
	return 2
}

func (e *Engine) luaRollNotation(state *lua.State) int {
	if state.IsNoneOrNil(1) {
		raise(state, dice.NullPointer())
		return 0
	}
	text := lua.CheckString(state, 1)
	total, err := e.roller.RollNotation(text)
	if err != nil {
		raise(state, err)
		return 0
	}
	state.PushInteger(total)
	return 1
}

// raise throws err as a Lua error string without position information.
func raise(state *lua.State, err error) {
	message := err.Error()
	var diceErr *dice.Error
	if errors.As(err, &diceErr) {
		message = diceErr.Kind.String() + ": " + message
	}
	state.PushString(message)
	state.Error()
}

func seedArgument(state *lua.State, index int) (uint64, error) {
	switch state.TypeOf(index) {
	case lua.TypeString:
		text, _ := state.ToString(index)
		seed, err := strconv.ParseUint(strings.TrimSpace(text), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("seed must be an unsigned 64-bit integer")
		}
		return seed, nil
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)
		if value < 0 || value != math.Trunc(value) || value > maxExactSeed {
			return 0, fmt.Errorf("seed must be a non-negative integer up to 2^53 (pass larger seeds as strings)")
		}
		return uint64(value), nil
	default:
		return 0, fmt.Errorf("seed must be a number or a string")
	}
}
