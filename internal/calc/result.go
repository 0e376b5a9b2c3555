package calc

// State tells apart "nothing entered yet", "rejected" and "computed"
type State int

const (
	StateUnset State = iota
	StateInvalid
	StateComputed
)

func (s State) String() string {
	switch s {
	case StateUnset:
		return "unset"
	case StateInvalid:
		return "invalid"
	case StateComputed:
		return "computed"
	default:
		return "unknown"
	}
}

// Result is the outcome of a what-if calculator for one user input
type Result[T any] struct {
	State State
	Value T
	Err   error
}

func Unset[T any]() Result[T] {
	return Result[T]{State: StateUnset}
}

func Invalid[T any](err error) Result[T] {
	return Result[T]{State: StateInvalid, Err: err}
}

func Computed[T any](value T) Result[T] {
	return Result[T]{State: StateComputed, Value: value}
}

func (r Result[T]) IsUnset() bool    { return r.State == StateUnset }
func (r Result[T]) IsInvalid() bool  { return r.State == StateInvalid }
func (r Result[T]) IsComputed() bool { return r.State == StateComputed }
