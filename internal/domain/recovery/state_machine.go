// Пакет recovery — конечный автомат процесса восстановления секции.
//
// Жизненный цикл одного прохода восстановления:
//
//	checking → trying(0) → trying(1) → ... → recovered | exhausted
//
// recovered и exhausted — конечные состояния. Переход exhausted
// допустим только после последнего кандидата (или сразу из checking
// при пустом списке кандидатов). Автомат живёт в рамках одного
// вызова восстановления и не рассчитан на одновременный доступ из
// нескольких горутин.
package recovery

import (
	"fmt"
	"time"
)

// Phase — фаза процесса восстановления.
type Phase string

const (
	// PhaseChecking — начальная фаза, кандидаты ещё не опрашивались
	PhaseChecking Phase = "checking"
	// PhaseTrying — опрашивается кандидат с индексом State.Candidate
	PhaseTrying Phase = "trying"
	// PhaseRecovered — кандидат дал валидные данные (конечная)
	PhaseRecovered Phase = "recovered"
	// PhaseExhausted — все кандидаты исчерпаны (конечная)
	PhaseExhausted Phase = "exhausted"
)

// State — состояние автомата: фаза и индекс кандидата для trying.
type State struct {
	Phase     Phase `json:"phase"`
	Candidate int   `json:"candidate,omitempty"`
}

func (s State) String() string {
	if s.Phase == PhaseTrying {
		return fmt.Sprintf("trying(%d)", s.Candidate)
	}
	return string(s.Phase)
}

// TransitionRecord — запись о переходе между состояниями.
type TransitionRecord struct {
	From      State     `json:"from"`
	To        State     `json:"to"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

// TransitionError — ошибка недопустимого перехода.
type TransitionError struct {
	Code    string // Машиночитаемый код (INVALID_TRANSITION)
	Message string // Человекочитаемое описание
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Machine — конечный автомат одного прохода восстановления.
type Machine struct {
	state      State
	candidates int
	history    []TransitionRecord
}

// NewMachine создаёт автомат в фазе checking для заданного числа
// кандидатов.
func NewMachine(candidates int) *Machine {
	return &Machine{
		state:      State{Phase: PhaseChecking},
		candidates: candidates,
		history:    make([]TransitionRecord, 0, candidates+1),
	}
}

// State возвращает текущее состояние.
func (m *Machine) State() State {
	return m.state
}

// Terminal сообщает, достиг ли автомат конечного состояния.
func (m *Machine) Terminal() bool {
	return m.state.Phase == PhaseRecovered || m.state.Phase == PhaseExhausted
}

// Begin переходит к первому кандидату: checking → trying(0).
func (m *Machine) Begin(source string) error {
	if m.state.Phase != PhaseChecking {
		return m.invalid(State{Phase: PhaseTrying})
	}
	if m.candidates == 0 {
		return m.invalid(State{Phase: PhaseTrying})
	}
	m.transition(State{Phase: PhaseTrying}, source)
	return nil
}

// Next переходит к следующему кандидату: trying(i) → trying(i+1).
func (m *Machine) Next(source string) error {
	next := State{Phase: PhaseTrying, Candidate: m.state.Candidate + 1}
	if m.state.Phase != PhaseTrying || next.Candidate >= m.candidates {
		return m.invalid(next)
	}
	m.transition(next, source)
	return nil
}

// Recover фиксирует успех текущего кандидата: trying(i) → recovered.
func (m *Machine) Recover(source string) error {
	if m.state.Phase != PhaseTrying {
		return m.invalid(State{Phase: PhaseRecovered})
	}
	m.transition(State{Phase: PhaseRecovered}, source)
	return nil
}

// Exhaust фиксирует исчерпание кандидатов. Допустим после последнего
// кандидата и из checking при пустом списке.
func (m *Machine) Exhaust() error {
	switch {
	case m.state.Phase == PhaseTrying && m.state.Candidate == m.candidates-1:
	case m.state.Phase == PhaseChecking && m.candidates == 0:
	default:
		return m.invalid(State{Phase: PhaseExhausted})
	}
	m.transition(State{Phase: PhaseExhausted}, "none")
	return nil
}

// History возвращает историю переходов (копия).
func (m *Machine) History() []TransitionRecord {
	result := make([]TransitionRecord, len(m.history))
	copy(result, m.history)
	return result
}

// transition выполняет переход и дописывает историю.
func (m *Machine) transition(to State, source string) {
	m.history = append(m.history, TransitionRecord{
		From:      m.state,
		To:        to,
		Source:    source,
		Timestamp: time.Now().UTC(),
	})
	m.state = to
}

// invalid формирует ошибку недопустимого перехода.
func (m *Machine) invalid(to State) error {
	return &TransitionError{
		Code:    "INVALID_TRANSITION",
		Message: fmt.Sprintf("переход %s → %s недопустим", m.state, to),
	}
}
