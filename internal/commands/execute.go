package commands

import "fmt"

// Result describes what a handler did. Noop is set when the command was
// accepted but changed nothing, such as a reference to a missing task.
type Result struct {
	Message string
	Noop    bool
}

type Handlers struct {
	Add          func(AddArgs) (Result, error)
	Toggle       func(RefArgs) (Result, error)
	Edit         func(EditArgs) (Result, error)
	Delete       func(RefArgs) (Result, error)
	UserAdd      func(UserAddArgs) (Result, error)
	UserDelete   func(RefArgs) (Result, error)
	UserSwitch   func(RefArgs) (Result, error)
	Tab          func(TabArgs) (Result, error)
	Filter       func(FilterArgs) (Result, error)
	Search       func(SearchArgs) (Result, error)
	Sort         func(SortArgs) (Result, error)
	Period       func(PeriodArgs) (Result, error)
	GoalAdd      func(GoalAddArgs) (Result, error)
	GoalProgress func(GoalProgressArgs) (Result, error)
	GoalDelete   func(RefArgs) (Result, error)
	Save         func() (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		return call(cmd.Type, handlers.Add, cmd.Add)
	case TypeToggle:
		return call(cmd.Type, handlers.Toggle, cmd.Ref)
	case TypeEdit:
		return call(cmd.Type, handlers.Edit, cmd.Edit)
	case TypeDelete:
		return call(cmd.Type, handlers.Delete, cmd.Ref)
	case TypeUserAdd:
		return call(cmd.Type, handlers.UserAdd, cmd.UserAdd)
	case TypeUserDelete:
		return call(cmd.Type, handlers.UserDelete, cmd.Ref)
	case TypeUserSwitch:
		return call(cmd.Type, handlers.UserSwitch, cmd.Ref)
	case TypeTab:
		return call(cmd.Type, handlers.Tab, cmd.Tab)
	case TypeFilter:
		return call(cmd.Type, handlers.Filter, cmd.Filter)
	case TypeSearch:
		return call(cmd.Type, handlers.Search, cmd.Search)
	case TypeSort:
		return call(cmd.Type, handlers.Sort, cmd.Sort)
	case TypePeriod:
		return call(cmd.Type, handlers.Period, cmd.Period)
	case TypeGoalAdd:
		return call(cmd.Type, handlers.GoalAdd, cmd.GoalAdd)
	case TypeGoalProgress:
		return call(cmd.Type, handlers.GoalProgress, cmd.GoalProgress)
	case TypeGoalDelete:
		return call(cmd.Type, handlers.GoalDelete, cmd.Ref)
	case TypeSave:
		if handlers.Save == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Save()
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

func call[A any](typ Type, fn func(A) (Result, error), args *A) (Result, error) {
	if fn == nil {
		return Result{}, missing(typ)
	}
	if args == nil {
		return Result{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s arguments missing", typ)}
	}
	return fn(*args)
}

func missing(typ Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", typ)}
}
