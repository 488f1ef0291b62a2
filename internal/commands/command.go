package commands

import (
	"fmt"
	"strconv"
	"strings"
)

type Type string

const (
	TypeAdd          Type = "add"
	TypeToggle       Type = "toggle"
	TypeEdit         Type = "edit"
	TypeDelete       Type = "delete"
	TypeUserAdd      Type = "user add"
	TypeUserDelete   Type = "user delete"
	TypeUserSwitch   Type = "user switch"
	TypeTab          Type = "tab"
	TypeFilter       Type = "filter"
	TypeSearch       Type = "search"
	TypeSort         Type = "sort"
	TypePeriod       Type = "period"
	TypeGoalAdd      Type = "goal add"
	TypeGoalProgress Type = "goal progress"
	TypeGoalDelete   Type = "goal delete"
	TypeSave         Type = "save"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// AddArgs carries the raw priority; an empty Priority means the default.
type AddArgs struct {
	Text     string
	Priority string
	Category string
}

// RefArgs names one user, task or goal by id, id prefix or list position.
type RefArgs struct {
	Ref string
}

type EditArgs struct {
	Ref  string
	Text string
}

type UserAddArgs struct {
	Name string
}

type TabArgs struct {
	Tab string
}

type FilterArgs struct {
	Status string
	User   string
}

type SearchArgs struct {
	Query string
}

type SortArgs struct {
	Order string
}

type PeriodArgs struct {
	Period string
}

type GoalAddArgs struct {
	Title string
	Total int
}

type GoalProgressArgs struct {
	Ref       string
	Completed int
}

type Command struct {
	Type         Type
	Raw          string
	Add          *AddArgs
	Ref          *RefArgs
	Edit         *EditArgs
	UserAdd      *UserAddArgs
	Tab          *TabArgs
	Filter       *FilterArgs
	Search       *SearchArgs
	Sort         *SortArgs
	Period       *PeriodArgs
	GoalAdd      *GoalAddArgs
	GoalProgress *GoalProgressArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, ":") {
		raw = strings.TrimSpace(raw[1:])
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch head {
	case "add", "a":
		return parseAdd(input, args)
	case "toggle", "done", "x":
		return parseRef(input, TypeToggle, args)
	case "edit", "e":
		return parseEdit(input, args)
	case "delete", "del", "rm":
		return parseRef(input, TypeDelete, args)
	case "user", "u":
		return parseUser(input, args)
	case "tab":
		if len(args) != 1 {
			return Command{}, invalid("tab requires one tab name")
		}
		return Command{Type: TypeTab, Raw: input, Tab: &TabArgs{Tab: strings.ToLower(args[0])}}, nil
	case "filter", "f":
		return parseFilter(input, args)
	case "search":
		return Command{Type: TypeSearch, Raw: input, Search: &SearchArgs{Query: strings.Join(args, " ")}}, nil
	case "sort":
		if len(args) != 1 {
			return Command{}, invalid("sort requires newest, oldest or priority")
		}
		return Command{Type: TypeSort, Raw: input, Sort: &SortArgs{Order: strings.ToLower(args[0])}}, nil
	case "period":
		if len(args) != 1 {
			return Command{}, invalid("period requires monthly or quarterly")
		}
		return Command{Type: TypePeriod, Raw: input, Period: &PeriodArgs{Period: strings.ToLower(args[0])}}, nil
	case "goal", "g":
		return parseGoal(input, args)
	case "save", "w":
		return Command{Type: TypeSave, Raw: input}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func invalid(msg string) error {
	return &CommandError{Code: ErrCodeInvalidArgument, Message: msg}
}

// parseAdd pulls !priority and #category tokens out of the text. The last
// occurrence of each wins.
func parseAdd(raw string, args []string) (Command, error) {
	out := AddArgs{}
	words := make([]string, 0, len(args))
	for _, arg := range args {
		switch {
		case len(arg) > 1 && strings.HasPrefix(arg, "!"):
			out.Priority = strings.ToLower(arg[1:])
		case len(arg) > 1 && strings.HasPrefix(arg, "#"):
			out.Category = arg[1:]
		default:
			words = append(words, arg)
		}
	}
	out.Text = strings.TrimSpace(strings.Join(words, " "))
	if out.Text == "" {
		return Command{}, invalid("add requires task text")
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &out}, nil
}

func parseRef(raw string, typ Type, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid(fmt.Sprintf("%s requires exactly one reference", typ))
	}
	return Command{Type: typ, Raw: raw, Ref: &RefArgs{Ref: args[0]}}, nil
}

func parseEdit(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, invalid("edit requires a reference and new text")
	}
	return Command{Type: TypeEdit, Raw: raw, Edit: &EditArgs{Ref: args[0], Text: strings.Join(args[1:], " ")}}, nil
}

func parseUser(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, invalid("user requires add <name>, delete <ref> or switch <ref>")
	}
	switch strings.ToLower(args[0]) {
	case "add":
		return Command{Type: TypeUserAdd, Raw: raw, UserAdd: &UserAddArgs{Name: strings.Join(args[1:], " ")}}, nil
	case "delete", "del", "rm":
		return parseRef(raw, TypeUserDelete, args[1:])
	case "switch", "use":
		return parseRef(raw, TypeUserSwitch, args[1:])
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported user command: %s", args[0])}
	}
}

func parseFilter(raw string, args []string) (Command, error) {
	if len(args) == 0 || len(args) > 2 {
		return Command{}, invalid("filter requires a status and an optional user:<ref>")
	}
	out := FilterArgs{Status: strings.ToLower(args[0])}
	if len(args) == 2 {
		lower := strings.ToLower(args[1])
		if !strings.HasPrefix(lower, "user:") {
			return Command{}, invalid("filter user must be written user:<ref>")
		}
		out.User = strings.TrimSpace(args[1][len("user:"):])
	}
	return Command{Type: TypeFilter, Raw: raw, Filter: &out}, nil
}

func parseGoal(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, invalid("goal requires add, progress or delete")
	}
	switch strings.ToLower(args[0]) {
	case "add":
		if len(args) < 3 {
			return Command{}, invalid("goal add requires a total and a title")
		}
		total, err := strconv.Atoi(args[1])
		if err != nil {
			return Command{}, invalid(fmt.Sprintf("goal total must be a number: %q", args[1]))
		}
		return Command{Type: TypeGoalAdd, Raw: raw, GoalAdd: &GoalAddArgs{Total: total, Title: strings.Join(args[2:], " ")}}, nil
	case "progress":
		if len(args) != 3 {
			return Command{}, invalid("goal progress requires a reference and a count")
		}
		n, err := strconv.Atoi(args[2])
		if err != nil {
			return Command{}, invalid(fmt.Sprintf("goal progress must be a number: %q", args[2]))
		}
		return Command{Type: TypeGoalProgress, Raw: raw, GoalProgress: &GoalProgressArgs{Ref: args[1], Completed: n}}, nil
	case "delete", "del", "rm":
		return parseRef(raw, TypeGoalDelete, args[1:])
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported goal command: %s", args[0])}
	}
}
