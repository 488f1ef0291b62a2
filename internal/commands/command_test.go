package commands

import (
	"errors"
	"testing"
)

func TestParseSupportedCommands(t *testing.T) {
	cases := []struct {
		in       string
		typeWant Type
	}{
		{"/add pay rent", TypeAdd},
		{":toggle 2", TypeToggle},
		{"edit task_01 call the bank", TypeEdit},
		{"delete 3", TypeDelete},
		{"user add Grace Hopper", TypeUserAdd},
		{"user delete 2", TypeUserDelete},
		{"u switch user_ab", TypeUserSwitch},
		{"tab goals", TypeTab},
		{"filter pending user:all", TypeFilter},
		{"search", TypeSearch},
		{"sort priority", TypeSort},
		{"period quarterly", TypePeriod},
		{"goal add 5 Read five books", TypeGoalAdd},
		{"goal progress 1 3", TypeGoalProgress},
		{"goal delete 1", TypeGoalDelete},
		{"save", TypeSave},
	}

	for _, tc := range cases {
		cmd, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		if cmd.Type != tc.typeWant {
			t.Fatalf("parse %q type = %s, want %s", tc.in, cmd.Type, tc.typeWant)
		}
	}
}

func TestParseAddExtractsPriorityAndCategory(t *testing.T) {
	cmd, err := Parse("add Buy milk !high #errands")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	want := AddArgs{Text: "Buy milk", Priority: "high", Category: "errands"}
	if *cmd.Add != want {
		t.Fatalf("add args = %+v, want %+v", *cmd.Add, want)
	}

	cmd, err = Parse("add ! lonely bang")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Add.Text != "! lonely bang" || cmd.Add.Priority != "" {
		t.Fatalf("bare ! must stay in the text, got %+v", *cmd.Add)
	}
}

func TestParseFilterAndGoalArguments(t *testing.T) {
	cmd, err := Parse("filter HIGH user:user_ab")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Filter.Status != "high" || cmd.Filter.User != "user_ab" {
		t.Fatalf("unexpected filter args: %+v", *cmd.Filter)
	}

	cmd, err = Parse("goal add 4 Ship v1")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.GoalAdd.Total != 4 || cmd.GoalAdd.Title != "Ship v1" {
		t.Fatalf("unexpected goal args: %+v", *cmd.GoalAdd)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		in   string
		code ErrorCode
	}{
		{"   ", ErrCodeEmptyInput},
		{"/", ErrCodeEmptyInput},
		{"/unknown do x", ErrCodeUnknownCommand},
		{"user rename 1 bob", ErrCodeUnknownCommand},
		{"add !high #home", ErrCodeInvalidArgument},
		{"toggle", ErrCodeInvalidArgument},
		{"edit 1", ErrCodeInvalidArgument},
		{"filter pending bob", ErrCodeInvalidArgument},
		{"goal add many Read", ErrCodeInvalidArgument},
		{"goal progress 1 half", ErrCodeInvalidArgument},
	}
	for _, tc := range cases {
		_, err := Parse(tc.in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != tc.code {
			t.Fatalf("parse %q: expected %s, got %v", tc.in, tc.code, err)
		}
	}
}

func TestExecuteDispatch(t *testing.T) {
	cmd, err := Parse("/add write docs")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	called := false
	res, err := Execute(cmd, Handlers{
		Add: func(a AddArgs) (Result, error) {
			called = true
			if a.Text != "write docs" {
				t.Fatalf("unexpected text: %q", a.Text)
			}
			return Result{Message: "ok"}, nil
		},
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !called || res.Message != "ok" {
		t.Fatalf("dispatch failed, called=%v res=%+v", called, res)
	}
}

func TestExecuteRoutesSharedRefArgs(t *testing.T) {
	var got []string
	record := func(name string) func(RefArgs) (Result, error) {
		return func(a RefArgs) (Result, error) {
			got = append(got, name+":"+a.Ref)
			return Result{}, nil
		}
	}
	h := Handlers{Toggle: record("toggle"), Delete: record("delete"), UserDelete: record("user"), GoalDelete: record("goal")}
	for _, in := range []string{"toggle 1", "delete 2", "user delete 3", "goal delete 4"} {
		cmd, err := Parse(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if _, err := Execute(cmd, h); err != nil {
			t.Fatalf("execute %q: %v", in, err)
		}
	}
	want := []string{"toggle:1", "delete:2", "user:3", "goal:4"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("dispatch order = %v, want %v", got, want)
		}
	}
}

func TestExecuteMissingHandler(t *testing.T) {
	cmd, err := Parse("save")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	_, err = Execute(cmd, Handlers{})
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeHandlerMissing {
		t.Fatalf("expected missing handler error, got %v", err)
	}
}
