package app

import "testing"

func TestRunUnknownCommand(t *testing.T) {
	t.Parallel()

	if code := Run([]string{"frobnicate"}); code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
}

func TestRunNoArgs(t *testing.T) {
	t.Parallel()

	if code := Run(nil); code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
}

func TestRunHelp(t *testing.T) {
	t.Parallel()

	if code := Run([]string{"help"}); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
}

func TestRunLanguages(t *testing.T) {
	t.Parallel()

	if code := Run([]string{"languages"}); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if code := Run([]string{"languages", "extra"}); code != 2 {
		t.Fatalf("expected exit code 2 for positional args, got %d", code)
	}
}
