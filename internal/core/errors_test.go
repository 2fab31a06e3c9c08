package core

import (
	"errors"
	"testing"
)

func TestExitCode(t *testing.T) {
	if ExitCode(nil) != ExitOK {
		t.Fatalf("nil should be ok")
	}
	if ExitCode(errors.New("boom")) != ExitRuntime {
		t.Fatalf("plain error should be runtime")
	}
	if ExitCode(UsageError("bad args")) != ExitUsage {
		t.Fatalf("usage error code lost")
	}
	if ExitCode(&CLIError{Code: ExitNotFound, Msg: "missing"}) != ExitNotFound {
		t.Fatalf("not-found code lost")
	}
}

func TestCLIErrorMessage(t *testing.T) {
	err := WrapError(ExitRuntime, "publish", errors.New("broker down"))
	if err.Error() != "publish: broker down" {
		t.Fatalf("message = %q", err.Error())
	}
	if UsageError("url required").Error() != "url required" {
		t.Fatalf("bare message mangled")
	}
}
