package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/reusee/dscope"
	"github.com/reusee/vague/identities"
	"github.com/reusee/vague/modes"
	"github.com/reusee/vague/oracles"
	"github.com/reusee/vague/storages"
)

func execute(t *testing.T, oracle oracles.Oracle, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	return executeIn(t, dir, oracle, args...)
}

func executeIn(t *testing.T, dir string, oracle oracles.Oracle, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	cmd := newRootCommand(func() dscope.Scope {
		return dscope.New(
			new(Module),
			modes.ForTest(t),
		).Fork(
			func() modes.WorkDir {
				return modes.WorkDir(dir)
			},
			func() oracles.GetDefaultOracle {
				return func() (oracles.Oracle, error) {
					return oracle, nil
				}
			},
		)
	}, buf)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestHashCommand(t *testing.T) {
	out, err := execute(t, nil, "hash", "return 41 plus one")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "413f074ec7912a92d08bad87b683207114d6dad9" {
		t.Fatalf("got %q", out)
	}

	out, err = execute(t, nil, "hash", "add a and b", "--param", "a=1", "--param", `b="x"`)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "0eab897eaca2fd0d36fbfea81212dc5a9178539f" {
		t.Fatalf("got %q", out)
	}
}

func TestParseAssignments(t *testing.T) {
	params, err := parseAssignments([]string{
		"a=1",
		"b=x",
		`c="quoted"`,
		"d=[1,2]",
		"e=1.5",
		"f=a=b",
	})
	if err != nil {
		t.Fatal(err)
	}
	if params[0].Value != 1 {
		t.Fatalf("got %#v", params[0].Value)
	}
	if params[1].Value != "x" {
		t.Fatalf("got %#v", params[1].Value)
	}
	if params[2].Value != "quoted" {
		t.Fatalf("got %#v", params[2].Value)
	}
	if list, ok := params[3].Value.([]any); !ok || len(list) != 2 {
		t.Fatalf("got %#v", params[3].Value)
	}
	if params[4].Value != 1.5 {
		t.Fatalf("got %#v", params[4].Value)
	}
	if params[5].Name != "f" || params[5].Value != "a=b" {
		t.Fatalf("got %#v", params[5])
	}

	if _, err := parseAssignments([]string{"novalue"}); err == nil {
		t.Fatal("should fail")
	}
	if _, err := parseAssignments([]string{"=1"}); err == nil {
		t.Fatal("should fail")
	}
}

func TestRunCommand(t *testing.T) {
	var calls atomic.Int64
	oracle := oracles.OracleFunc(func(ctx context.Context, req oracles.Request) (*oracles.Candidate, error) {
		calls.Add(1)
		return &oracles.Candidate{
			FunctionCode: "def add(context):\n    return context['a'] + context['b']\n",
			FunctionName: "add",
		}, nil
	})
	dir := t.TempDir()

	out, err := executeIn(t, dir, oracle, "run", "add a and b", "--var", "a=1", "--var", "b=2")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "3" {
		t.Fatalf("got %q", out)
	}

	// second run is served from the store
	out, err = executeIn(t, dir, oracle, "run", "add a and b", "--var", "a=40", "--var", "b=2")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "42" {
		t.Fatalf("got %q", out)
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("got %d calls", n)
	}

	content, err := os.ReadFile(filepath.Join(dir, storages.DefaultFileName))
	if err != nil {
		t.Fatal(err)
	}
	var records storages.Records
	if err := json.Unmarshal(content, &records); err != nil {
		t.Fatal(err)
	}
	key := string(identities.Identity("add a and b", nil))
	if records[key].FunctionName != "add" {
		t.Fatalf("got %v", records)
	}

	out, err = executeIn(t, dir, oracle, "store", "list")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != key+"\tadd" {
		t.Fatalf("got %q", out)
	}

	out, err = executeIn(t, dir, oracle, "store", "show", key)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "def add(context):") {
		t.Fatalf("got %q", out)
	}

	if _, err := executeIn(t, dir, oracle, "store", "show", "nope"); err == nil {
		t.Fatal("should fail")
	}
}

func TestRunCommandJSONResult(t *testing.T) {
	oracle := oracles.OracleFunc(func(ctx context.Context, req oracles.Request) (*oracles.Candidate, error) {
		return &oracles.Candidate{
			FunctionCode: "def wrap(context):\n    return {'name': context['name'], 'n': len(context['name'])}\n",
			FunctionName: "wrap",
		}, nil
	})
	out, err := execute(t, oracle, "run", "wrap name", "--var", "name=vague")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != `{"n":5,"name":"vague"}` {
		t.Fatalf("got %q", out)
	}
}

func TestInvalidDialect(t *testing.T) {
	_, err := execute(t, nil, "run", "anything", "--dialect", "cobol")
	if err == nil || !strings.Contains(err.Error(), "invalid dialect") {
		t.Fatalf("got %v", err)
	}
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := execute(t, nil, "store", "list", "--log-level", "loud")
	if err == nil {
		t.Fatal("should fail")
	}
}
