package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const peopleFixed = `kind: fixed-width
lineSeparator: lf
lines:
  - type: Person
    cells:
      - name: kind
        width: 1
        equals: [P]
      - name: name
        width: 5
      - name: age
        type: integer
        width: 3
        align: right
        padChar: "0"
`

const peopleCSV = `kind: csv
lineSeparator: lf
lines:
  - type: Person
    cells:
      - name: kind
        equals: [P]
      - name: name
      - name: age
        type: integer
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConvertCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.yaml", peopleFixed)
	to := writeFile(t, dir, "out.yaml", peopleCSV)
	data := writeFile(t, dir, "people.txt", "PAnn  030\nPZoë  041\n")

	for _, concurrent := range []bool{false, true} {
		out := filepath.Join(dir, "people.csv")
		args := []string{"convert", "-s", in, "--to", to, data, "-o", out, "--out-encoding", "latin1"}
		if concurrent {
			args = append(args, "--concurrent", "--queue-size", "1")
		}
		if _, err := execute(t, "", args...); err != nil {
			t.Fatalf("convert (concurrent=%v) error = %v", concurrent, err)
		}
		got, err := os.ReadFile(out)
		if err != nil {
			t.Fatal(err)
		}
		if want := "P,Ann,30\nP,Zo\xeb,41\n"; string(got) != want {
			t.Fatalf("convert (concurrent=%v) wrote %q, want %q", concurrent, got, want)
		}
	}
}

func TestConvertFromStdin(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.yaml", peopleFixed)

	got, err := execute(t, "PAnn  000\nPBob  012\n", "convert", "-s", in)
	if err != nil {
		t.Fatalf("convert error = %v", err)
	}
	if got != "PAnn  000\nPBob  012\n" {
		t.Fatalf("convert wrote %q", got)
	}
}

func TestConvertKeepGoing(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.yaml", peopleFixed)
	to := writeFile(t, dir, "out.yaml", peopleCSV)

	input := "PAnn  030\nXjunk\nPBob  041\n"
	if _, err := execute(t, input, "convert", "-s", in, "--to", to, "--on-undefined", "abort"); err == nil {
		t.Fatalf("convert with abort on undefined lines succeeded")
	}
	got, err := execute(t, input, "convert", "-s", in, "--to", to, "-k")
	if err == nil || !strings.Contains(err.Error(), "1 recoverable errors") {
		t.Fatalf("convert -k error = %v, want one recorded error", err)
	}
	if got != "P,Ann,30\nP,Bob,41\n" {
		t.Fatalf("convert -k wrote %q", got)
	}
}

func TestConvertBadPolicy(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.yaml", peopleFixed)
	_, err := execute(t, "", "convert", "-s", in, "--on-overflow", "sometimes")
	if err == nil || !strings.Contains(err.Error(), "--on-overflow") {
		t.Fatalf("convert error = %v, want policy error", err)
	}
}

func TestDumpCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.yaml", peopleCSV)
	input := "P,Ann,30\nP,Bob,\n"

	got, err := execute(t, input, "dump", "-s", in)
	if err != nil {
		t.Fatalf("dump error = %v", err)
	}
	if want := "1: Person{kind=P, name=Ann, age=30}\n2: Person{kind=P, name=Bob, age=}\n"; got != want {
		t.Fatalf("dump wrote %q, want %q", got, want)
	}

	got, err = execute(t, input, "dump", "-s", in, "-f", "yaml")
	if err != nil {
		t.Fatalf("dump -f yaml error = %v", err)
	}
	for _, want := range []string{"line: 1", "type: Person", "name: Ann", "age: 30", "---"} {
		if !strings.Contains(got, want) {
			t.Fatalf("yaml dump %q lacks %q", got, want)
		}
	}

	if _, err := execute(t, input, "dump", "-s", in, "-f", "xml"); err == nil {
		t.Fatalf("dump -f xml succeeded")
	}
}

func TestInspectCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.yaml", peopleCSV)

	got, err := execute(t, "P,Ann,30\nP,Bob,41\nP,Cid,7\n", "inspect", "-s", in, "--batch-size", "2")
	if err != nil {
		t.Fatalf("inspect error = %v", err)
	}
	for _, want := range []string{"Person: 3 rows in 2 batches", "  kind: utf8", "  age: int64"} {
		if !strings.Contains(got, want) {
			t.Fatalf("inspect output %q lacks %q", got, want)
		}
	}
}

func TestMissingSchemaFlag(t *testing.T) {
	if _, err := execute(t, "", "dump"); err == nil {
		t.Fatalf("dump without --schema succeeded")
	}
}
