// Package cline runs a command's main function as a subprocess from its own
// tests and checks what it prints.
package cline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"golang.org/x/exp/slices"
)

const runMainEnv = "CLINE_RUN_MAIN"

// Timeout bounds every run.
var Timeout = 5 * time.Second

var exe string

// TestMain runs main instead of the tests when the test binary was started
// by Run. Otherwise it links the test binary to a temporary name and runs
// the tests.
func TestMain(m *testing.M, main func()) {
	if os.Getenv(runMainEnv) != "" {
		main()
		os.Exit(0)
	}
	os.Setenv(runMainEnv, "1")

	var code int
	defer func() { os.Exit(code) }()

	self, err := os.Executable()
	if err != nil {
		log.Fatal(err)
	}
	dir, err := os.MkdirTemp("", "cline")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	exe = filepath.Join(dir, filepath.Base(self))
	if err := os.Symlink(self, exe); err != nil {
		if err := copyFile(exe, self); err != nil {
			log.Fatal(err)
		}
	}
	code = m.Run()
}

func copyFile(dst, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o777)
	if err != nil {
		return err
	}
	_, err = io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return err
}

// Data holds the environment for, and output of, runs of the command.
type Data struct {
	t      *testing.T
	dir    string
	stdin  io.Reader
	stdout bytes.Buffer
	stderr bytes.Buffer
	env    []string
	code   int
	ran    bool
}

// Test returns a Data that runs the command in a fresh temporary directory
// with the test process's environment.
func Test(t *testing.T) *Data {
	return &Data{t: t, dir: t.TempDir(), env: slices.Clone(os.Environ())}
}

// Dir reports the directory the command runs in.
func (d *Data) Dir() string { return d.dir }

func (d *Data) Setenv(name, value string) {
	d.t.Helper()
	d.Unsetenv(name)
	d.env = append(d.env, name+"="+value)
}

func (d *Data) Unsetenv(name string) {
	d.t.Helper()
	for i := 0; i < len(d.env); {
		if strings.HasPrefix(d.env[i], name+"=") {
			d.env = slices.Delete(d.env, i, i+1)
			continue
		}
		i++
	}
}

func (d *Data) SetStdin(r io.Reader) { d.stdin = r }

// Run runs the command and fails the test if it exits non-zero.
func (d *Data) Run(args ...string) {
	d.t.Helper()
	if err := d.run(args); err != nil {
		d.t.Fatal(err)
	}
}

// RunFail runs the command and fails the test if it exits zero.
func (d *Data) RunFail(args ...string) {
	d.t.Helper()
	if err := d.run(args); err == nil {
		d.t.Fatal("succeeded unexpectedly")
	} else {
		d.t.Log("failed as expected:", err)
	}
}

// ExitCode reports the exit code of the last run.
func (d *Data) ExitCode() int {
	d.t.Helper()
	d.mustHaveRun()
	return d.code
}

func (d *Data) run(args []string) error {
	d.t.Helper()
	d.stdout.Reset()
	d.stderr.Reset()
	ctx, cancel := context.WithTimeout(context.Background(), Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, exe, args...)
	cmd.Dir = d.dir
	cmd.Env = d.env
	cmd.Stdin = d.stdin
	cmd.Stdout = &d.stdout
	cmd.Stderr = &d.stderr
	err := cmd.Run()

	if d.stdout.Len() > 0 {
		d.t.Logf("standard output:\n%s", &d.stdout)
	}
	if d.stderr.Len() > 0 {
		d.t.Logf("standard error:\n%s", &d.stderr)
	}
	d.ran = true
	d.code = 0
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		d.code = ee.ExitCode()
	}
	return err
}

func (d *Data) GrepStdout(pattern, msg string) {
	d.t.Helper()
	d.grep(pattern, &d.stdout, "output", msg, true)
}

func (d *Data) GrepStderr(pattern, msg string) {
	d.t.Helper()
	d.grep(pattern, &d.stderr, "error", msg, true)
}

func (d *Data) GrepStdoutNot(pattern, msg string) {
	d.t.Helper()
	d.grep(pattern, &d.stdout, "output", msg, false)
}

func (d *Data) GrepStderrNot(pattern, msg string) {
	d.t.Helper()
	d.grep(pattern, &d.stderr, "error", msg, false)
}

// GrepBoth fails the test unless pattern matches a line of standard output
// or standard error.
func (d *Data) GrepBoth(pattern, msg string) {
	d.t.Helper()
	if !d.match(pattern, &d.stdout) && !d.match(pattern, &d.stderr) {
		d.t.Log(msg)
		d.t.Fatalf("pattern %q not found in standard output or standard error", pattern)
	}
}

func (d *Data) grep(pattern string, b *bytes.Buffer, name, msg string, want bool) {
	d.t.Helper()
	if d.match(pattern, b) == want {
		return
	}
	d.t.Log(msg)
	if want {
		d.t.Fatalf("pattern %q not found in standard %s", pattern, name)
	}
	d.t.Fatalf("pattern %q found in standard %s", pattern, name)
}

func (d *Data) match(pattern string, b *bytes.Buffer) bool {
	d.t.Helper()
	d.mustHaveRun()
	re := regexp.MustCompile(pattern)
	for _, ln := range bytes.Split(b.Bytes(), []byte{'\n'}) {
		if re.Match(ln) {
			return true
		}
	}
	return false
}

func (d *Data) mustHaveRun() {
	d.t.Helper()
	if !d.ran {
		d.t.Fatal("cline: output checked before the command ran")
	}
}
