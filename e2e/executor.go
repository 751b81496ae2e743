//go:build e2e

package e2e

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	. "github.com/onsi/ginkgo/v2"
)

// executor is the interface for executing commands in E2E tests.
// It abstracts the difference between container and native execution modes.
type executor interface {
	// Exec executes a command and returns combined stdout/stderr output.
	Exec(name string, args ...string) (string, error)
	// ExecBash executes a bash script and returns combined stdout/stderr output.
	ExecBash(script string) (string, error)
	// Home returns the HOME directory commands run with.
	Home() string
	// Setup prepares the environment (called in BeforeSuite).
	Setup() error
	// Cleanup cleans up the environment (called in AfterSuite).
	Cleanup() error
}

// containerExecutor executes commands inside a Docker container.
type containerExecutor struct {
	containerName string
	home          string
}

func (e *containerExecutor) Exec(name string, args ...string) (string, error) {
	cmdArgs := append([]string{"exec", "-w", e.home, e.containerName, name}, args...)
	cmd := exec.Command("docker", cmdArgs...)
	output, err := cmd.CombinedOutput()
	// Only output nsid commands to GinkgoWriter
	if name == "nsid" {
		fmt.Fprintf(GinkgoWriter, "$ %s %v\n%s", name, args, output)
		if err != nil {
			fmt.Fprintf(GinkgoWriter, "Error: %v\n", err)
		}
	}
	return string(output), err
}

func (e *containerExecutor) ExecBash(script string) (string, error) {
	return e.Exec("bash", "-c", script)
}

func (e *containerExecutor) Home() string {
	return e.home
}

func (e *containerExecutor) Setup() error {
	// Verify container is running
	cmd := exec.Command("docker", "inspect", "-f", "{{.State.Running}}", e.containerName)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("container %s is not running: %w", e.containerName, err)
	}
	if strings.TrimSpace(string(output)) != "true" {
		return fmt.Errorf("container %s is not running", e.containerName)
	}
	out, err := exec.Command("docker", "exec", e.containerName, "sh", "-c", "echo $HOME").Output()
	if err != nil {
		return fmt.Errorf("failed to read container HOME: %w", err)
	}
	e.home = strings.TrimSpace(string(out))
	return nil
}

func (e *containerExecutor) Cleanup() error {
	// Container cleanup is handled by the caller
	return nil
}

// nativeExecutor executes commands directly on the host machine.
// It uses a temporary HOME directory to isolate test state.
type nativeExecutor struct {
	testHome   string // Temporary HOME directory for test isolation
	nsidBinary string // Path to nsid binary
}

func (e *nativeExecutor) Exec(name string, args ...string) (string, error) {
	var cmd *exec.Cmd
	if name == "nsid" {
		cmd = exec.Command(e.nsidBinary, args...)
	} else {
		cmd = exec.Command(name, args...)
	}
	cmd.Dir = e.testHome
	cmd.Env = e.buildEnv()
	output, err := cmd.CombinedOutput()
	// Only output nsid commands to GinkgoWriter
	if name == "nsid" {
		fmt.Fprintf(GinkgoWriter, "$ %s %v\n%s", name, args, output)
		if err != nil {
			fmt.Fprintf(GinkgoWriter, "Error: %v\n", err)
		}
	}
	return string(output), err
}

func (e *nativeExecutor) ExecBash(script string) (string, error) {
	cmd := exec.Command("bash", "-c", script)
	cmd.Dir = e.testHome
	cmd.Env = e.buildEnv()
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func (e *nativeExecutor) Home() string {
	return e.testHome
}

func (e *nativeExecutor) buildEnv() []string {
	return append(os.Environ(), "HOME="+e.testHome)
}

func (e *nativeExecutor) Setup() error {
	var err error
	e.testHome, err = os.MkdirTemp("", "nsid-e2e-")
	if err != nil {
		return fmt.Errorf("failed to create temp home: %w", err)
	}
	return nil
}

func (e *nativeExecutor) Cleanup() error {
	if e.testHome != "" {
		return os.RemoveAll(e.testHome)
	}
	return nil
}

// newExecutor creates an executor based on environment variables.
//
// Environment variables:
//   - NSID_E2E_CONTAINER: Container name for container mode
//   - NSID_E2E_BINARY: Path to nsid binary (native mode, optional)
func newExecutor() (executor, error) {
	// 1. Container mode (NSID_E2E_CONTAINER is set)
	if container := os.Getenv("NSID_E2E_CONTAINER"); container != "" {
		return &containerExecutor{containerName: container}, nil
	}

	// 2. Native mode
	binary := os.Getenv("NSID_E2E_BINARY")
	if binary == "" {
		// Look for nsid in PATH
		var err error
		binary, err = exec.LookPath("nsid")
		if err != nil {
			return nil, fmt.Errorf("nsid binary not found in PATH, set NSID_E2E_BINARY or NSID_E2E_CONTAINER")
		}
	}
	return &nativeExecutor{nsidBinary: binary}, nil
}

// testExec is the global executor instance used by all tests
var testExec executor
