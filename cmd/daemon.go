package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/theirongolddev/cusage/internal/cli"
	"github.com/theirongolddev/cusage/internal/config"
	"github.com/theirongolddev/cusage/internal/daemon"
	"github.com/theirongolddev/cusage/internal/logutil"
	"github.com/theirongolddev/cusage/internal/pipeline"

	"github.com/spf13/cobra"
)

type daemonRuntimeState struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	StartedAt time.Time `json:"started_at"`
	Paths     []string  `json:"paths"`
}

var (
	flagDaemonAddr         string
	flagDaemonDebounce     time.Duration
	flagDaemonDetach       bool
	flagDaemonPIDFile      string
	flagDaemonLogFile      string
	flagDaemonEventsBuffer int
	flagDaemonChild        bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Serve usage reports over HTTP/SSE and reload when exports change",
	RunE:  runDaemon,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon process and API status",
	RunE:  runDaemonStatus,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	RunE:  runDaemonStop,
}

func init() {
	defaultPID := filepath.Join(pipeline.CacheDir(), "cusaged.pid")
	defaultLog := filepath.Join(pipeline.CacheDir(), "cusaged.log")

	daemonCmd.PersistentFlags().StringVar(&flagDaemonAddr, "addr", "", "HTTP listen address (default from config, 127.0.0.1:8788)")
	daemonCmd.PersistentFlags().DurationVar(&flagDaemonDebounce, "debounce", 300*time.Millisecond, "Quiet period before reloading after a file change")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonPIDFile, "pid-file", defaultPID, "PID file path")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonLogFile, "log-file", defaultLog, "Log file path for detached mode")
	daemonCmd.PersistentFlags().IntVar(&flagDaemonEventsBuffer, "events-buffer", 0, "Max in-memory events retained (default from config, 200)")

	daemonCmd.Flags().BoolVar(&flagDaemonDetach, "detach", false, "Run daemon as a background process")
	daemonCmd.Flags().BoolVar(&flagDaemonChild, "child", false, "Internal: mark detached child process")
	_ = daemonCmd.Flags().MarkHidden("child")

	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	if flagDaemonDetach && flagDaemonChild {
		return errors.New("invalid daemon launch mode")
	}

	if flagDaemonDetach {
		return startDaemonDetached()
	}

	return runDaemonForeground(cmd.Context())
}

func startDaemonDetached() error {
	if err := pidFile(flagDaemonPIDFile).ensureFree(); err != nil {
		return err
	}
	// Fail in the foreground on bad flags or config rather than in the child.
	s, err := loadSettings()
	if err != nil {
		return err
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	args := filterDetachArg(os.Args[1:])
	args = append(args, "--child")

	if err := os.MkdirAll(filepath.Dir(flagDaemonLogFile), 0o750); err != nil {
		return fmt.Errorf("create daemon log directory: %w", err)
	}

	//nolint:gosec // daemon log path is configured by the local user
	logf, err := os.OpenFile(flagDaemonLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open daemon log file: %w", err)
	}
	defer func() { _ = logf.Close() }()

	cmd := exec.Command(exe, args...) //nolint:gosec // exe/args come from current process invocation
	cmd.Stdout = logf
	cmd.Stderr = logf
	cmd.Stdin = nil
	cmd.Env = os.Environ()

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start detached daemon: %w", err)
	}

	fmt.Printf("  Started daemon (pid %d)\n", cmd.Process.Pid)
	fmt.Printf("  PID file: %s\n", flagDaemonPIDFile)
	fmt.Printf("  API: http://%s/v1/status\n", daemonAddr(s.cfg))
	fmt.Printf("  Log: %s\n", flagDaemonLogFile)
	return nil
}

func runDaemonForeground(ctx context.Context) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}
	pf := pidFile(flagDaemonPIDFile)
	if err := pf.ensureFree(); err != nil {
		return err
	}

	addr := daemonAddr(s.cfg)
	if err := pf.claim(daemonRuntimeState{
		PID:       os.Getpid(),
		Addr:      addr,
		StartedAt: time.Now(),
		Paths:     s.paths,
	}); err != nil {
		return err
	}
	defer pf.release()

	eventsBuffer := flagDaemonEventsBuffer
	if eventsBuffer <= 0 {
		eventsBuffer = s.cfg.Daemon.EventsBuffer
	}

	opts := s.reportOptions()
	svc := daemon.New(daemon.Config{
		Paths:        s.paths,
		Plan:         opts.Plan,
		Plans:        opts.Plans,
		Pricing:      opts.Pricing,
		UseCache:     !flagNoCache,
		Addr:         addr,
		EventsBuffer: eventsBuffer,
		Debounce:     flagDaemonDebounce,
		Logger:       logutil.New("cusaged"),
	})

	fmt.Printf("  cusage daemon listening on http://%s\n", addr)
	fmt.Printf("  Watching %s\n", strings.Join(s.paths, ", "))
	fmt.Printf("  Stop with: cusage daemon stop --pid-file %s\n", flagDaemonPIDFile)

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// daemonAddr resolves the listen address: flag, then config.
func daemonAddr(cfg config.Config) string {
	if flagDaemonAddr != "" {
		return flagDaemonAddr
	}
	if cfg.Daemon.Addr != "" {
		return cfg.Daemon.Addr
	}
	return config.DefaultConfig().Daemon.Addr
}

func runDaemonStatus(_ *cobra.Command, _ []string) error {
	pf := pidFile(flagDaemonPIDFile)
	pid, err := pf.pid()
	if err != nil {
		fmt.Printf("  Daemon: not running (pid file not found)\n")
		return nil
	}

	alive := processAlive(pid)
	if !alive {
		fmt.Printf("  Daemon: stale pid file (pid %d not alive)\n", pid)
		return nil
	}

	addr := flagDaemonAddr
	if addr == "" {
		addr = config.DefaultConfig().Daemon.Addr
	}
	if st, err := pf.state(); err == nil && st.Addr != "" {
		addr = st.Addr
	}

	fmt.Printf("  Daemon PID: %d\n", pid)
	fmt.Printf("  Address: http://%s\n", addr)

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + addr + "/v1/status") //nolint:noctx // short status probe
	if err != nil {
		fmt.Printf("  API status: unreachable (%v)\n", err)
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("  API status: HTTP %d\n", resp.StatusCode)
		return nil
	}

	var st daemon.Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		fmt.Printf("  API status: malformed response (%v)\n", err)
		return nil
	}

	if st.LastReloadAt.IsZero() {
		fmt.Printf("  Last reload: pending\n")
	} else {
		fmt.Printf("  Last reload: %s (%s)\n", st.LastReloadAt.Local().Format(time.RFC3339), cli.FormatAgo(st.LastReloadAt))
	}
	fmt.Printf("  Reload count: %d\n", st.ReloadCount)
	fmt.Printf("  Plan: %s\n", st.Plan)
	fmt.Printf("  Records: %d (%d users, %d models)\n", st.Summary.Records, st.Summary.Users, st.Summary.Models)
	fmt.Printf("  Requests: %s (%s exceeding)\n",
		cli.FormatRequests(st.Summary.TotalRequests), cli.FormatPercent(st.Summary.ExceedingPercentage))
	fmt.Printf("  Excess cost: %s\n", cli.FormatCost(st.Summary.ExcessCostUSD))
	fmt.Printf("  Subscribers: %d\n", st.SubscriberCount)
	if st.LastError != "" {
		fmt.Printf("  Last error: %s\n", st.LastError)
	}
	return nil
}

func runDaemonStop(_ *cobra.Command, _ []string) error {
	pf := pidFile(flagDaemonPIDFile)
	pid, err := pf.pid()
	if err != nil {
		return errors.New("daemon is not running")
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find daemon process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal daemon process: %w", err)
	}

	deadline := time.Now().Add(8 * time.Second)
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			pf.release()
			fmt.Printf("  Stopped daemon (pid %d)\n", pid)
			return nil
		}
		time.Sleep(150 * time.Millisecond)
	}

	return fmt.Errorf("daemon (pid %d) did not exit in time", pid)
}

func filterDetachArg(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a == "--detach" || strings.HasPrefix(a, "--detach=") {
			continue
		}
		out = append(out, a)
	}
	return out
}

// pidFile is the daemon's pid file plus the JSON state file written next to it.
type pidFile string

func (p pidFile) statePath() string { return string(p) + ".json" }

// pid returns the recorded process id.
func (p pidFile) pid() (int, error) {
	//nolint:gosec // daemon pid path is configured by the local user
	data, err := os.ReadFile(string(p))
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid in %s", p)
	}
	return pid, nil
}

// claim records the current process and its runtime state.
func (p pidFile) claim(st daemonRuntimeState) error {
	if err := os.MkdirAll(filepath.Dir(string(p)), 0o750); err != nil {
		return fmt.Errorf("create daemon directory: %w", err)
	}
	if err := os.WriteFile(string(p), []byte(strconv.Itoa(st.PID)+"\n"), 0o600); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	// Only `daemon status` reads the state file.
	_ = os.WriteFile(p.statePath(), append(data, '\n'), 0o600)
	return nil
}

func (p pidFile) state() (daemonRuntimeState, error) {
	var st daemonRuntimeState
	//nolint:gosec // daemon state path is configured by the local user
	data, err := os.ReadFile(p.statePath())
	if err != nil {
		return st, err
	}
	err = json.Unmarshal(data, &st)
	return st, err
}

func (p pidFile) release() {
	_ = os.Remove(string(p))
	_ = os.Remove(p.statePath())
}

// ensureFree fails when a live daemon owns the pid file and clears stale ones.
func (p pidFile) ensureFree() error {
	pid, err := p.pid()
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil
	case err != nil:
		return err
	case processAlive(pid):
		return fmt.Errorf("daemon already running (pid %d)", pid)
	}
	p.release()
	return nil
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}
