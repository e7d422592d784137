package main

import (
	"fmt"
	goruntime "runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/jscore/testrunner"
)

func newTest262Cmd(a *app) *cobra.Command {
	var (
		opts    testrunner.Config
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "test262 <dir>",
		Short: "Run a test262 checkout against the engine",
		Long: `Run the conformance files under <dir>/test with the harness from
<dir>/harness. Each file runs in a fresh realm. Failures and errors are
listed as they complete; -v lists every result.`,
		Example: `  jscore test262 ./test262 --filter built-ins/String --jobs 8`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Dir = args[0]
			opts.Engine = a.cfg
			opts.Logger = a.log
			opts.OnResult = func(tr testrunner.TestResult) {
				if verbose || tr.Result == testrunner.Fail || tr.Result == testrunner.Error {
					a.printResult(tr)
				}
			}
			_, sum, err := testrunner.New(opts).Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "\nTotal: %d  Passed: %d  Failed: %d  Errors: %d  Skipped: %d\n",
				sum.Total, sum.Passed, sum.Failed, sum.Errors, sum.Skipped)
			fmt.Fprintf(a.stdout, "Pass rate: %.2f%% in %s\n", sum.PassRate(), sum.Elapsed.Round(time.Millisecond))
			if bad := sum.Failed + sum.Errors; bad > 0 {
				return &exitError{code: exitUncaught, err: fmt.Errorf("%d tests did not pass", bad)}
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.Filter, "filter", "", "only run files whose path contains this string")
	f.IntVar(&opts.Limit, "limit", 0, "stop after this many files (0 runs all)")
	f.IntVarP(&opts.Jobs, "jobs", "j", goruntime.NumCPU(), "files evaluated concurrently")
	f.DurationVar(&opts.Timeout, "timeout", 5*time.Second, "per-file time limit")
	f.BoolVarP(&verbose, "verbose", "v", false, "list every result")
	return cmd
}

func (a *app) printResult(tr testrunner.TestResult) {
	status := tr.Result.String()
	switch tr.Result {
	case testrunner.Pass:
		status = a.styles.success.Render(status)
	case testrunner.Skip:
		status = a.styles.muted.Render(status)
	default:
		status = a.styles.label.Render(status)
	}
	line := status + " " + tr.Path
	if tr.Message != "" {
		line += " " + a.styles.muted.Render(tr.Message)
	}
	fmt.Fprintln(a.stdout, line)
}
