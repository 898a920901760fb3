package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli"

	"github.com/dmitrymomot/minis3"
	"github.com/dmitrymomot/minis3/pkg/health"
)

var timeoutFlag = cli.DurationFlag{Name: "timeout", Usage: "time allowed for all checks", Value: minis3.DefaultTimeout}

func healthCmds(st *state) []cli.Command {
	return []cli.Command{
		{
			Name:      "health",
			Usage:     "check that buckets are reachable with the configured credentials",
			ArgsUsage: "[BUCKET...]",
			Flags:     []cli.Flag{timeoutFlag},
			Action:    st.checkHealth,
		},
	}
}

// checkHealth heads the given buckets, or the configured one, and fails
// when any of them is unreachable.
func (st *state) checkHealth(c *cli.Context) error {
	client, err := st.connect()
	if err != nil {
		return err
	}

	checks := health.Checks{}
	for _, name := range c.Args() {
		checks[name] = client.Healthcheck(minis3.InBucket(name))
	}
	if len(checks) == 0 {
		name := client.Config().Bucket
		if name == "" {
			return missingArguments(c, "BUCKET")
		}
		checks[name] = client.Healthcheck()
	}

	report := health.Run(st.ctx, checks,
		health.WithTimeout(c.Duration("timeout")),
		health.WithLogger(st.log),
	)
	for _, name := range report.Names() {
		check := report.Checks[name]
		line := fmt.Sprintf("%-9s %-24s %s", check.Status, name, check.Elapsed.Round(time.Millisecond))
		if check.Error != "" {
			line += "  " + check.Error
		}
		fmt.Fprintln(st.out, strings.TrimRight(line, " "))
	}
	return report.Err()
}
