package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/urfave/cli"

	"github.com/dmitrymomot/minis3"
	"github.com/dmitrymomot/minis3/pkg/logger"
	"github.com/dmitrymomot/minis3/pkg/request"
)

var (
	configFlag = cli.StringFlag{Name: "config, c", Usage: "path to a YAML config file", EnvVar: "MINIS3_CONFIG"}
	debugFlag  = cli.BoolFlag{Name: "debug", Usage: "log every request"}
	bucketFlag = cli.StringFlag{Name: "bucket, b", Usage: "bucket to use instead of the configured one"}
	publicFlag = cli.BoolFlag{Name: "public", Usage: "make the result publicly readable"}
)

// state is shared by all commands of one run.
type state struct {
	ctx    context.Context
	out    io.Writer
	logOut io.Writer
	log    *slog.Logger
	flush  func()
	client *minis3.Client
	cfg    fileConfig
	// opts are appended to the client options; tests use them to inject
	// an executor.
	opts []minis3.Option
}

func newState(ctx context.Context, out, logOut io.Writer) *state {
	return &state{
		ctx:    ctx,
		out:    out,
		logOut: logOut,
		log:    logger.NewNope(),
		flush:  func() {},
	}
}

func newApp(st *state) *cli.App {
	app := cli.NewApp()
	app.Name = "minis3"
	app.Usage = "command-line client for S3-compatible storage"
	app.Version = version
	app.Writer = st.out
	app.ErrWriter = st.logOut
	app.Flags = []cli.Flag{configFlag, debugFlag}
	app.Before = st.setup
	app.After = func(*cli.Context) error {
		st.flush()
		return nil
	}

	var cmds []cli.Command
	cmds = append(cmds, objectCmds(st)...)
	cmds = append(cmds, bucketCmds(st)...)
	cmds = append(cmds, multipartCmds(st)...)
	cmds = append(cmds, signCmds(st)...)
	cmds = append(cmds, healthCmds(st)...)
	app.Commands = cmds
	return app
}

// setup loads the configuration and the logger. The client itself is
// created on first use so that help works without credentials.
func (st *state) setup(c *cli.Context) error {
	cfg, err := loadConfig(c.GlobalString("config"))
	if err != nil {
		return err
	}
	st.cfg = cfg

	level := slog.LevelWarn
	if c.GlobalBool("debug") {
		level = slog.LevelDebug
	}
	st.log, st.flush = logger.NewWithSentry(st.logOut, level, cfg.Sentry, request.OperationIDExtractor)
	return nil
}

func (st *state) connect() (*minis3.Client, error) {
	if st.client != nil {
		return st.client, nil
	}
	opts := append([]minis3.Option{minis3.WithLogger(st.log)}, st.opts...)
	client, err := minis3.New(st.cfg.S3, opts...)
	if err != nil {
		return nil, err
	}
	st.client = client
	return client, nil
}

// callOptions translates the flags shared by object commands.
func callOptions(c *cli.Context) []minis3.CallOption {
	var opts []minis3.CallOption
	if b := c.String("bucket"); b != "" {
		opts = append(opts, minis3.InBucket(b))
	}
	if c.Bool("public") {
		opts = append(opts, minis3.WithPublic())
	}
	return opts
}

func missingArguments(c *cli.Context, names ...string) error {
	return fmt.Errorf("%s: missing arguments: %s (usage: %s %s)",
		c.Command.Name, strings.Join(names, ", "), c.Command.Name, c.Command.ArgsUsage)
}

// requireArgs checks that at least the named positional arguments are given.
func requireArgs(c *cli.Context, names ...string) error {
	if c.NArg() >= len(names) {
		return nil
	}
	return missingArguments(c, names[c.NArg():]...)
}
