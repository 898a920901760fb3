package main

import (
	"github.com/urfave/cli"
)

func bucketCmds(st *state) []cli.Command {
	return []cli.Command{
		{
			Name:      "mb",
			Usage:     "create a bucket",
			ArgsUsage: "BUCKET",
			Flags:     []cli.Flag{publicFlag},
			Action:    st.makeBucket,
		},
		{
			Name:      "rb",
			Usage:     "remove an empty bucket",
			ArgsUsage: "BUCKET",
			Action:    st.removeBucket,
		},
	}
}

func (st *state) makeBucket(c *cli.Context) error {
	if err := requireArgs(c, "BUCKET"); err != nil {
		return err
	}
	client, err := st.connect()
	if err != nil {
		return err
	}
	return client.CreateBucket(st.ctx, c.Args().First(), callOptions(c)...)
}

func (st *state) removeBucket(c *cli.Context) error {
	if err := requireArgs(c, "BUCKET"); err != nil {
		return err
	}
	client, err := st.connect()
	if err != nil {
		return err
	}
	return client.DeleteBucket(st.ctx, c.Args().First())
}
