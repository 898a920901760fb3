package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/urfave/cli"

	"github.com/dmitrymomot/minis3"
	"github.com/dmitrymomot/minis3/pkg/pool"
)

var (
	partSizeFlag = cli.Int64Flag{Name: "part-size", Usage: "part size in bytes", Value: minis3.DefaultPartSize}
	workersFlag  = cli.IntFlag{Name: "workers, w", Usage: "parts uploaded at once", Value: pool.DefaultWorkers}
)

func multipartCmds(st *state) []cli.Command {
	return []cli.Command{
		{
			Name:      "uploads",
			Usage:     "list unfinished multipart uploads",
			ArgsUsage: "[PREFIX]",
			Flags:     []cli.Flag{bucketFlag},
			Action:    st.listUploads,
		},
		{
			Name:      "upload",
			Usage:     "upload a file in parallel parts",
			ArgsUsage: "FILE [KEY]",
			Flags:     []cli.Flag{bucketFlag, publicFlag, partSizeFlag, workersFlag},
			Action:    st.uploadFile,
		},
		{
			Name:      "abort",
			Usage:     "abort a multipart upload and free its parts",
			ArgsUsage: "KEY UPLOAD_ID",
			Flags:     []cli.Flag{bucketFlag},
			Action:    st.abortUpload,
		},
	}
}

func (st *state) listUploads(c *cli.Context) error {
	client, err := st.connect()
	if err != nil {
		return err
	}
	for up, err := range client.ListMultipartUploads(c.Args().First(), callOptions(c)...).All(st.ctx) {
		if err != nil {
			return err
		}
		initiated := "-"
		if !up.Initiated.IsZero() {
			initiated = up.Initiated.Format(time.RFC3339)
		}
		fmt.Fprintf(st.out, "%20s  %s\t%s\n", initiated, up.Key, up.UploadID)
	}
	return nil
}

func (st *state) uploadFile(c *cli.Context) error {
	if err := requireArgs(c, "FILE"); err != nil {
		return err
	}
	client, err := st.connect()
	if err != nil {
		return err
	}

	path := c.Args().First()
	key := c.Args().Get(1)
	if key == "" {
		key = filepath.Base(path)
	}
	opts := append(callOptions(c),
		minis3.WithPartSize(c.Int64("part-size")),
		minis3.WithWorkers(c.Int("workers")),
	)
	res, err := client.UploadFile(st.ctx, path, key, opts...)
	if err != nil {
		return err
	}
	fmt.Fprintf(st.out, "%s\t%s\n", key, res.ETag)
	return nil
}

func (st *state) abortUpload(c *cli.Context) error {
	if err := requireArgs(c, "KEY", "UPLOAD_ID"); err != nil {
		return err
	}
	client, err := st.connect()
	if err != nil {
		return err
	}
	return client.AbortMultipartUpload(st.ctx, c.Args().First(), c.Args().Get(1), callOptions(c)...)
}
