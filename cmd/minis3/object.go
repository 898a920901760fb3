package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/urfave/cli"

	"github.com/dmitrymomot/minis3"
	"github.com/dmitrymomot/minis3/pkg/listing"
)

var (
	delimiterFlag   = cli.StringFlag{Name: "delimiter, d", Usage: "group keys sharing a prefix up to this string"}
	contentTypeFlag = cli.StringFlag{Name: "content-type", Usage: "content type to store instead of the guessed one"}
	fromBucketFlag  = cli.StringFlag{Name: "from-bucket", Usage: "bucket of the copy source"}
	replaceFlag     = cli.BoolFlag{Name: "replace", Usage: "replace metadata instead of copying it from the source"}
)

func objectCmds(st *state) []cli.Command {
	return []cli.Command{
		{
			Name:      "ls",
			Usage:     "list objects",
			ArgsUsage: "[PREFIX]",
			Flags:     []cli.Flag{bucketFlag, delimiterFlag},
			Action:    st.listObjects,
		},
		{
			Name:      "get",
			Usage:     "download an object to a file or stdout",
			ArgsUsage: "KEY [FILE]",
			Flags:     []cli.Flag{bucketFlag},
			Action:    st.getObject,
		},
		{
			Name:      "put",
			Usage:     "upload a file in a single request",
			ArgsUsage: "FILE [KEY]",
			Flags:     []cli.Flag{bucketFlag, publicFlag, contentTypeFlag},
			Action:    st.putObject,
		},
		{
			Name:      "rm",
			Usage:     "delete an object",
			ArgsUsage: "KEY",
			Flags:     []cli.Flag{bucketFlag},
			Action:    st.removeObject,
		},
		{
			Name:      "cp",
			Usage:     "copy an object server-side",
			ArgsUsage: "SRC DST",
			Flags:     []cli.Flag{bucketFlag, fromBucketFlag, replaceFlag, publicFlag, contentTypeFlag},
			Action:    st.copyObject,
		},
	}
}

func (st *state) listObjects(c *cli.Context) error {
	client, err := st.connect()
	if err != nil {
		return err
	}
	opts := callOptions(c)
	if d := c.String("delimiter"); d != "" {
		opts = append(opts, minis3.WithListOptions(listing.WithDelimiter(d)))
	}

	for obj, err := range client.List(c.Args().First(), opts...).All(st.ctx) {
		if err != nil {
			return err
		}
		if obj.IsPrefix {
			fmt.Fprintf(st.out, "%20s %12s  %s\n", "", "PRE", obj.Key)
			continue
		}
		fmt.Fprintf(st.out, "%20s %12d  %s\n", obj.LastModified.Format(time.RFC3339), obj.Size, obj.Key)
	}
	return nil
}

func (st *state) getObject(c *cli.Context) error {
	if err := requireArgs(c, "KEY"); err != nil {
		return err
	}
	client, err := st.connect()
	if err != nil {
		return err
	}

	obj, err := client.Get(st.ctx, c.Args().First(), callOptions(c)...)
	if err != nil {
		return err
	}
	if path := c.Args().Get(1); path != "" && path != "-" {
		return os.WriteFile(path, obj.Body, 0o644)
	}
	_, err = st.out.Write(obj.Body)
	return err
}

func (st *state) putObject(c *cli.Context) error {
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
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	opts := callOptions(c)
	if ct := c.String("content-type"); ct != "" {
		opts = append(opts, minis3.WithContentType(ct))
	}
	info, err := client.Put(st.ctx, key, f, opts...)
	if err != nil {
		return err
	}
	fmt.Fprintf(st.out, "%s\t%d\t%s\t%s\n", info.Key, info.Size, info.ContentType, info.ETag)
	return nil
}

func (st *state) removeObject(c *cli.Context) error {
	if err := requireArgs(c, "KEY"); err != nil {
		return err
	}
	client, err := st.connect()
	if err != nil {
		return err
	}
	return client.Delete(st.ctx, c.Args().First(), callOptions(c)...)
}

func (st *state) copyObject(c *cli.Context) error {
	if err := requireArgs(c, "SRC", "DST"); err != nil {
		return err
	}
	client, err := st.connect()
	if err != nil {
		return err
	}

	opts := callOptions(c)
	if b := c.String("from-bucket"); b != "" {
		opts = append(opts, minis3.FromBucket(b))
	}
	if c.Bool("replace") {
		opts = append(opts, minis3.WithMetadataDirective(types.MetadataDirectiveReplace))
	}
	if ct := c.String("content-type"); ct != "" {
		opts = append(opts, minis3.WithContentType(ct))
	}
	info, err := client.Copy(st.ctx, c.Args().First(), c.Args().Get(1), opts...)
	if err != nil {
		return err
	}
	fmt.Fprintf(st.out, "%s\t%s\n", info.Key, info.ETag)
	return nil
}
