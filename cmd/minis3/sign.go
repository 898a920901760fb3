package main

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/urfave/cli"

	"github.com/dmitrymomot/minis3/pkg/request"
)

func signCmds(st *state) []cli.Command {
	return []cli.Command{
		{
			Name:      "sign",
			Usage:     "print the signed URL and headers of a request without sending it",
			ArgsUsage: "METHOD KEY",
			Flags:     []cli.Flag{bucketFlag},
			Action:    st.signRequest,
		},
	}
}

func (st *state) signRequest(c *cli.Context) error {
	if err := requireArgs(c, "METHOD", "KEY"); err != nil {
		return err
	}
	client, err := st.connect()
	if err != nil {
		return err
	}
	bucket := c.String("bucket")
	if bucket == "" {
		bucket = client.Config().Bucket
	}

	signed, err := client.Caller().Sign(request.Operation{
		Method: strings.ToUpper(c.Args().First()),
		Bucket: bucket,
		Key:    c.Args().Get(1),
		Header: make(http.Header),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(st.out, "%s %s\n", signed.Method, signed.URL)
	names := make([]string, 0, len(signed.Header))
	for name := range signed.Header {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(st.out, "%s: %s\n", name, strings.Join(signed.Header[name], ", "))
	}
	return nil
}
