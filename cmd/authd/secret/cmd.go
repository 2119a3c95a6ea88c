package secret

import (
	"fmt"

	"github.com/aistudy/authkit/pkg/crypto"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	size := crypto.DefaultSecretBytes
	return &cli.Command{
		Name:  "gen-secret",
		Usage: "Print a random token signing secret",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "bytes",
				Usage:       "Number of random bytes before encoding",
				Value:       size,
				Destination: &size,
			},
			&cli.BoolFlag{
				Name:  "fingerprint",
				Usage: "Also print the fingerprint logged by serve at startup",
			},
		},
		Action: func(ctx *cli.Context) error {
			s, err := crypto.GenerateSecret(size)
			if err != nil {
				return err
			}
			fmt.Fprintln(ctx.App.Writer, s)
			if ctx.Bool("fingerprint") {
				fmt.Fprintln(ctx.App.ErrWriter, "fingerprint:", crypto.Fingerprint(s))
			}
			return nil
		},
	}
}
