package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/chaoscrypt/pkg/errors"
	"github.com/matzehuels/chaoscrypt/pkg/key"
)

// keyCommand creates the key command, which prints the Baker secret key for
// a width.
func (c *CLI) keyCommand() *cobra.Command {
	var (
		noCache bool
		refresh bool
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "key [width]",
		Short: "Print the Baker secret key for an image width",
		Long: `Print the Baker secret key for an image width.

The key partitions the width into divisors of the width. It is generated
deterministically from the width and cached; the same key is used by encrypt
and decrypt unless --key overrides it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			width, err := parseInt("width", args[0])
			if err != nil {
				return err
			}
			if err := errs.ValidateWidth(width); err != nil {
				return err
			}

			runner, err := c.newRunner(cmd.Context(), noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			k, cached, err := runner.SecretKey(cmd.Context(), width, refresh)
			if err != nil {
				return err
			}

			if asJSON {
				data, err := json.Marshal(struct {
					Width  int           `json:"width"`
					Key    key.SecretKey `json:"key"`
					Cached bool          `json:"cached"`
				}{width, k, cached})
				if err != nil {
					return err
				}
				fmt.Fprintln(c.out, string(data))
				return nil
			}

			fmt.Fprintln(c.out, k.String())
			printDetail("%d blocks · %s", k.Len(), cacheStatus(cached))
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the secret key cache")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "regenerate the key even if cached")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the key as JSON")

	return cmd
}

// paramsCommand creates the params command, which prints the six parameters
// derived from a seed.
func (c *CLI) paramsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "params [seed]",
		Short: "Print the pseudorandom parameters derived from a seed",
		Long: `Print six pseudorandom parameters in [0, 200) derived from a seed.

The same seed always yields the same parameters. encrypt --seed-params uses
the first two, seeded with the image width, as Arnold a and b.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := parseInt("seed", args[0])
			if err != nil {
				return err
			}
			params := key.DeriveParameters(seed)
			parts := make([]string, len(params))
			for i, p := range params {
				parts[i] = strconv.Itoa(p)
			}
			fmt.Fprintln(c.out, strings.Join(parts, " "))
			return nil
		},
	}
}

func parseInt(name, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errs.New(errs.ErrCodeInvalidInput, "%s must be an integer, got %q", name, s)
	}
	return n, nil
}
