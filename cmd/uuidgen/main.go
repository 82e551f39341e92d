package main

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pg-sharding/pguuidv7/entropy"
	"github.com/pg-sharding/pguuidv7/logging"
	"github.com/pg-sharding/pguuidv7/uuidv7"
	"github.com/pg-sharding/pguuidv7/uuidv7/google_uuid"
)

// version is stamped by the release build via -ldflags.
var version = "dev"

// envOr reads key from the environment, falling back when unset or empty.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// newSource maps the --entropy flag to a random source.
func newSource(mode string) (entropy.Source, error) {
	switch mode {
	case "crypto":
		return entropy.Crypto(), nil
	case "chacha8":
		return entropy.NewChaCha8()
	default:
		return nil, fmt.Errorf("unknown entropy source %q; use crypto or chacha8", mode)
	}
}

// formatID renders u in the requested output format.
func formatID(u uuidv7.UUID, format string) (string, error) {
	switch format {
	case "canonical":
		return u.String(), nil
	case "hex":
		return hex.EncodeToString(u.Bytes()), nil
	case "ulid":
		return google_uuid.ULID(u).String(), nil
	default:
		return "", fmt.Errorf("unknown format %q; use canonical, hex or ulid", format)
	}
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <uuid>",
		Short: "Decode the fields of a version 7 identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			u, err := uuidv7.Parse(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("canonical: %s\n", u)
			fmt.Printf("time:      %s\n", u.Time().UTC().Format(time.RFC3339Nano))
			fmt.Printf("counter:   %d\n", u.Counter())
			fmt.Printf("version:   %d\n", u.Version())
			fmt.Printf("variant:   0b%02b\n", u.Variant())
			fmt.Printf("ulid:      %s\n", google_uuid.ULID(u))
			return nil
		},
	}
}

func main() {
	logger := logging.NewLogger(
		logging.WithLevel(envOr("UUIDGEN_LOG_LEVEL", "info")),
		logging.WithIsJSON(os.Getenv("UUIDGEN_LOG_JSON") == "true"),
		logging.WithAddSource(false),
	)

	rootCmd := &cobra.Command{
		Use:     "uuidgen",
		Short:   "Time-ordered UUID version 7 generation",
		Long:    "uuidgen emits RFC 9562 UUID version 7 identifiers with an 18-bit monotonic counter,\nmodeled after the pg_uuidv7 Postgres extension.",
		Version: version,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			count, _ := cmd.Flags().GetInt("count")
			format, _ := cmd.Flags().GetString("format")
			entropyMode, _ := cmd.Flags().GetString("entropy")

			if count < 1 {
				return fmt.Errorf("invalid --count %d; need at least 1", count)
			}
			src, err := newSource(entropyMode)
			if err != nil {
				return err
			}

			gen := uuidv7.NewGenerator(uuidv7.WithEntropy(src))
			w := bufio.NewWriter(os.Stdout)
			defer w.Flush()

			for i := 0; i < count; i++ {
				u, err := gen.Next()
				if err != nil {
					return err
				}
				s, err := formatID(u, format)
				if err != nil {
					return err
				}
				fmt.Fprintln(w, s)
			}
			return nil
		},
		SilenceUsage: true,
	}
	rootCmd.Flags().IntP("count", "n", 1, "number of identifiers to emit")
	rootCmd.Flags().StringP("format", "f", "canonical", "output format: canonical, hex or ulid")
	rootCmd.Flags().String("entropy", envOr("UUIDGEN_ENTROPY", "crypto"), "random source: crypto or chacha8")

	rootCmd.AddCommand(newInspectCmd(), newBenchCmd(logger), newServeCmd(logger))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
