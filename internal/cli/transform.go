package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"cartridge-engine/internal/diagnostic"
	"cartridge-engine/internal/pipeline"
)

type requestFlags struct {
	currency  string
	direction string
}

func (f *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.currency, "currency", "", "currency selecting a currency-specific template")
	cmd.Flags().StringVar(&f.direction, "direction", "outbound", "flow direction: outbound or inbound")
}

func newTransformCommand(opts *rootOptions) *cobra.Command {
	var flags requestFlags

	cmd := &cobra.Command{
		Use:   "transform <cartridgeId> <file.json|->",
		Short: "Transform one JSON document (or a list of documents)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readJSON(cmd.InOrStdin(), args[1])
			if err != nil {
				return err
			}

			rt, err := bootstrap(opts, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			resp, err := rt.svc.Process(cmd.Context(), pipeline.Request{
				CartridgeID: args[0],
				Currency:    flags.currency,
				Direction:   flags.direction,
				Body:        body,
			})
			if err != nil {
				if de, ok := diagnostic.As(err); ok {
					return printJSON(cmd.OutOrStdout(), de.Payload(), err)
				}

				return err
			}

			if text, ok := resp.Body.(string); ok {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
				return err
			}

			return printJSON(cmd.OutOrStdout(), resp.Body, nil)
		},
	}

	flags.register(cmd)

	return cmd
}

func readJSON(stdin io.Reader, name string) (any, error) {
	var (
		data []byte
		err  error
	)

	if name == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(name)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	var body any
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("failed to parse input JSON: %w", err)
	}

	return body, nil
}

// printJSON writes v indented and returns result, so that a failed
// transformation still prints its error payload.
func printJSON(w io.Writer, v any, result error) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}

	_, err = fmt.Fprintln(w, string(data))
	if err != nil {
		return err
	}

	return result
}
