package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/pavanmanishd/linalloc/internal/script"
)

var (
	replayStrict bool
)

func init() {
	cmd := newReplayCmd()
	cmd.Flags().BoolVar(&replayStrict, "strict", false, "Fail if any step records an error")
	rootCmd.AddCommand(cmd)
}

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <script.yaml>",
		Short: "Replay an allocation script",
		Long: `The replay command runs every op of a YAML script against a fresh arena
or stack and prints the free offset and previous offset after each op.
Out-of-space, empty-pop and invalid-free results are reported per step.

Example:
  linalloc replay testdata/stack.yaml
  linalloc replay testdata/arena.yaml --json
  linalloc replay testdata/arena.yaml --log-level debug`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(args)
		},
	}
	return cmd
}

func runReplay(args []string) error {
	s, err := script.ParseFile(args[0])
	if err != nil {
		return err
	}

	res, err := script.Run(s, logger)
	if err != nil {
		return err
	}

	if jsonOut {
		if err := printJSON(res); err != nil {
			return err
		}
	} else {
		printReplay(res)
	}

	if replayStrict && res.Failed() > 0 {
		return fmt.Errorf("%d of %d steps failed", res.Failed(), len(res.Steps))
	}
	return nil
}

func printReplay(res *script.Result) {
	p := message.NewPrinter(language.English)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tOP\tNAME\tSIZE\tOFFSET\tPREVIOUS\tERROR")
	for _, st := range res.Steps {
		size := ""
		if st.Size > 0 {
			size = p.Sprintf("%d", st.Size)
		}
		p.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%s\n",
			st.Index, st.Op, st.Name, size, st.Offset, st.PreviousOffset, st.Err)
	}
	w.Flush()

	f := res.Final
	fmt.Println()
	p.Printf("%s: %d of %d bytes in use (%.2f%%), peak %d, %d remaining\n",
		res.Allocator, f.SizeInUse, f.Capacity, f.Utilization*100, f.Peak, f.Remaining)
	if res.Allocator == script.Stack {
		p.Printf("live blocks: %d\n", f.Depth)
	}
}
