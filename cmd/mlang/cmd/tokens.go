package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	mlparser "github.com/msto63/mlang/foundation/lang/parser"
)

var tokensJSON bool

var tokensCmd = &cobra.Command{
	Use:   "tokens [file|-]",
	Short: "Print the token stream of a program",
	Long: `Tokenizes a program and prints one token per line with its position.
Invalid characters are shown as UNKNOWN tokens; tokenizing never fails.

Examples:
  mlang tokens countdown.ml
  echo "LET x = 1" | mlang tokens
  mlang tokens --json prog.ml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)
	tokensCmd.Flags().BoolVar(&tokensJSON, "json", false, "print tokens as JSON")
}

type tokenJSON struct {
	Kind   string `json:"kind"`
	Text   string `json:"text"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Offset int    `json:"offset"`
}

func runTokens(cmd *cobra.Command, args []string) error {
	_, source, err := readSource(cmd, args)
	if err != nil {
		return err
	}

	tokens, err := current.engine.Tokenize(source)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if tokensJSON {
		list := make([]tokenJSON, len(tokens))
		for i, tok := range tokens {
			list[i] = tokenJSON{tok.Kind.String(), tok.Text, tok.Line, tok.Column, tok.Offset}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}

	fmt.Fprint(out, current.renderer.Tokens(tokens))

	if n := countUnknown(tokens); n > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d invalid character(s)\n", n)
	}
	return nil
}

func countUnknown(tokens []mlparser.Token) int {
	n := 0
	for _, tok := range tokens {
		if tok.Kind == mlparser.Unknown {
			n++
		}
	}
	return n
}
