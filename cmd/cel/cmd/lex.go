package cmd

import (
	"fmt"

	"github.com/cwbudde/go-cel/internal/lexer"
	"github.com/cwbudde/go-cel/internal/token"
	"github.com/spf13/cobra"
)

var showPos bool

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a CEL expression",
	Long: `Tokenize a CEL expression and print the resulting tokens, useful for
debugging the lexer.

Examples:
  cel lex -e "a.b[0] + 1"
  cel lex --show-pos expr.cel`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)
	lexCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "tokenize inline text instead of reading from file")
	lexCmd.Flags().BoolVar(&showPos, "show-pos", false, "show token positions (line:column)")
}

func runLex(_ *cobra.Command, args []string) error {
	source, _, err := readSource(args)
	if err != nil {
		return err
	}
	l := lexer.New(source)
	for {
		tok, err := l.NextToken()
		if err != nil {
			fmt.Printf("ERROR: %v\n", err)
			return fmt.Errorf("lexing failed")
		}
		printToken(tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return nil
}

func printToken(tok token.Token) {
	out := fmt.Sprintf("%-12s %q", tok.Type, tok.Lexeme)
	if showPos {
		out += fmt.Sprintf(" @%d:%d", tok.Pos.Line, tok.Pos.Column)
	}
	fmt.Println(out)
}
