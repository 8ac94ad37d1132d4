package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/l3aro/go-path-explain/pkg/ast"
	"github.com/l3aro/go-path-explain/pkg/cparse"
)

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse <statement>...",
	Short: "Dump the syntax shape of a C snippet",
	Long: `Parses each statement the way trace fixtures are parsed and prints the
resulting syntax tree with types and source ranges. Names must be declared
first, either with --declare or by an earlier declaration statement.

Example:
  gpx parse -d "int *foo(void)" "int *p = foo();" "if (p == 0)"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		decls, _ := cmd.Flags().GetStringArray("declare")
		objectTypes, _ := cmd.Flags().GetStringSlice("object-type")
		exprMode, _ := cmd.Flags().GetBool("expr")

		p := cparse.New(cparse.NewScope(nil), cparse.Options{ObjectTypes: objectTypes})
		for _, d := range decls {
			if _, err := p.ParseDecl(d, ast.DeclVar); err != nil {
				return fmt.Errorf("declaring %q: %w", d, err)
			}
		}

		out := cmd.OutOrStdout()
		for _, src := range args {
			var (
				node ast.Node
				err  error
			)
			if exprMode {
				node, err = p.ParseExpr(src)
			} else {
				node, err = p.ParseStmt(src)
			}
			if err != nil {
				return fmt.Errorf("parsing %q: %w", src, err)
			}
			if err := ast.Fprint(out, node); err != nil {
				return err
			}
			p.Line++
		}
		return nil
	},
}

func init() {
	parseCmd.Flags().StringArrayP("declare", "d", nil, "Declare a name before parsing, e.g. \"int *p\" (repeatable)")
	parseCmd.Flags().StringSlice("object-type", nil, "Class names whose pointers are object pointers")
	parseCmd.Flags().Bool("expr", false, "Parse arguments as expressions")
	RootCmd.AddCommand(parseCmd)
}
