package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lumber-lang/lumber/internal/natfn"
	"github.com/lumber-lang/lumber/pkg/lumber"
)

// fact is one ground row of a predicate, keyed by scope and positional
// arity. Terms starting with "$" are variables; terms parsing as
// integers become integer literals; everything else is an atom.
type fact struct {
	Scope string   `json:"scope"`
	Args  []string `json:"args"`
}

type queryJSON struct {
	Scope string   `json:"scope"`
	Args  []string `json:"args"`
}

type program struct {
	Facts []fact    `json:"facts"`
	Query queryJSON `json:"query"`
}

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Load ground facts and a query from a JSON file and print every answer",
	Args:  cobra.ExactArgs(1),
	RunE:  runE,
}

func parseTerm(s string) *lumber.Pattern {
	if strings.HasPrefix(s, "$") {
		name := strings.TrimPrefix(s, "$")
		return lumber.VariablePattern(lumber.NewVariable(lumber.NewIdentifier(name)))
	}
	if n, ok := new(big.Int).SetString(s, 10); ok {
		return lumber.LiteralPattern(lumber.IntLiteral(n))
	}
	return lumber.AtomPattern(lumber.Intern(s))
}

func variableNames(args []string) []string {
	var out []string
	for _, a := range args {
		if strings.HasPrefix(a, "$") {
			out = append(out, strings.TrimPrefix(a, "$"))
		}
	}
	return out
}

func buildDatabase(p program) (*lumber.Database, error) {
	// Handle embeds a slice (Arity) and so cannot be a map key itself;
	// group facts by its canonical String form instead.
	byHandle := make(map[string]*lumber.Definition)
	handleByKey := make(map[string]lumber.Handle)
	var order []string
	for _, f := range p.Facts {
		h := lumber.NewHandle(lumber.Scope(f.Scope), lumber.LenArity(len(f.Args)))
		key := h.String()
		def, ok := byHandle[key]
		if !ok {
			def = &lumber.Definition{}
			byHandle[key] = def
			handleByKey[key] = h
			order = append(order, key)
		}
		params := make([]*lumber.Pattern, len(f.Args))
		for i, a := range f.Args {
			params[i] = parseTerm(a)
		}
		def.Clauses = append(def.Clauses, lumber.Clause{
			Head: lumber.Head{Handle: h, Params: params},
			Kind: lumber.Multi,
		})
	}

	entries := make([]lumber.ModuleEntry, 0, len(order))
	for _, key := range order {
		entries = append(entries, lumber.ModuleEntry{
			Handle: handleByKey[key],
			Entry:  &lumber.DatabaseEntry{Public: true, Kind: lumber.DefStatic, Definition: byHandle[key]},
		})
	}

	modules := []lumber.ModuleEntries{
		{Name: "facts", Entries: entries},
		{Name: "core", Entries: natfn.Entries("core")},
	}
	return lumber.BuildDatabase(modules)
}

func buildQuestion(q queryJSON) *lumber.Question {
	args := make([]*lumber.Expression, len(q.Args))
	for i, a := range q.Args {
		args[i] = lumber.TermExpr(parseTerm(a))
	}
	handle := lumber.NewHandle(lumber.Scope(q.Scope), lumber.LenArity(len(q.Args)))
	body := &lumber.Body{Disjunction: lumber.Disjunction{Cases: []lumber.Case{
		{Head: lumber.Conjunction{Processions: []lumber.Procession{
			{Steps: []lumber.Step{lumber.QueryStep(&lumber.Query{Handle: handle, Args: args})}},
		}}},
	}}}
	return lumber.NewQuestion(body, variableNames(q.Args))
}

func runE(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return lumber.WrapError(lumber.KindIO, err, "reading %s", args[0])
	}
	var p program
	if err := json.Unmarshal(data, &p); err != nil {
		return lumber.WrapError(lumber.KindParse, err, "parsing %s", args[0])
	}

	db, err := buildDatabase(p)
	if err != nil {
		return err
	}
	question := buildQuestion(p.Query)

	ctx := context.Background()
	sols := lumber.Ask(ctx, db, question)
	defer sols.Close()

	count := 0
	for {
		sol, more := sols.Next(ctx)
		if !more {
			break
		}
		if sol.Err != nil {
			return sol.Err
		}
		count++
		fmt.Fprintf(cmd.OutOrStdout(), "answer %d: %s\n", count, formatAnswer(sol.Answer))
	}
	if count == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no")
	}
	return nil
}

func formatAnswer(a lumber.Answer) string {
	if len(a) == 0 {
		return "yes"
	}
	var b strings.Builder
	first := true
	for name, v := range a {
		if !first {
			b.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&b, "%s = %s", name, v)
	}
	return b.String()
}
