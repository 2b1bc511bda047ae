package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/shahraaz-cn/drgn/ctype"
	"github.com/shahraaz-cn/drgn/dwarfinder"
	"github.com/shahraaz-cn/drgn/synthetic"
	"github.com/shahraaz-cn/drgn/typeindex"
)

func splitArg(args string) (string, string) {
	parts := strings.SplitN(strings.TrimSpace(args), " ", 2)

	first := parts[0]
	remaining := ""
	if len(parts) > 1 {
		remaining = parts[1]
	}

	return first, remaining
}

type command interface {
	run(string) error
}

type namedCommand struct {
	name        string
	description string
	command
}

type subCommands []namedCommand

func (cmds subCommands) run(args string) error {
	name, remaining := splitArg(args)

	if name == "" || strings.HasPrefix("help", name) {
		cmds.printAvailableCommands()
		return nil
	}

	for _, cmd := range cmds {
		if strings.HasPrefix(cmd.name, name) {
			return cmd.run(remaining)
		}
	}

	fmt.Println("Invalid command:", args)
	return nil
}

func (cmds subCommands) printAvailableCommands() {
	fmt.Println("Available commands:")
	for _, cmd := range cmds {
		fmt.Println("  " + cmd.name + cmd.description)
	}
}

type runCmd func(string) error

func (f runCmd) run(args string) error {
	return f(args)
}

type explorer struct {
	index *typeindex.Index

	// Matches pushes onto the index's finder chain, for pop.
	finderCount int
}

var namedKinds = map[string]ctype.Kind{
	"struct":  ctype.StructKind,
	"union":   ctype.UnionKind,
	"enum":    ctype.EnumKind,
	"typedef": ctype.TypedefKind,
	"int":     ctype.IntKind,
	"bool":    ctype.BoolKind,
	"float":   ctype.FloatKind,
	"func":    ctype.FunctionKind,
}

func (explorer *explorer) find(args string) error {
	kindName, remaining := splitArg(args)
	name, filename := splitArg(remaining)

	kind, ok := namedKinds[kindName]
	if !ok {
		fmt.Println("Unknown type kind:", kindName)
		return nil
	}
	if name == "" {
		fmt.Println("No type name given")
		return nil
	}

	result, err := explorer.index.Find(kind, name, filename)
	if err != nil {
		fmt.Println(err)
		return nil
	}

	return printDescription(describeQualified(result))
}

func (explorer *explorer) member(args string) error {
	// The type expression may span multiple words; the member name is
	// the final one.
	fields := strings.Fields(args)
	if len(fields) < 2 {
		fmt.Println("Usage: member <type expression> <member name>")
		return nil
	}

	memberName := fields[len(fields)-1]
	expression := strings.Join(fields[:len(fields)-1], " ")

	owner, err := synthetic.ResolveExpr(explorer.index, expression)
	if err != nil {
		fmt.Println(err)
		return nil
	}

	value, err := explorer.index.FindMember(owner.Type, memberName)
	if err != nil {
		fmt.Println(err)
		return nil
	}

	return printDescription(describeMember(value))
}

func (explorer *explorer) primitive(args string) error {
	spelling := strings.TrimSpace(args)

	primitive := ctype.PrimitiveBySpelling(spelling)
	if primitive == "" {
		fmt.Println("Unknown primitive spelling:", spelling)
		return nil
	}

	result, err := explorer.index.FindPrimitive(primitive)
	if err != nil {
		fmt.Println(err)
		return nil
	}

	return printDescription(describeType(result))
}

func (explorer *explorer) resolve(args string) error {
	result, err := synthetic.ResolveExpr(explorer.index, args)
	if err != nil {
		fmt.Println(err)
		return nil
	}

	return printDescription(describeQualified(result))
}

func (explorer *explorer) load(args string) error {
	path := strings.TrimSpace(args)

	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Println(err)
		return nil
	}

	finder, err := synthetic.NewFinder(explorer.index, content)
	if err != nil {
		fmt.Println(err)
		return nil
	}

	explorer.index.AddFinder(finder.Find)
	explorer.finderCount++
	fmt.Println("Loaded", path)
	return nil
}

func (explorer *explorer) pop(args string) error {
	if explorer.finderCount == 0 {
		fmt.Println("No finder to remove")
		return nil
	}

	explorer.index.RemoveFinder()
	explorer.finderCount--
	return nil
}

func (explorer *explorer) wordSize(args string) error {
	value := strings.TrimSpace(args)
	if value == "" {
		fmt.Println("word size:", explorer.index.WordSize())
		return nil
	}

	size, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		fmt.Println(err)
		return nil
	}

	err = explorer.index.SetWordSize(size)
	if err != nil {
		fmt.Println(err)
	}
	return nil
}

func initializeCommands(explorer *explorer) subCommands {
	return subCommands{
		{
			name: "find",
			description: " <kind> <name> [filename] " +
				"- resolve a named type (kind: struct/union/enum/typedef/...)",
			command: runCmd(explorer.find),
		},
		{
			name: "member",
			description: " <type> <name>          " +
				"- resolve a (possibly nested) member",
			command: runCmd(explorer.member),
		},
		{
			name: "primitive",
			description: " <spelling>          " +
				"- resolve a C primitive by spelling",
			command: runCmd(explorer.primitive),
		},
		{
			name: "type",
			description: " <expression>             " +
				"- resolve a type expression (e.g. 'struct page **')",
			command: runCmd(explorer.resolve),
		},
		{
			name: "load",
			description: " <yaml file>              " +
				"- push a synthetic definition finder",
			command: runCmd(explorer.load),
		},
		{
			name: "pop",
			description: "                           " +
				"- remove the most recently loaded finder",
			command: runCmd(explorer.pop),
		},
		{
			name: "word-size",
			description: " [4|8]               " +
				"- show or set the target word size",
			command: runCmd(explorer.wordSize),
		},
	}
}

func repl(explorer *explorer) error {
	topCmds := initializeCommands(explorer)

	rl, err := readline.New("typeidx > ")
	if err != nil {
		return err
	}
	defer rl.Close()

	lastLine := ""
	for {
		line, err := rl.Readline()
		if err != nil {
			if err == io.EOF || err == readline.ErrInterrupt {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			line = lastLine
		}
		lastLine = line

		if line == "" {
			continue
		}

		if line == "quit" || line == "exit" {
			return nil
		}

		err = topCmds.run(line)
		if err != nil {
			return err
		}
	}
}

func explore(path string, wordSizeOverride uint64) error {
	index := typeindex.NewIndex()
	explorer := &explorer{index: index}

	if path != "" {
		finder, err := dwarfinder.NewFinder(index, path)
		if err != nil {
			return err
		}

		wordSize := finder.WordSize()
		if wordSizeOverride != 0 {
			wordSize = wordSizeOverride
		}

		err = index.SetWordSize(wordSize)
		if err != nil {
			return err
		}

		index.AddFinder(finder.Find)
		explorer.finderCount++

		fmt.Printf("indexed %s (word size %d)\n", path, wordSize)
	} else if wordSizeOverride != 0 {
		err := index.SetWordSize(wordSizeOverride)
		if err != nil {
			return err
		}
	}

	return repl(explorer)
}

func main() {
	wordSize := uint64(0)

	exploreCmd := &cobra.Command{
		Use:   "explore [binary]",
		Short: "interactively explore a binary's type index",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			return explore(path, wordSize)
		},
	}
	exploreCmd.Flags().Uint64Var(
		&wordSize,
		"word-size",
		0,
		"override the target word size (4 or 8)")

	rootCmd := &cobra.Command{
		Use:           "typeidx",
		Short:         "type index explorer for program images",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.AddCommand(exploreCmd)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
