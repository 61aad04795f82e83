package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// InteractiveCmd creates the interactive command
func InteractiveCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Start an interactive session (connect once, run multiple commands)",
		Long: `Start an interactive session where you can run multiple commands against one
database connection and one set of cached snapshots.
The session will keep running until you type 'exit' or 'quit'.

Type 'help' to see available commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("\n🚀 Starting interactive session...")
			fmt.Println("Type 'help' for available commands, 'exit' or 'quit' to leave")
			return runSession(cmd.Root(), os.Stdin, os.Stdout)
		},
	}
}

// sessionCommands returns the root's commands that can run inside a session
func sessionCommands(root *cobra.Command) map[string]*cobra.Command {
	commands := make(map[string]*cobra.Command)
	for _, sub := range root.Commands() {
		switch sub.Name() {
		case "interactive", "completion", "help", "serve":
			continue
		}
		commands[sub.Name()] = sub
	}
	return commands
}

func runSession(root *cobra.Command, in io.Reader, out io.Writer) error {
	commands := sessionCommands(root)
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, "> ")

		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		switch parts[0] {
		case "exit", "quit":
			fmt.Fprintln(out, "👋 Até logo!")
			return nil
		case "help":
			printInteractiveHelp(out, commands)
			continue
		}

		if _, ok := commands[parts[0]]; !ok {
			fmt.Fprintf(out, "❌ Unknown command: %s (type 'help' for available commands)\n\n", parts[0])
			continue
		}

		if err := runInSession(root, parts); err != nil {
			fmt.Fprintf(out, "❌ Error: %v\n\n", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}
	return nil
}

// runInSession calls the target's RunE directly. Going through Execute would
// rerun PersistentPreRunE and reconnect everything.
func runInSession(root *cobra.Command, parts []string) error {
	target, rest, err := root.Find(parts)
	if err != nil {
		return err
	}

	target.Flags().VisitAll(func(flag *pflag.Flag) {
		flag.Changed = false
		flag.Value.Set(flag.DefValue)
	})

	if err := target.ParseFlags(rest); err != nil {
		return fmt.Errorf("error parsing flags: %w", err)
	}
	cmdArgs := target.Flags().Args()

	if target.Args != nil {
		if err := target.Args(target, cmdArgs); err != nil {
			return err
		}
	}

	switch {
	case target.RunE != nil:
		return target.RunE(target, cmdArgs)
	case target.Run != nil:
		target.Run(target, cmdArgs)
		return nil
	default:
		return target.Help()
	}
}

func printInteractiveHelp(out io.Writer, commands map[string]*cobra.Command) {
	fmt.Fprintln(out, "\nAvailable commands:")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cmd := commands[name]
		fmt.Fprintf(out, "  %-42s %s\n", cmd.Use, cmd.Short)
		for _, sub := range cmd.Commands() {
			fmt.Fprintf(out, "    %-40s %s\n", sub.Use, sub.Short)
		}
	}

	fmt.Fprintln(out, "\n  help                                       Show this help message")
	fmt.Fprintln(out, "  exit, quit                                 Exit the interactive session")
}
