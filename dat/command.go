package dat

import (
	"fmt"
	"strconv"
	"strings"
)

// Command is one dat invocation: the arguments after the binary name and an optional
// payload piped to standard input.
type Command struct {
	Args  []string
	Stdin []byte
}

// newCommand builds a command from its subcommand and arguments.
func newCommand(args ...string) Command {
	return Command{Args: args}
}

// withJSON appends the --json flag.
func (c Command) withJSON() Command {
	c.Args = append(c.Args, "--json")
	return c
}

// String renders the command as a shell would show it, for logs and error messages.
// Piped data is summarized rather than printed.
func (c Command) String() string {
	var b strings.Builder
	if c.Stdin != nil {
		fmt.Fprintf(&b, "<%d bytes> | ", len(c.Stdin))
	}
	b.WriteString("dat")
	for _, arg := range c.Args {
		b.WriteByte(' ')
		b.WriteString(quoteArg(arg))
	}
	return b.String()
}

// quoteArg quotes arguments that a shell would split or interpret.
func quoteArg(arg string) string {
	if arg == "" {
		return `""`
	}
	if strings.ContainsAny(arg, " \t\n\"'\\$`|&;<>()*?[]#~") {
		return strconv.Quote(arg)
	}
	return arg
}

func initCommand(dir string) Command {
	return newCommand("init", "--path="+dir, "--no-prompt").withJSON()
}

func importCommand(source string, data []byte, req ImportRequest) Command {
	c := newCommand("import", source, "-d", req.Dataset)
	if req.Key != "" {
		c.Args = append(c.Args, "-k", req.Key)
	}
	if req.Message != "" {
		c.Args = append(c.Args, "-m", req.Message)
	}
	c.Stdin = data
	return c.withJSON()
}

func exportCommand(dataset string) Command {
	return newCommand("export", "-d", dataset, "--full")
}

func diffCommand(from, to string) Command {
	c := newCommand("diff", "--json", from)
	if to != "" {
		c.Args = append(c.Args, to)
	}
	return c
}

func logCommand() Command {
	return newCommand("log").withJSON()
}

func remoteCommand(sub, remote string) Command {
	return newCommand(sub, remote).withJSON()
}

func listCommand(sub string) Command {
	return newCommand(sub).withJSON()
}
