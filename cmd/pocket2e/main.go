// Command pocket2e loads a machine profile and runs or debugs the resulting
// Apple IIe-class core from the terminal. There is no GUI here: `run` drives
// the CPU for at most its --instructions count, stopping early on a halt or
// an error, and `debug` offers the line-oriented
// debugctl.Console surface over stdin/stdout.
package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	flags "github.com/jessevdk/go-flags"

	"github.com/bad-mango-solutions/pocket2e/debugctl"
	"github.com/bad-mango-solutions/pocket2e/logger"
	"github.com/bad-mango-solutions/pocket2e/machine"
)

type runCommand struct {
	Instructions int `long:"instructions" description:"maximum instructions to execute" default:"1000000"`
	Args         struct {
		Profile flags.Filename `positional-arg-name:"profile" description:"path to a machine profile JSON file"`
	} `positional-args:"yes" required:"yes"`
}

func (c *runCommand) Execute(_ []string) error {
	m, err := loadMachine(string(c.Args.Profile))
	if err != nil {
		return err
	}
	for _, w := range m.Warnings() {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	executed, err := m.Run(c.Instructions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stopped after %d instructions: %v\n", executed, err)
		return err
	}
	fmt.Printf("ran %d instructions, state=%s\n", executed, m.State())
	return nil
}

type debugCommand struct {
	Args struct {
		Profile flags.Filename `positional-arg-name:"profile" description:"path to a machine profile JSON file"`
	} `positional-args:"yes" required:"yes"`
}

func (c *debugCommand) Execute(_ []string) error {
	m, err := loadMachine(string(c.Args.Profile))
	if err != nil {
		return err
	}
	for _, w := range m.Warnings() {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	console := debugctl.NewConsole(m)
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("pocket2e> ")
	for scanner.Scan() {
		out, err := console.Execute(scanner.Text())
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		} else if out != "" {
			fmt.Println(out)
		}
		fmt.Print("pocket2e> ")
	}
	fmt.Println()
	return scanner.Err()
}

type verifyROMCommand struct {
	Args struct {
		Profile flags.Filename `positional-arg-name:"profile" description:"path to a machine profile JSON file"`
	} `positional-args:"yes" required:"yes"`
}

func (c *verifyROMCommand) Execute(_ []string) error {
	m, err := loadMachine(string(c.Args.Profile))
	if err != nil {
		return err
	}
	if len(m.Warnings()) == 0 {
		fmt.Println("all rom images verified")
		return nil
	}
	for _, w := range m.Warnings() {
		fmt.Println(w)
	}
	return fmt.Errorf("%d rom image(s) failed verification", len(m.Warnings()))
}

func loadMachine(profilePath string) (*machine.Machine, error) {
	data, err := os.ReadFile(profilePath)
	if err != nil {
		return nil, fmt.Errorf("pocket2e: reading profile: %w", err)
	}
	profile, err := machine.ParseProfile(data)
	if err != nil {
		return nil, fmt.Errorf("pocket2e: parsing profile: %w", err)
	}

	dir := filepath.Dir(profilePath)
	builder := machine.NewBuilder(machine.Options{
		AppBaseDir:  dir,
		ProfileDir:  dir,
		LibraryRoot: os.Getenv("POCKET2E_LIBRARY_ROOT"),
	})
	m, err := builder.Build(profile)
	if err != nil {
		return nil, fmt.Errorf("pocket2e: building machine: %w", err)
	}
	return m, nil
}

func main() {
	logger.SetEcho(os.Stderr)

	parser := flags.NewParser(&struct{}{}, flags.Default)
	parser.AddCommand("run", "Run a machine profile to completion or fault", "", &runCommand{})
	parser.AddCommand("debug", "Run a machine profile under the debug console", "", &debugCommand{})
	parser.AddCommand("verify-rom", "Load a profile and report ROM verification results", "", &verifyROMCommand{})

	if _, err := parser.Parse(); err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		os.Exit(1)
	}
}
