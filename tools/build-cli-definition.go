// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/xataio/sandbench/cmd"
)

type Definition struct {
	Name     string    `json:"name"`
	Commands []Command `json:"commands"`
	Flags    []Flag    `json:"flags"`
}

type Command struct {
	Name        string    `json:"name"`
	Short       string    `json:"short"`
	Use         string    `json:"use"`
	Hidden      bool      `json:"hidden,omitempty"`
	Example     string    `json:"example"`
	Flags       []Flag    `json:"flags"`
	Subcommands []Command `json:"subcommands"`
	Args        []string  `json:"args"`
}

type Flag struct {
	Name        string `json:"name"`
	Shorthand   string `json:"shorthand,omitempty"`
	Description string `json:"description"`
	Default     string `json:"default"`
	Env         string `json:"env,omitempty"`
}

// Writes cli-definition.json describing every sandbench command and flag,
// including the environment variable bound to each global flag.
func main() {
	out := "cli-definition.json"
	if len(os.Args) > 1 {
		out = os.Args[1]
	}

	def, err := buildDefinition(cmd.Prepare())
	if err != nil {
		log.Fatalf("building CLI definition: %v", err)
	}

	f, err := os.Create(out)
	if err != nil {
		log.Fatalf("creating %s: %v", out, err)
	}
	defer f.Close()

	if err := writeDefinition(f, def); err != nil {
		log.Fatalf("writing %s: %v", out, err)
	}
	fmt.Printf("CLI definition written to %s\n", out)
}

func buildDefinition(root *cobra.Command) (Definition, error) {
	commands, err := extractCommands(root.Commands())
	if err != nil {
		return Definition{}, err
	}
	return Definition{
		Name:     root.Name(),
		Commands: commands,
		Flags:    extractFlags(root.PersistentFlags()),
	}, nil
}

func extractCommands(cmds []*cobra.Command) ([]Command, error) {
	commands := make([]Command, 0, len(cmds))
	for _, c := range cmds {
		args, err := commandArgs(c)
		if err != nil {
			return nil, err
		}
		sub, err := extractCommands(c.Commands())
		if err != nil {
			return nil, err
		}
		commands = append(commands, Command{
			Name:        c.Name(),
			Short:       c.Short,
			Use:         c.Use,
			Hidden:      c.Hidden,
			Example:     c.Example,
			Args:        args,
			Flags:       extractFlags(c.LocalNonPersistentFlags()),
			Subcommands: sub,
		})
	}
	return commands, nil
}

func extractFlags(flagSet *pflag.FlagSet) []Flag {
	flags := []Flag{}
	flagSet.VisitAll(func(f *pflag.Flag) {
		flag := Flag{
			Name:        f.Name,
			Shorthand:   f.Shorthand,
			Description: f.Usage,
			Default:     f.DefValue,
		}
		if env := f.Annotations[cmd.EnvAnnotation]; len(env) > 0 {
			flag.Env = env[0]
		}
		flags = append(flags, flag)
	})
	return flags
}

// commandArgs returns the names of the positional arguments of c. The
// largest argument count accepted by c's validator must match the number of
// names declared in ValidArgs.
func commandArgs(c *cobra.Command) ([]string, error) {
	if c.Args == nil {
		return []string{}, nil
	}

	maxArgs := 0
	for i := range 10 {
		args := make([]string, i)
		for j := range args {
			args[j] = fmt.Sprintf("arg%d", j)
		}
		if err := c.Args(c, args); err == nil {
			maxArgs = i
		}
	}

	if maxArgs != len(c.ValidArgs) {
		return nil, fmt.Errorf("command %q accepts %d args but names %d", c.Name(), maxArgs, len(c.ValidArgs))
	}
	if c.ValidArgs == nil {
		return []string{}, nil
	}
	return c.ValidArgs, nil
}

func writeDefinition(w io.Writer, def Definition) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(def)
}
