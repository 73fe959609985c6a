package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/phobologic/qmlscan/internal/config"
)

const configHeader = `# qmlscan configuration. Command-line flags and QMLSCAN_* environment
# variables override these values.
`

// newInitCmd implements `qmlscan init`, which writes a qmlscan.yaml holding
// the default settings.
func newInitCmd(stdout, stderr io.Writer) *cobra.Command {
	var dryRun, force bool

	cmd := &cobra.Command{
		Use:   "init [path-to-qmlscan.yaml]",
		Short: "Write a default qmlscan.yaml",
		Long: `Write a qmlscan.yaml holding the default settings, ready to be edited.
An existing file is left alone unless --force is given.

path-to-qmlscan.yaml defaults to ./qmlscan.yaml.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := generateConfig(config.Default())
			if err != nil {
				return err
			}

			if dryRun {
				_, _ = stdout.Write(content)
				return nil
			}

			path := "qmlscan.yaml"
			if len(args) > 0 {
				path = args[0]
			}

			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				} else if !errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("checking %s: %w", path, err)
				}
			}

			if err := os.WriteFile(path, content, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}

			_, _ = fmt.Fprintf(stderr, "wrote default configuration to %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the configuration without writing it")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

// generateConfig renders cfg as commented YAML.
func generateConfig(cfg config.Config) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(configHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("encoding configuration: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding configuration: %w", err)
	}
	return buf.Bytes(), nil
}
