// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/appexplorer/cmd/appexplorer/opts"
	"github.com/walteh/appexplorer/pkg/config"
	"github.com/walteh/appexplorer/pkg/log"
	"github.com/walteh/appexplorer/pkg/resolve"
)

const (
	outputConsole = "console"
	outputJSON    = "json"
	outputTree    = "tree"

	sectionAll = "all"
)

// NewStructureCmd creates the command that prints the resolved project structure
func NewStructureCmd(opts *opts.RootOpts) *cobra.Command {
	var (
		section string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "structure",
		Short: "Print the project structure described by the view config",
		Long: `Resolve every group of the view config and print the matching entries.
With --output=json and --section=all the result matches /api/get-project-data.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sections, err := parseSection(section)
			if err != nil {
				return err
			}
			return printStructure(cmd.Context(), opts, cmd.OutOrStdout(), sections, output)
		},
	}

	cmd.Flags().StringVarP(&section, "section", "s", sectionAll, "section to print (targets, singles or all)")
	cmd.Flags().StringVarP(&output, "output", "o", outputConsole, "output format (console, json or tree)")

	return cmd
}

func parseSection(raw string) ([]config.Section, error) {
	switch strings.ToLower(raw) {
	case sectionAll, "":
		return []config.Section{config.SectionTargets, config.SectionSingles}, nil
	case string(config.SectionTargets):
		return []config.Section{config.SectionTargets}, nil
	case string(config.SectionSingles):
		return []config.Section{config.SectionSingles}, nil
	default:
		return nil, errors.Errorf("unknown section %q", raw)
	}
}

func printStructure(ctx context.Context, o *opts.RootOpts, w io.Writer, sections []config.Section, output string) error {
	switch output {
	case outputJSON:
		return printJSON(ctx, o, w, sections)
	case outputTree:
		return printTree(ctx, o, w, sections)
	case outputConsole, "":
		return printConsole(ctx, o, sections)
	default:
		return errors.Errorf("unknown output format %q", output)
	}
}

func printJSON(ctx context.Context, o *opts.RootOpts, w io.Writer, sections []config.Section) error {
	var v any
	if len(sections) > 1 {
		v = o.Builder.Listing(ctx)
	} else {
		v = o.Builder.Build(ctx, sections[0])
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Errorf("encoding structure: %w", err)
	}
	return nil
}

func printTree(ctx context.Context, o *opts.RootOpts, w io.Writer, sections []config.Section) error {
	root := pterm.TreeNode{Text: o.ConfigPath}
	for _, section := range sections {
		node := pterm.TreeNode{Text: string(section)}
		for _, group := range o.Builder.Build(ctx, section) {
			groupNode := pterm.TreeNode{Text: group.Name}
			for _, e := range group.Entries {
				groupNode.Children = append(groupNode.Children, entryNode(e))
			}
			node.Children = append(node.Children, groupNode)
		}
		root.Children = append(root.Children, node)
	}

	out, err := pterm.DefaultTree.WithRoot(root).Srender()
	if err != nil {
		return errors.Errorf("rendering tree: %w", err)
	}
	_, err = fmt.Fprint(w, out)
	return err
}

func entryNode(e resolve.Entry) pterm.TreeNode {
	text := e.Path
	if e.IsSymlink {
		text = fmt.Sprintf("%s -> %s", e.Path, e.Target)
	}
	node := pterm.TreeNode{Text: text}
	for _, child := range e.Contents {
		node.Children = append(node.Children, pterm.TreeNode{Text: child})
	}
	return node
}

// printConsole walks the config itself so disabled groups show up too
func printConsole(ctx context.Context, o *opts.RootOpts, sections []config.Section) error {
	console := log.FromContext(ctx)
	console.Header("listing project structure")

	cfg, err := config.Load(ctx, o.ConfigPath)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("config unavailable")
		console.Warningf("no usable view config at %s", o.ConfigPath)
		return nil
	}

	groups := 0
	for i, section := range sections {
		patterns, err := cfg.Section(section)
		if err != nil {
			continue
		}
		if i > 0 {
			console.LogNewline()
		}
		built := o.Builder.Build(ctx, section)
		for _, p := range patterns {
			console.StartGroup(ctx, log.GroupOperation{
				Section:  string(section),
				Name:     p.Name,
				Pattern:  p.Value,
				Disabled: p.Disabled(),
			})
			if !p.Disabled() {
				for _, e := range built.Entries(p.Name) {
					console.LogEntry(ctx, log.EntryLine{
						Path:      e.Path,
						Type:      string(e.Type),
						IsSymlink: e.IsSymlink,
						Target:    e.Target,
						Children:  len(e.Contents),
					})
				}
			}
			console.EndGroup(ctx)
			groups++
		}
	}

	console.Successf("listed %d groups", groups)
	return nil
}
