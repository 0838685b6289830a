package commands

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/meigma/assetpipe"
	"github.com/meigma/assetpipe/codec"
	"github.com/meigma/assetpipe/pack"
)

func newPackCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pack",
		Short: "Create and inspect pack files",
	}
	cmd.AddCommand(newPackCreateCmd(a), newPackListCmd(a))
	return cmd
}

func newPackCreateCmd(a *app) *cobra.Command {
	var (
		dedup bool
		kind  string
	)
	cmd := &cobra.Command{
		Use:   "create OUTPUT PATH...",
		Short: "Write files into a new pack",
		Long: `Write payload files into a new pack. Directories are walked recursively.

Each asset is named after its path relative to the argument it was found
under, without the file extension. The kind is detected from the payload's
type tag unless --kind is given.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var forced *assetpipe.Kind
			if kind != "" {
				k, ok := assetpipe.ParseKind(kind)
				if !ok {
					return fmt.Errorf("unknown kind %q", kind)
				}
				forced = &k
			}

			var inputs []pack.Input
			for _, arg := range args[1:] {
				found, err := collectInputs(arg, forced)
				if err != nil {
					return err
				}
				inputs = append(inputs, found...)
			}

			opts := []pack.CreateOption{pack.WithDedup(dedup), pack.WithCreateLogger(a.logger)}
			if err := pack.Create(args[0], inputs, opts...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d assets to %s\n", len(inputs), args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&dedup, "dedup", false, "store identical payloads once")
	cmd.Flags().StringVar(&kind, "kind", "", "kind for every input (texture, mesh, material, other)")
	return cmd
}

// collectInputs reads root, or every regular file below it.
func collectInputs(root string, forced *assetpipe.Kind) ([]pack.Input, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		in, err := readInput(root, filepath.Base(root), forced)
		if err != nil {
			return nil, err
		}
		return []pack.Input{in}, nil
	}

	var inputs []pack.Input
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || !d.Type().IsRegular() {
			return walkErr
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		in, err := readInput(path, filepath.ToSlash(rel), forced)
		if err != nil {
			return err
		}
		inputs = append(inputs, in)
		return nil
	})
	return inputs, err
}

func readInput(path, name string, forced *assetpipe.Kind) (pack.Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return pack.Input{}, err
	}
	kind := detectKind(data)
	if forced != nil {
		kind = *forced
	}
	return pack.Input{
		Name: strings.TrimSuffix(name, filepath.Ext(name)),
		Kind: kind,
		Data: data,
	}, nil
}

func detectKind(data []byte) assetpipe.Kind {
	tag, ok := codec.PeekTag(data)
	if !ok {
		return assetpipe.KindOther
	}
	switch tag {
	case codec.TagMesh:
		return assetpipe.KindMesh
	case codec.TagTexture, codec.TagImage:
		return assetpipe.KindTexture
	case codec.TagMaterial:
		return assetpipe.KindMaterial
	default:
		return assetpipe.KindOther
	}
}

func newPackListCmd(a *app) *cobra.Command {
	var verify bool
	cmd := &cobra.Command{
		Use:     "ls PACK",
		Aliases: []string{"list"},
		Short:   "List the assets of a pack",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib := pack.NewLibrary(a.cfg.LibraryOptions(a.logger)...)
			defer lib.Close()

			p, err := lib.Pack(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tKIND\tOFFSET\tSIZE\tDIGEST")
			for asset := range p.Assets() {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", asset.Name, asset.Kind, asset.Offset, asset.Size, asset.Digest)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if verify {
				if err := p.Verify(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "verified %d assets\n", p.Len())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&verify, "verify", false, "check every payload against its digest")
	return cmd
}
