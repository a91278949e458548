package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/geokernel/internal/modelio"
	"github.com/mesh-intelligence/geokernel/pkg/model"
	"github.com/mesh-intelligence/geokernel/pkg/sqlite"
	"github.com/mesh-intelligence/geokernel/pkg/types"
)

func newStoreCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Keep models in the local model store",
	}
	cmd.AddCommand(
		newStoreSaveCmd(a),
		newStoreListCmd(a),
		newStoreLoadCmd(a),
		newStoreDeleteCmd(a),
	)
	return cmd
}

// withStore attaches the model store for the duration of fn.
func (a *app) withStore(fn func(types.ModelStore) error) (err error) {
	s := sqlite.NewStore()
	if err := s.Attach(a.cfg); err != nil {
		return sysError(fmt.Errorf("attach store: %w", err))
	}
	defer func() {
		if derr := s.Detach(); derr != nil && err == nil {
			err = sysError(fmt.Errorf("detach store: %w", derr))
		}
	}()
	return fn(s)
}

func storeError(err error) error {
	if errors.Is(err, types.ErrModelNotFound) {
		return userError(err)
	}
	return sysError(err)
}

func newStoreSaveCmd(a *app) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "save <file>",
		Short: "Store a model file and print its id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.loadModel(args[0])
			if err != nil {
				return err
			}
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}
			return a.withStore(func(s types.ModelStore) error {
				id, err := s.Save(name, m.GetData())
				if err != nil {
					return storeError(err)
				}
				a.log.Info("model stored", "id", id, "name", name)
				if a.flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), map[string]string{"id": id, "name": name})
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "name to store the model under (default: file name)")
	return cmd
}

func newStoreListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored models, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s types.ModelStore) error {
				infos, err := s.List()
				if err != nil {
					return storeError(err)
				}
				out := cmd.OutOrStdout()
				if a.flags.jsonMode {
					if infos == nil {
						infos = []types.ModelInfo{}
					}
					return writeJSON(out, infos)
				}
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tCODEC\tSIZE\tCREATED\tOBJECTS")
				for _, info := range infos {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n", info.ID, info.Name, info.Codec, info.Size,
						info.CreatedAt.Local().Format(time.DateTime), formatCounts(info.Counts))
				}
				return tw.Flush()
			})
		},
	}
}

func newStoreLoadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "load <id> <out>",
		Short: "Write a stored model to a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := modelio.CodecFor(args[1]); err != nil {
				return userError(err)
			}
			return a.withStore(func(s types.ModelStore) error {
				d, err := s.Load(args[0])
				if err != nil {
					return storeError(err)
				}
				m := model.New(model.WithLogger(a.log.WithModel(args[0])))
				if err := m.SetData(d); err != nil {
					return sysError(fmt.Errorf("stored model %s: %w", args[0], err))
				}
				if err := a.saveModel(args[1], m); err != nil {
					return err
				}
				return a.report(cmd, args[1], m.Counts())
			})
		},
	}
}

func newStoreDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a stored model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s types.ModelStore) error {
				if err := s.Delete(args[0]); err != nil {
					return storeError(err)
				}
				if !a.flags.jsonMode {
					fmt.Fprintln(cmd.OutOrStdout(), "deleted", args[0])
				}
				return nil
			})
		},
	}
}
