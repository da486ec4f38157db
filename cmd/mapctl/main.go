package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jljohnson/mindmup/app"
	"github.com/jljohnson/mindmup/app/logger"
	"github.com/jljohnson/mindmup/config"
	"github.com/jljohnson/mindmup/events"
	"github.com/jljohnson/mindmup/kvstore"
	"github.com/jljohnson/mindmup/mapcontent"
	"github.com/jljohnson/mindmup/maprepository"
	"github.com/jljohnson/mindmup/recentmaps"
)

var log = logger.NewNamed("main")

var (
	flagConfigFile string
	flagVerbose    bool
	flagTo         string
	flagID         string
)

var rootCmd = &cobra.Command{
	Use:           "mapctl",
	Short:         "Load, publish and copy mind maps across storage backends",
	Version:       app.VersionDescription(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var loadCmd = &cobra.Command{
	Use:   "load [mapId]",
	Short: "Load a map and print it, the most recent map when no id is given",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepository(cmd.Context(), func(ctx context.Context, a *app.App, repo maprepository.MapRepository) error {
			var mapID string
			if len(args) > 0 {
				mapID = args[0]
			} else {
				last, err := repo.LastMapID(ctx)
				if errors.Is(err, kvstore.ErrNotFound) {
					return errors.New("no map id given and no recent map remembered")
				}
				if err != nil {
					return err
				}
				mapID = last
			}
			content, err := repo.LoadMap(ctx, mapID)
			if err != nil {
				return err
			}
			_, resolvedID := repo.CurrentMap()
			fmt.Fprintln(cmd.ErrOrStderr(), resolvedID)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(content)
		})
	},
}

var publishCmd = &cobra.Command{
	Use:   "publish <file>",
	Short: "Publish a map file, printing the id it was saved under",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		content, err := mapcontent.Parse(data)
		if err != nil {
			return err
		}
		return withRepository(cmd.Context(), func(ctx context.Context, a *app.App, repo maprepository.MapRepository) error {
			if err := repo.SetMap(content, flagID); err != nil {
				return err
			}
			mapID, err := repo.PublishMap(ctx, flagTo)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), mapID)
			return nil
		})
	},
}

var copyCmd = &cobra.Command{
	Use:   "copy <mapId>",
	Short: "Load a map and publish it to the storage recognising --to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagTo == "" {
			return errors.New("--to is required")
		}
		return withRepository(cmd.Context(), func(ctx context.Context, a *app.App, repo maprepository.MapRepository) error {
			if _, err := repo.LoadMap(ctx, args[0]); err != nil {
				return err
			}
			mapID, err := repo.PublishMap(ctx, flagTo)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), mapID)
			return nil
		})
	},
}

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recently used maps, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRepository(cmd.Context(), func(ctx context.Context, a *app.App, repo maprepository.MapRepository) error {
			ids, err := app.MustComponent[recentmaps.RecentMaps](a).Recent(ctx)
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfigFile, "config", "c", "etc/mapctl.yml", "path to config file, defaults are used when it does not exist")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "print lifecycle events to stderr")
	publishCmd.Flags().StringVar(&flagTo, "to", "", "any id the target storage recognises, e.g. a_ or h_")
	publishCmd.Flags().StringVar(&flagID, "id", "", "existing map id to overwrite")
	copyCmd.Flags().StringVar(&flagTo, "to", "", "any id the target storage recognises, e.g. a_ or h_")
	rootCmd.AddCommand(loadCmd, publishCmd, copyCmd, recentCmd)
}

func loadConfig() (*config.Config, error) {
	conf, err := config.NewFromFile(flagConfigFile)
	if errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	return conf, err
}

// withRepository starts the app, runs fn and closes the app
func withRepository(ctx context.Context, fn func(ctx context.Context, a *app.App, repo maprepository.MapRepository) error) (err error) {
	conf, err := loadConfig()
	if err != nil {
		return err
	}
	a := new(app.App)
	repo, err := Bootstrap(a, conf)
	if err != nil {
		return err
	}
	events.On(repo.Dispatcher(), func(e events.MapSaved) {
		if e.IsNew {
			log.Info("new map created", zap.String("mapId", e.ID))
		}
	})
	if flagVerbose {
		for _, t := range events.Types {
			repo.AddEventListener(t, func(e events.Event) {
				fmt.Fprintf(os.Stderr, "%s %+v\n", e.Type(), e)
			})
		}
	}
	if err = a.Start(ctx); err != nil {
		return err
	}
	log.Debug("app started", zap.Int64("spentMs", a.StartStat().SpentMsTotal), zap.Any("perComponent", a.StartStat().SpentMsPerComp))
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if cerr := a.Close(closeCtx); cerr != nil {
			log.Error("close error", zap.Error(cerr))
		}
	}()
	return fn(ctx, a, repo)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
