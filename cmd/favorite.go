package cmd

import (
	"fmt"

	"github.com/inovacc/starcards/internal/application"
	"github.com/inovacc/starcards/internal/cli"
	"github.com/inovacc/starcards/internal/model"
	"github.com/inovacc/starcards/internal/serverinfo"
	"github.com/spf13/cobra"
)

var favoriteTag string

var favoriteCmd = &cobra.Command{
	Use:     "favorite",
	Aliases: []string{"fav"},
	Short:   "Manage favorites",
	Long: `Add, list and remove favorites.

When a web server is running the change goes through it, so open browsers
update immediately. Otherwise the favorites storage is used directly.`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var favoriteAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a favorite",
	Example: `  starcards favorite add "Luke Skywalker"
  starcards favorite add Tatooine --tag planeta`,
	Args: cobra.ExactArgs(1),
	RunE: runFavoriteAdd,
}

var favoriteListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List favorites",
	Args:    cobra.NoArgs,
	RunE:    runFavoriteList,
}

var favoriteRemoveCmd = &cobra.Command{
	Use:     "remove <id>",
	Aliases: []string{"rm"},
	Short:   "Remove a favorite by id",
	Args:    cobra.ExactArgs(1),
	RunE:    runFavoriteRemove,
}

func init() {
	rootCmd.AddCommand(favoriteCmd)
	favoriteCmd.AddCommand(favoriteAddCmd, favoriteListCmd, favoriteRemoveCmd)

	favoriteAddCmd.Flags().StringVar(&favoriteTag, "tag", "", "Category tag (default from the category, e.g. persona)")
}

// runningServer returns the web server to route favorites through, if any.
func runningServer() *remoteClient {
	dir, err := application.GetApplicationDirectory()
	if err != nil {
		return nil
	}

	if info := serverinfo.Running(dir); info != nil {
		return newRemoteClient(info.URL)
	}

	return nil
}

func runFavoriteAdd(cmd *cobra.Command, args []string) error {
	name := args[0]

	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	tag := favoriteTag
	if tag == "" {
		tag = cfg.Category.FavoriteTag()
	}

	var fav model.Favorite

	if remote := runningServer(); remote != nil {
		fav, err = remote.addFavorite(cmd.Context(), name, tag)
		if err != nil {
			return err
		}
	} else {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.Close()

		fav = a.store.AddFavorite(name, tag)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "★ Added %s (%s) as %s\n", fav.Name, fav.Category, fav.ID)

	return nil
}

func runFavoriteList(cmd *cobra.Command, _ []string) error {
	var favs []model.Favorite

	if remote := runningServer(); remote != nil {
		var err error

		favs, err = remote.listFavorites(cmd.Context())
		if err != nil {
			return err
		}
	} else {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.Close()

		favs = a.store.Favorites()
	}

	if len(favs) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No favorites yet. Add one with: starcards favorite add <name>")

		return nil
	}

	return cli.PrintFavorites(cmd.OutOrStdout(), favs)
}

func runFavoriteRemove(cmd *cobra.Command, args []string) error {
	id := args[0]

	if remote := runningServer(); remote != nil {
		if err := remote.removeFavorite(cmd.Context(), id); err != nil {
			return err
		}
	} else {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.Close()

		if !a.store.RemoveFavorite(id) {
			return fmt.Errorf("favorite %s not found", id)
		}
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed favorite %s\n", id)

	return nil
}
