// Copyright © 2024 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"laptudirm.com/x/tandem/pkg/archive"
)

func History() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [id]",
		Short: "List archived games, or print one as PGN",
		Args:  cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			path, err := cfg.ArchivePath()
			if err != nil {
				return err
			}

			store, err := archive.Open(path)
			if err != nil {
				return err
			}

			defer store.Close()

			if len(args) == 1 {
				game, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				fmt.Print(game.PGN())
				return nil
			}

			limit, _ := cmd.Flags().GetInt("limit")
			games, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if len(games) == 0 {
				fmt.Println("\x1b[31mNo Games Archived.\x1b[0m")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tENDED\tCOLOUR\tRESULT\tPLIES\tREASON")
			for _, game := range games {
				colour := "black"
				if game.EngineWhite {
					colour = "white"
				}

				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
					game.ID[:min(8, len(game.ID))],
					game.Ended.Format("2006-01-02 15:04"),
					colour, game.Result, len(game.Moves), game.Reason,
				)
			}

			if err := w.Flush(); err != nil {
				return err
			}

			record := archive.Tally(games)
			if record.Games() > 0 {
				low, elo, high := record.Elo()
				fmt.Printf("\nScore: %d-%d-%d (%.1f%%), Elo %+.0f [%+.0f, %+.0f]\n",
					record.Wins, record.Draws, record.Losses, 100*record.Score(),
					elo, low, high,
				)
			}

			return nil
		},
	}

	cmd.Flags().IntP("limit", "n", 20, "Number of games to list")
	return cmd
}
