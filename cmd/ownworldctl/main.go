// Command ownworldctl is a small offline administration tool for the
// checkpoint database: it lists players, inspects a player's fleets,
// and forces a fresh recovery snapshot. It never touches SQL directly
// and never runs the tick loop; everything goes through the same
// internal/store.Store interface the engine depends on.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	flags "github.com/jessevdk/go-flags"

	"github.com/Vitadek/ownworld/internal/model"
	"github.com/Vitadek/ownworld/internal/store"
)

type globalOptions struct {
	DB string `long:"db" description:"Path to the sqlite checkpoint database" default:"ownworld.db"`
}

var globals globalOptions

type listPlayersCmd struct{}

func (c *listPlayersCmd) Execute(args []string) error {
	st, snap, err := openSnapshot()
	if err != nil {
		return err
	}
	defer st.Close()

	fmt.Printf("%-20s %-6s %-10s %-10s %-10s\n", "NAME", "ID", "METAL", "CRYSTAL", "DEUTERIUM")
	for _, p := range snap.Players {
		fmt.Printf("%-20s %-6d %-10s %-10s %-10s\n", p.Name, p.ID,
			humanize.Comma(p.Resources[model.Metal]),
			humanize.Comma(p.Resources[model.Crystal]),
			humanize.Comma(p.Resources[model.Deuterium]))
	}
	return nil
}

type showPlayerCmd struct {
	Args struct {
		Name string `positional-arg-name:"name" required:"true"`
	} `positional-args:"yes"`
}

func (c *showPlayerCmd) Execute(args []string) error {
	st, snap, err := openSnapshot()
	if err != nil {
		return err
	}
	defer st.Close()

	var player *model.Player
	for _, p := range snap.Players {
		if p.Name == c.Args.Name {
			player = p
			break
		}
	}
	if player == nil {
		return fmt.Errorf("no player named %q", c.Args.Name)
	}

	fmt.Printf("player %s (id %d)\n", player.Name, player.ID)
	fmt.Printf("  homeworld: (%d,%d)\n", player.Homeworld.Q, player.Homeworld.R)
	fmt.Printf("  last login: %s\n", humanize.Time(time.Unix(player.LastLoginAtUnix, 0)))
	fmt.Printf("  fleets:\n")
	for _, f := range snap.Fleets {
		if f.PlayerID != player.ID {
			continue
		}
		fmt.Printf("    fleet %-6d at (%d,%d) status=%s ships=%d\n",
			f.ID, f.Location.Q, f.Location.R, f.Status, f.ShipCount)
	}
	return nil
}

type flushCmd struct{}

func (c *flushCmd) Execute(args []string) error {
	st, snap, err := openSnapshot()
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.WriteRecoverySnapshot(snap.CurrentTick, snap); err != nil {
		return fmt.Errorf("writing recovery snapshot: %w", err)
	}
	fmt.Printf("recovery snapshot written at tick %d (%d players, %d fleets)\n",
		snap.CurrentTick, len(snap.Players), len(snap.Fleets))
	return nil
}

func openSnapshot() (*store.SQLiteStore, *store.Snapshot, error) {
	st, err := store.Open(globals.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", globals.DB, err)
	}
	if err := st.Bootstrap(); err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("bootstrapping schema: %w", err)
	}
	snap, err := st.LoadAtStartup()
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("loading checkpoint: %w", err)
	}
	return st, snap, nil
}

func main() {
	parser := flags.NewParser(&globals, flags.Default)
	parser.Name = "ownworldctl"
	parser.LongDescription = "Offline administration for the OwnWorld checkpoint database"

	parser.AddCommand("list-players", "List every registered player", "List every registered player and their resource totals.", &listPlayersCmd{})
	parser.AddCommand("show-player", "Show one player's detail", "Show a single player's homeworld, last login, and fleets.", &showPlayerCmd{})
	parser.AddCommand("flush", "Force a recovery snapshot", "Force a fresh full recovery snapshot from the current checkpoint state.", &flushCmd{})

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
