// Command excusectl is an offline excuse picker backed by the embedded
// catalog and a local badger vault. It covers the no-network path: pick an
// excuse, keep up to ten favorites, rate them, and see usage stats without
// a running server.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alibiapp/alibi-server/internal/catalog"
	"github.com/alibiapp/alibi-server/internal/vault"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if os.Getenv("EXCUSECTL_DEBUG") != "" {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	var err error
	switch os.Args[1] {
	case "generate":
		err = runGenerate(os.Args[2:], logger)
	case "favorites":
		err = runFavorites(os.Args[2:], logger)
	case "rate":
		err = runRate(os.Args[2:], logger)
	case "stats":
		err = runStats(os.Args[2:], logger)
	case "situations":
		err = runSituations(logger)
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "excusectl: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: excusectl <command> [flags]

Commands:
  generate    Pick an excuse from the local catalog
  favorites   List, save, remove, or clear saved excuses
  rate        Rate a saved excuse 1-5
  stats       Show device ID and generation count
  situations  List situations in the catalog

Environment:
  EXCUSECTL_VAULT  Vault directory (default ~/.alibi/vault)
  EXCUSECTL_DEBUG  Enable debug logging when set`)
}

// openVault opens the local vault, creating it on first use.
func openVault(logger *slog.Logger) (*vault.Vault, error) {
	path := os.Getenv("EXCUSECTL_VAULT")
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, ".alibi", "vault")
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, err
	}
	return vault.Open(path, logger)
}

func loadCatalog(logger *slog.Logger) (*catalog.Catalog, error) {
	return catalog.Load(logger, catalog.EmbeddedSources()...)
}

func runGenerate(args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	situation := fs.String("situation", "", "Situation to excuse (required)")
	tone := fs.String("tone", "", "Preferred tone")
	length := fs.String("length", "", "Preferred length")
	save := fs.Bool("save", false, "Save the excuse to favorites")
	_ = fs.Parse(args)

	if *situation == "" {
		return fmt.Errorf("-situation is required")
	}

	cat, err := loadCatalog(logger)
	if err != nil {
		return err
	}

	record, err := cat.Select(*situation, catalog.NormalizeTone(*tone), catalog.NormalizeLength(*length))
	if err != nil {
		return err
	}

	v, err := openVault(logger)
	if err != nil {
		return err
	}
	defer v.Close()

	count, err := v.IncrementGenerations()
	if err != nil {
		return err
	}

	fmt.Println(record.Excuse)
	fmt.Printf("\ntone=%s length=%s believability=%d generation=%d\n",
		record.Tone, record.Length, record.BelievabilityRating, count)

	if *save {
		entry := vault.Entry{
			Situation:           *situation,
			Tone:                record.Tone,
			Length:              record.Length,
			Excuse:              record.Excuse,
			BelievabilityRating: record.BelievabilityRating,
			SavedAt:             time.Now(),
		}
		if err := v.SaveFavorite(entry); err != nil {
			return err
		}
		fmt.Printf("saved as %s\n", vault.Digest(record.Excuse))
	}

	return nil
}

func runFavorites(args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("favorites", flag.ExitOnError)
	remove := fs.String("remove", "", "Remove the favorite with this digest")
	clear := fs.Bool("clear", false, "Remove all favorites")
	_ = fs.Parse(args)

	v, err := openVault(logger)
	if err != nil {
		return err
	}
	defer v.Close()

	if *remove != "" {
		if err := v.RemoveFavorite(*remove); err != nil {
			return err
		}
		fmt.Println("removed")
		return nil
	}

	entries, err := v.ListFavorites()
	if err != nil {
		return err
	}

	if *clear {
		for _, e := range entries {
			if err := v.RemoveFavorite(e.Digest); err != nil {
				return err
			}
		}
		fmt.Printf("cleared %d favorites\n", len(entries))
		return nil
	}

	if len(entries) == 0 {
		fmt.Println("no favorites saved")
		return nil
	}

	for _, e := range entries {
		stars, rated, err := v.GetRating(e.Digest)
		if err != nil {
			return err
		}
		rating := "unrated"
		if rated {
			rating = fmt.Sprintf("%d/5", stars)
		}
		fmt.Printf("%s  [%s, %s, believability %d, %s]\n  %s\n",
			e.Digest[:12], e.Tone, e.Length, e.BelievabilityRating, rating, e.Excuse)
	}
	fmt.Printf("\n%d of %d slots used\n", len(entries), vault.MaxFavorites)

	return nil
}

func runRate(args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("rate", flag.ExitOnError)
	digest := fs.String("digest", "", "Full favorite digest")
	stars := fs.Int("stars", 0, "Stars, 1-5")
	_ = fs.Parse(args)

	if *digest == "" {
		return fmt.Errorf("-digest is required")
	}

	v, err := openVault(logger)
	if err != nil {
		return err
	}
	defer v.Close()

	if err := v.RateExcuse(*digest, *stars); err != nil {
		return err
	}

	fmt.Printf("rated %d/5\n", *stars)
	return nil
}

func runStats(args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	_ = fs.Parse(args)

	v, err := openVault(logger)
	if err != nil {
		return err
	}
	defer v.Close()

	deviceID, err := v.DeviceID()
	if err != nil {
		return err
	}
	generations, err := v.GenerationCount()
	if err != nil {
		return err
	}
	favorites, err := v.ListFavorites()
	if err != nil {
		return err
	}

	fmt.Printf("device:      %s\n", deviceID)
	fmt.Printf("generations: %d\n", generations)
	fmt.Printf("favorites:   %d of %d\n", len(favorites), vault.MaxFavorites)
	return nil
}

func runSituations(logger *slog.Logger) error {
	cat, err := loadCatalog(logger)
	if err != nil {
		return err
	}

	stats := cat.Stats()
	for _, situation := range stats.Situations {
		fmt.Printf("%-30s %d excuses\n", situation, stats.BySituation[situation])
	}
	return nil
}
