package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/AlperErd0gan/Filizlen-App/internal/config"
	"github.com/AlperErd0gan/Filizlen-App/internal/embcache"
)

const previewSize = 10

func main() {
	cfg := config.LoadConfig()
	if err := newApp(cfg.EmbeddingCachePath).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(defaultCache string) *cli.App {
	return &cli.App{
		Name:  "inspect",
		Usage: "Inspect the embedding cache used for retrieval",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "cache",
				Aliases: []string{"c"},
				Usage:   "Path to the embedding cache file",
				Value:   defaultCache,
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "count",
				Usage:  "Print the number of documents and the embedding shape",
				Action: countCommand,
			},
			{
				Name:   "list",
				Usage:  "List every document with its number, type and title",
				Action: listCommand,
			},
			{
				Name:      "show",
				Usage:     "Show one document and a preview of its embedding",
				ArgsUsage: "<number>",
				Action:    showCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "preview",
						Usage: "Number of vector components to print",
						Value: previewSize,
					},
				},
			},
		},
	}
}

func loadInspector(c *cli.Context) (*embcache.Inspector, *embcache.Snapshot, error) {
	path := c.String("cache")
	snap, err := embcache.Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, cli.Exit(fmt.Sprintf("cache file not found at %s; run the server with -rebuild-cache first", path), 1)
		}
		return nil, nil, cli.Exit(fmt.Sprintf("error reading cache: %v", err), 1)
	}
	return embcache.NewInspector(snap), snap, nil
}

func countCommand(c *cli.Context) error {
	in, snap, err := loadInspector(c)
	if err != nil {
		return err
	}
	out := c.App.Writer
	fmt.Fprintf(out, "Total documents: %d\n", in.Count())
	fmt.Fprintf(out, "Embedding matrix shape: (%d, %d)\n", in.Count(), snap.Dimension())
	return nil
}

func listCommand(c *cli.Context) error {
	in, _, err := loadInspector(c)
	if err != nil {
		return err
	}
	out := c.App.Writer
	for s := range in.Summaries() {
		fmt.Fprintf(out, "%d. [%s] %s (ID: %s)\n", s.Index+1, strings.ToUpper(s.Type), s.Title, s.ID)
	}
	return nil
}

// showCommand takes the 1-based number printed by list.
func showCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("show expects exactly one document number", 1)
	}
	n, err := strconv.Atoi(c.Args().First())
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid document number %q", c.Args().First()), 1)
	}

	in, _, err := loadInspector(c)
	if err != nil {
		return err
	}
	doc, vec, err := in.Detail(n - 1)
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid selection %d: %v", n, err), 1)
	}
	preview, err := in.VectorPreview(n-1, c.Int("preview"))
	if err != nil {
		return err
	}

	out := c.App.Writer
	fmt.Fprintf(out, "Document #%d\n", n)
	fmt.Fprintf(out, "ID: %s\n", doc.ID)
	fmt.Fprintf(out, "Type: %s\n", doc.Type)
	fmt.Fprintf(out, "Full Content:\n---\n%s\n---\n", doc.Content)
	fmt.Fprintf(out, "Embedding Vector Preview (Size: %d):\n", len(vec))
	fmt.Fprintf(out, "  %v\n", preview)
	if rest := len(vec) - len(preview); rest > 0 {
		fmt.Fprintf(out, "  ... %d more dimensions ...\n", rest)
	}
	return nil
}
