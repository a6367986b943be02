package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"sanctuary-app/config"
	"sanctuary-app/internal/seed"

	"github.com/spf13/cobra"
)

type SeedOptions struct {
	*RootOptions
	File     string
	Validate bool
}

func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load catalog, content and demo users",
		Long: `Load the catalog, blog posts, testimonials, room prompts and demo users.

Rows are upserted by id, room prompts are replaced and existing users are
left alone, so the command can be re-run safely.

Example:
  sanctuary seed
  sanctuary seed --file ./content.yaml --validate`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file := opts.File
			if file == "" {
				file = config.SEED_FILE
			}
			f, err := loadSeed(file)
			if err != nil {
				return err
			}
			if opts.Validate {
				return printSeedSummary(cmd.OutOrStdout(), opts.Format, f)
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			if err := seed.Apply(cmd.Context(), db, f); err != nil {
				return err
			}
			return printSeedSummary(cmd.OutOrStdout(), opts.Format, f)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "seed YAML file, defaults to SEED_FILE or the built-in content")
	cmd.Flags().BoolVar(&opts.Validate, "validate", false, "only parse and validate the file")

	return cmd
}

// loadSeed reads path, or the embedded default when path is empty.
func loadSeed(path string) (*seed.File, error) {
	var (
		f   *seed.File
		err error
	)
	if path == "" {
		f, err = seed.Default()
	} else {
		f, err = seed.Load(path)
	}
	if err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

type seedSummary struct {
	Products     int `json:"products"`
	BlogPosts    int `json:"blog_posts"`
	Testimonials int `json:"testimonials"`
	Rooms        int `json:"rooms"`
	Users        int `json:"users"`
}

func printSeedSummary(w io.Writer, format string, f *seed.File) error {
	s := seedSummary{
		Products:     len(f.Products),
		BlogPosts:    len(f.BlogPosts),
		Testimonials: len(f.Testimonials),
		Rooms:        len(f.Rooms),
		Users:        len(f.Users),
	}
	if format == "json" {
		return json.NewEncoder(w).Encode(s)
	}
	_, err := fmt.Fprintf(w, "products=%d blog_posts=%d testimonials=%d rooms=%d users=%d\n",
		s.Products, s.BlogPosts, s.Testimonials, s.Rooms, s.Users)
	return err
}
